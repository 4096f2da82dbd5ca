package auditing

import (
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestRecordPersisteAcaoComUsuarioEIP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditRepo := mocks.NewMockAuditRepository(ctrl)

	var captured *domain.AuditEntry
	auditRepo.EXPECT().Insert(gomock.Any()).DoAndReturn(func(entry *domain.AuditEntry) error {
		captured = entry
		return nil
	})

	service := NewService(auditRepo)

	r := httptest.NewRequest("POST", "/v1/analytics/train", nil)
	r.RemoteAddr = "10.0.0.3:52100"

	service.Record("analytics.train", &domain.Claims{UserID: 42}, r)

	assert.NotNil(t, captured)
	assert.Equal(t, "analytics.train", captured.Action)
	assert.Equal(t, 42, *captured.UserID)
	assert.Equal(t, "10.0.0.3", *captured.IPAddress)
}

func TestRecordPrefereOPrimeiroSaltoDoXForwardedFor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditRepo := mocks.NewMockAuditRepository(ctrl)

	var captured *domain.AuditEntry
	auditRepo.EXPECT().Insert(gomock.Any()).DoAndReturn(func(entry *domain.AuditEntry) error {
		captured = entry
		return nil
	})

	service := NewService(auditRepo)

	r := httptest.NewRequest("GET", "/v1/audit", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	service.Record("audit.list", nil, r)

	assert.Equal(t, "203.0.113.9", *captured.IPAddress)
	assert.Nil(t, captured.UserID)
}

func TestRecordFalhaDePersistenciaNaoPropaga(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditRepo := mocks.NewMockAuditRepository(ctrl)
	auditRepo.EXPECT().Insert(gomock.Any()).Return(errors.New("banco indisponível"))

	service := NewService(auditRepo)

	// Record nunca devolve erro: a auditoria não derruba a requisição.
	assert.NotPanics(t, func() {
		service.Record("reports.prompt", &domain.Claims{UserID: 7}, nil)
	})
}

func TestListAplicaLimitePadrao(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditRepo := mocks.NewMockAuditRepository(ctrl)
	auditRepo.EXPECT().ListRecent(defaultListLimit).Return([]*domain.AuditEntry{}, nil)

	service := NewService(auditRepo)

	entries, err := service.List(0)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListRespeitaLimiteExplicito(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditRepo := mocks.NewMockAuditRepository(ctrl)
	auditRepo.EXPECT().ListRecent(25).Return([]*domain.AuditEntry{{Action: "login"}}, nil)

	service := NewService(auditRepo)

	entries, err := service.List(25)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}
