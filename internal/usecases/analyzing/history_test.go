package analyzing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/infrastructure/modelstore"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func stringPtr(s string) *string {
	return &s
}

func TestHistoricalBreakdownRejeitaLimitesNegativos(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := newTestService(
		testConfig(),
		mocks.NewMockInvoiceRepository(ctrl),
		mocks.NewMockProductRepository(ctrl),
		modelstore.NewMemoryStore(),
	)

	result, err := service.HistoricalBreakdown(-1, 0)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	result, err = service.HistoricalBreakdown(0, -5)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestHistoricalBreakdownRankingsPorDimensao(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().MonthlyTotals().Return([]*domain.MonthTotal{
		monthTotal(2024, time.March, "550.00"),
	}, nil)

	invoices := []*domain.Invoice{
		{
			InvoiceID:        "INV-200",
			CustomerUsername: stringPtr("maria"),
			AmountTotal:      decimal.RequireFromString("350.00"),
			CreatedAt:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Data: map[string]interface{}{
				"metadata": map[string]interface{}{
					"items": `[{"product_id":10,"quantity":2},{"product_id":11,"quantity":1}]`,
				},
				"lines": map[string]interface{}{
					"data": []interface{}{
						map[string]interface{}{"amount_total": float64(20000)},
						map[string]interface{}{"amount_total": float64(15000)},
					},
				},
			},
		},
		{
			// Fatura sem cliente nem payload: cai nos sentinelas.
			InvoiceID:   "INV-201",
			AmountTotal: decimal.RequireFromString("200.00"),
			CreatedAt:   time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		},
	}
	invoiceRepo.EXPECT().ListAll().Return(invoices, nil)
	productRepo.EXPECT().GetByIDs([]int{10, 11}).Return(catalogFixture(), nil)

	service := newTestService(testConfig(), invoiceRepo, productRepo, modelstore.NewMemoryStore())

	result, err := service.HistoricalBreakdown(0, 0)

	assert.NoError(t, err)

	// Empate de total é desempatado pelo rótulo em ordem alfabética.
	assert.Equal(t, []domain.TotalEntry{
		{Label: "Auriculares", Total: 200},
		{Label: domain.LabelGeneralSale, Total: 200},
		{Label: "Lámpara", Total: 150},
	}, result.ByProduct)

	// Total por cliente vem do valor da fatura, não da soma das linhas.
	assert.Equal(t, []domain.TotalEntry{
		{Label: "maria", Total: 350},
		{Label: domain.LabelNoCustomer, Total: 200},
	}, result.ByCustomer)

	assert.Equal(t, []domain.TotalEntry{
		{Label: domain.LabelUncategorized, Total: 350},
		{Label: "Electrónica", Total: 200},
	}, result.ByCategory)

	assert.Len(t, result.MonthlyTotals, 1)
	assert.Equal(t, "2024-03", result.MonthlyTotals[0].Label)
}

func TestHistoricalBreakdownAplicaLimites(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().MonthlyTotals().Return([]*domain.MonthTotal{
		monthTotal(2024, time.April, "600.00"),
	}, nil)

	invoices := []*domain.Invoice{
		{
			InvoiceID:        "INV-300",
			CustomerUsername: stringPtr("ana"),
			AmountTotal:      decimal.RequireFromString("300.00"),
			CreatedAt:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			InvoiceID:        "INV-301",
			CustomerUsername: stringPtr("bruno"),
			AmountTotal:      decimal.RequireFromString("200.00"),
			CreatedAt:        time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			InvoiceID:        "INV-302",
			CustomerUsername: stringPtr("carla"),
			AmountTotal:      decimal.RequireFromString("100.00"),
			CreatedAt:        time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	invoiceRepo.EXPECT().ListAll().Return(invoices, nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newTestService(testConfig(), invoiceRepo, productRepo, modelstore.NewMemoryStore())

	result, err := service.HistoricalBreakdown(1, 2)

	assert.NoError(t, err)
	assert.Len(t, result.ByProduct, 1)
	assert.Equal(t, []domain.TotalEntry{
		{Label: "ana", Total: 300},
		{Label: "bruno", Total: 200},
	}, result.ByCustomer)
	// Categorias nunca são truncadas.
	assert.Len(t, result.ByCategory, 1)
}
