package auditing

import (
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

const defaultListLimit = 100

// Auditor registra e consulta a bitácora de ações dos usuários.
type Auditor interface {
	Record(action string, claims *domain.Claims, r *http.Request)
	List(limit int) ([]*domain.AuditEntry, error)
}

type Service struct {
	auditRepo repository.AuditRepository
}

func NewService(auditRepo repository.AuditRepository) Auditor {
	return &Service{auditRepo: auditRepo}
}

// Record persiste uma entrada de auditoria. Falha de persistência vira log
// de erro, nunca derruba a requisição que está sendo auditada.
func (s *Service) Record(action string, claims *domain.Claims, r *http.Request) {
	entry := &domain.AuditEntry{Action: action}

	if claims != nil {
		userID := claims.UserID
		entry.UserID = &userID
	}

	if r != nil {
		if ip := clientIP(r); ip != "" {
			entry.IPAddress = &ip
		}
	}

	if err := s.auditRepo.Insert(entry); err != nil {
		logrus.WithError(err).WithField("action", action).Error("auditing: erro ao registrar ação")
	}
}

func (s *Service) List(limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.auditRepo.ListRecent(limit)
}

// clientIP resolve o IP do cliente, preferindo o primeiro salto do
// X-Forwarded-For quando a requisição atravessa um proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
