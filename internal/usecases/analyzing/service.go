package analyzing

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/infrastructure/modelstore"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository"
	"github.com/vfg2006/commerce-insights-api/internal/config"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// Analyzer expõe as operações de análise de vendas para a camada de API e
// para o agendador de retreinamento.
type Analyzer interface {
	Train() (*domain.ModelMetadata, error)
	Predict(months int) (*domain.ForecastResult, error)
	HistoricalBreakdown(limitProducts, limitCustomers int) (*domain.HistoricalBreakdown, error)
}

// BackfillEnsurer garante densidade mínima de faturas nos meses da janela
// antes da agregação. Implementado pelo gerador de faturas sintéticas.
type BackfillEnsurer interface {
	EnsureSyntheticInvoices(months int) error
}

type Service struct {
	cfg         *config.Config
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	store       modelstore.Store
	backfill    BackfillEnsurer

	now  func() time.Time
	rand *rand.Rand
}

// NewService cria o serviço de análise. backfill pode ser nil quando o
// backfill sintético está desabilitado.
func NewService(
	cfg *config.Config,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	store modelstore.Store,
	backfill BackfillEnsurer,
) *Service {
	return &Service{
		cfg:         cfg,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		store:       store,
		backfill:    backfill,
		now:         time.Now,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) targetMonths() int {
	if s.cfg != nil && s.cfg.Analytics.TargetMonths > 0 {
		return s.cfg.Analytics.TargetMonths
	}
	return 24
}

func (s *Service) ensureBackfill() {
	if s.backfill == nil {
		return
	}
	// Falha no backfill não interrompe a agregação: sem dados novos, a
	// série cai nos caminhos de zero-fill ou fallback sintético.
	if err := s.backfill.EnsureSyntheticInvoices(s.targetMonths()); err != nil {
		logrus.WithError(err).Warn("analytics: backfill sintético indisponível, seguindo com os dados existentes")
	}
}
