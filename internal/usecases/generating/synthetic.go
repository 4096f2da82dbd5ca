package generating

import (
	"context"
	"database/sql"
	"math"
	"math/rand"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository"
	"github.com/vfg2006/commerce-insights-api/internal/config"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"github.com/vfg2006/commerce-insights-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrDataAbsence indica que não existem produtos ou usuários para
	// ancorar as faturas sintéticas. A geração é recusada, nunca inventa
	// catálogo.
	ErrDataAbsence = errors.New("datos insuficientes para generar facturas sintéticas")
	// ErrInvalidParameter indica limites de geração fora de domínio.
	ErrInvalidParameter = errors.New("parámetros de generación inválidos")
)

// Valor mínimo de uma fatura sintética, em unidades maiores da moeda.
const minOrderTotal = 35.00

const maxItemsPerInvoice = 5

type Generator struct {
	cfg         *config.Config
	conn        *postgres.Connection
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository

	now  func() time.Time
	rand *rand.Rand
}

func NewGenerator(
	cfg *config.Config,
	conn *postgres.Connection,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *Generator {
	return &Generator{
		cfg:         cfg,
		conn:        conn,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		now:         time.Now,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// EnsureSyntheticInvoices garante que cada um dos últimos `months` meses
// tenha ao menos uma fatura. Meses já populados são pulados; cada mês gerado
// roda em transação própria, então um mês parcialmente gerado nunca fica
// visível para leitores concorrentes.
func (g *Generator) EnsureSyntheticInvoices(months int) error {
	if months < 1 {
		return errors.Wrapf(ErrInvalidParameter, "meses: %d", months)
	}

	minInvoices := g.cfg.SyntheticBackfill.MinInvoices
	maxInvoices := g.cfg.SyntheticBackfill.MaxInvoices
	if minInvoices < 1 || maxInvoices < minInvoices {
		return errors.Wrapf(ErrInvalidParameter, "faixa de faturas por mês: %d..%d", minInvoices, maxInvoices)
	}

	baseAmount := g.cfg.SyntheticBackfill.BaseAmount
	if baseAmount <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "valor base mensal: %.2f", baseAmount)
	}

	products, err := g.productRepo.ListAll()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return errors.Wrap(ErrDataAbsence, "nenhum produto cadastrado")
	}

	users, err := g.userRepo.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return errors.Wrap(ErrDataAbsence, "nenhum usuário cadastrado")
	}

	current := monthStart(g.now())
	generated := 0

	for offset := months - 1; offset >= 0; offset-- {
		start := current.AddDate(0, -offset, 0)
		end := start.AddDate(0, 1, 0)

		populated, err := g.invoiceRepo.HasInvoicesInMonth(start, end)
		if err != nil {
			return err
		}
		if populated {
			continue
		}

		count := minInvoices + g.rand.Intn(maxInvoices-minInvoices+1)
		monthIndex := months - 1 - offset

		err = g.conn.RunInTransaction(context.Background(), func(tx *sql.Tx) error {
			return g.generateMonth(tx, start, monthIndex, count, baseAmount, products, users)
		})
		if err != nil {
			return errors.Wrapf(err, "erro ao gerar faturas sintéticas de %s", start.Format("2006-01"))
		}

		generated++
	}

	if generated > 0 {
		logrus.WithFields(logrus.Fields{
			"months_generated": generated,
			"window_months":    months,
		}).Info("generating: backfill de faturas sintéticas concluído")
	}

	return nil
}

// generateMonth cria `count` faturas dentro do mês, com totais modulados
// por sazonalidade anual, crescimento composto e ruído gaussiano.
func (g *Generator) generateMonth(
	tx *sql.Tx,
	start time.Time,
	monthIndex, count int,
	baseAmount float64,
	products []*domain.Product,
	users []*domain.User,
) error {
	monthTarget := baseAmount * g.monthFactor(start, monthIndex)

	for i := 0; i < count; i++ {
		target := monthTarget / float64(count) * (0.7 + g.rand.Float64()*0.6)
		if target < minOrderTotal {
			target = minOrderTotal
		}

		invoice, err := g.buildInvoice(target, products, users)
		if err != nil {
			return err
		}

		id, err := g.invoiceRepo.CreateInTx(tx, invoice)
		if err != nil {
			return err
		}

		createdAt := start.AddDate(0, 0, g.rand.Intn(daysInMonth(start)))
		createdAt = createdAt.Add(time.Duration(g.rand.Intn(24*3600)) * time.Second)
		if err := g.invoiceRepo.UpdateCreatedAtInTx(tx, id, createdAt); err != nil {
			return err
		}
	}

	return nil
}

// monthFactor combina a curva sazonal anual (amplitude 0.3), o crescimento
// composto de 2.5% ao mês e ruído gaussiano com desvio 0.12, com piso em
// 0.45 para nunca zerar um mês.
func (g *Generator) monthFactor(start time.Time, monthIndex int) float64 {
	seasonal := 1 + 0.3*math.Sin(2*math.Pi*float64(start.Month())/12)
	growth := 1 + 0.025*float64(monthIndex)
	noise := 1 + g.rand.NormFloat64()*0.12

	factor := seasonal * growth * noise
	if factor < 0.45 {
		factor = 0.45
	}
	return factor
}

// buildInvoice monta uma fatura com até cinco itens do catálogo, escalando
// os valores de linha para que a soma bata com o total alvo.
func (g *Generator) buildInvoice(target float64, products []*domain.Product, users []*domain.User) (*domain.Invoice, error) {
	itemCount := 1 + g.rand.Intn(maxItemsPerInvoice)

	type pick struct {
		product  *domain.Product
		quantity int
	}

	picks := make([]pick, 0, itemCount)
	rawTotal := 0.0
	for i := 0; i < itemCount; i++ {
		product := products[g.rand.Intn(len(products))]
		quantity := 1 + g.rand.Intn(3)
		picks = append(picks, pick{product: product, quantity: quantity})
		rawTotal += product.Price.InexactFloat64() * float64(quantity)
	}

	scale := 1.0
	if rawTotal > 0 {
		scale = target / rawTotal
	}

	items := make([]map[string]interface{}, 0, len(picks))
	lines := make([]map[string]interface{}, 0, len(picks))
	total := 0.0

	for _, p := range picks {
		amount := math.Round(p.product.Price.InexactFloat64()*float64(p.quantity)*scale*100) / 100
		total += amount

		items = append(items, map[string]interface{}{
			"product_id": p.product.ID,
			"quantity":   p.quantity,
		})
		lines = append(lines, map[string]interface{}{
			"description":  p.product.Name,
			"quantity":     p.quantity,
			"amount_total": int64(math.Round(amount * 100)),
			"category":     p.product.CategoryLabel(),
		})
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao serializar os itens sintéticos")
	}

	suffix, err := utils.GenerateID()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao gerar identificador sintético")
	}

	user := users[g.rand.Intn(len(users))]
	customerID := user.ID

	return &domain.Invoice{
		InvoiceID:  "SYNTH-" + suffix,
		SessionID:  "SYNTH-SESSION-" + suffix,
		CustomerID: &customerID,
		// Totais sintéticos ficam em unidades maiores, abaixo do limiar da
		// heurística de normalização.
		AmountTotal: decimal.NewFromFloat(math.Round(total*100) / 100),
		Currency:    "usd",
		Status:      "paid",
		Data: map[string]interface{}{
			"metadata": map[string]interface{}{
				"items": string(itemsJSON),
			},
			"lines": map[string]interface{}{
				"data": lines,
			},
		},
		StockProcessed: true,
	}, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(start time.Time) int {
	return start.AddDate(0, 1, -1).Day()
}
