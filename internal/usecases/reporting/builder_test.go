package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func stringPtr(s string) *string {
	return &s
}

func newReportingService(invoiceRepo *mocks.MockInvoiceRepository, productRepo *mocks.MockProductRepository) *Service {
	return &Service{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		now:         func() time.Time { return promptNow },
	}
}

func reportInvoices() []*domain.Invoice {
	return []*domain.Invoice{
		{
			InvoiceID:        "INV-001",
			CustomerUsername: stringPtr("maria"),
			AmountTotal:      decimal.RequireFromString("90.00"),
			CreatedAt:        time.Date(2024, 3, 3, 14, 0, 0, 0, time.UTC),
			Data: map[string]interface{}{
				"lines": map[string]interface{}{
					"data": []interface{}{
						map[string]interface{}{
							"description":  "Auriculares",
							"category":     "Electrónica",
							"quantity":     float64(2),
							"amount_total": float64(9000),
						},
					},
				},
			},
		},
		{
			InvoiceID:        "INV-002",
			CustomerUsername: stringPtr("bruno"),
			AmountTotal:      decimal.RequireFromString("150.00"),
			CreatedAt:        time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC),
			Data: map[string]interface{}{
				"lines": map[string]interface{}{
					"data": []interface{}{
						map[string]interface{}{
							"description":  "Lámpara",
							"category":     "Hogar",
							"quantity":     float64(1),
							"amount_total": float64(10000),
						},
						map[string]interface{}{
							"description":  "Auriculares",
							"category":     "Electrónica",
							"quantity":     float64(1),
							"amount_total": float64(5000),
						},
					},
				},
			},
		},
	}
}

func monthlyParsed() domain.ParsedPrompt {
	return domain.ParsedPrompt{
		GroupBy:       domain.GroupByMonth,
		Format:        domain.FormatScreen,
		StartDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		Chronological: true,
	}
}

func TestBuildReportAgrupamentoMensal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	// A data final é inclusiva e chega intacta ao repositório, que é quem
	// converte o fim do intervalo para o dia seguinte exclusivo.
	expectedStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expectedEnd := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	invoiceRepo.EXPECT().
		ListByDateRange(&expectedStart, &expectedEnd).
		Return(reportInvoices(), nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newReportingService(invoiceRepo, productRepo)

	report, err := service.BuildReport(monthlyParsed())

	assert.NoError(t, err)
	assert.Len(t, report.Rows, 3)

	// Linhas em ordem cronológica de fatura.
	assert.Equal(t, "INV-001", report.Rows[0].Invoice)
	assert.Equal(t, "2024-03-03", report.Rows[0].Fecha)
	assert.Equal(t, "INV-002", report.Rows[1].Invoice)

	// Resumo mensal cronológico com a soma das linhas preservada.
	assert.Len(t, report.Summary, 2)
	assert.Equal(t, "2024-03", report.Summary[0].Label)
	assert.Equal(t, 90.0, report.Summary[0].MontoTotal)
	assert.Equal(t, "2024-04", report.Summary[1].Label)
	assert.Equal(t, 150.0, report.Summary[1].MontoTotal)

	// A soma do resumo bate com a soma das linhas detalhadas.
	var rowTotal, summaryTotal float64
	for _, row := range report.Rows {
		rowTotal += row.MontoTotal
	}
	for _, entry := range report.Summary {
		summaryTotal += entry.MontoTotal
	}
	assert.InDelta(t, rowTotal, summaryTotal, 0.01)

	assert.Equal(t, "2024-03-01", *report.StartDate)
	assert.Equal(t, "2024-04-30", *report.EndDate)
}

func TestBuildReportAgrupamentoPorProdutoOrdenaPorTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().ListByDateRange(gomock.Any(), gomock.Any()).Return(reportInvoices(), nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newReportingService(invoiceRepo, productRepo)

	parsed := monthlyParsed()
	parsed.GroupBy = domain.GroupByProduct
	parsed.Chronological = false

	report, err := service.BuildReport(parsed)

	assert.NoError(t, err)
	assert.Len(t, report.Summary, 2)
	// Auriculares soma as duas faturas (90 + 50), Lámpara só a segunda.
	assert.Equal(t, "Auriculares", report.Summary[0].Label)
	assert.Equal(t, 140.0, report.Summary[0].MontoTotal)
	assert.Equal(t, 3, report.Summary[0].Cantidad)
	assert.Equal(t, "Lámpara", report.Summary[1].Label)
	assert.Equal(t, 100.0, report.Summary[1].MontoTotal)
}

func TestBuildReportFlagsPreenchemColunasOpcionais(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().ListByDateRange(gomock.Any(), gomock.Any()).Return(reportInvoices(), nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newReportingService(invoiceRepo, productRepo)

	parsed := monthlyParsed()
	parsed.GroupBy = domain.GroupByProduct
	parsed.Chronological = false
	parsed.IncludeCounts = true
	parsed.IncludeDates = true

	report, err := service.BuildReport(parsed)

	assert.NoError(t, err)

	auriculares := report.Summary[0]
	assert.Equal(t, "Auriculares", auriculares.Label)
	assert.NotNil(t, auriculares.InvoiceCount)
	assert.Equal(t, 2, *auriculares.InvoiceCount)
	assert.Equal(t, "2024-03-03", *auriculares.FirstDate)
	assert.Equal(t, "2024-04-20", *auriculares.LastDate)

	// O manifesto de colunas acompanha as flags ativas.
	keys := make([]string, 0, len(report.SummaryFields))
	for _, field := range report.SummaryFields {
		keys = append(keys, field.Key)
	}
	assert.Equal(t, []string{"label", "monto_total", "cantidad", "facturas", "primera_fecha", "ultima_fecha"}, keys)
	assert.Equal(t, "Producto", report.SummaryFields[0].Label)
}

func TestBuildReportSemFaturasDevolveRelatorioVazio(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().ListByDateRange(gomock.Any(), gomock.Any()).Return([]*domain.Invoice{}, nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newReportingService(invoiceRepo, productRepo)

	report, err := service.BuildReport(monthlyParsed())

	assert.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Empty(t, report.Summary)
	assert.NotEmpty(t, report.SummaryFields)
}
