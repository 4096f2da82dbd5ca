package analyzing

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/infrastructure/modelstore"
	"github.com/vfg2006/commerce-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestFitRegression(t *testing.T) {
	tests := []struct {
		name      string
		series    []domain.MonthlyBucket
		slope     float64
		intercept float64
		samples   int
	}{
		{
			name:   "Série vazia degenera para modelo nulo",
			series: nil,
		},
		{
			name:      "Ponto único vira modelo constante",
			series:    []domain.MonthlyBucket{{MonthIndex: 1, Total: 800}},
			intercept: 800,
			samples:   1,
		},
		{
			name: "Série linear perfeita recupera os coeficientes",
			series: []domain.MonthlyBucket{
				{MonthIndex: 1, Total: 102},
				{MonthIndex: 2, Total: 104},
				{MonthIndex: 3, Total: 106},
				{MonthIndex: 4, Total: 108},
			},
			slope:     2,
			intercept: 100,
			samples:   4,
		},
		{
			name: "Índices repetidos caem na média da série",
			series: []domain.MonthlyBucket{
				{MonthIndex: 2, Total: 100},
				{MonthIndex: 2, Total: 300},
			},
			intercept: 200,
			samples:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := fitRegression(tt.series)
			assert.InDelta(t, tt.slope, model.Slope, 1e-9)
			assert.InDelta(t, tt.intercept, model.Intercept, 1e-9)
			assert.Equal(t, tt.samples, model.Samples)
		})
	}
}

func TestTrainPersisteModeloEMetadados(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)
	store := modelstore.NewMemoryStore()

	invoiceRepo.EXPECT().MonthlyTotals().Return([]*domain.MonthTotal{
		monthTotal(2024, time.January, "100.00"),
		monthTotal(2024, time.February, "200.00"),
		monthTotal(2024, time.March, "300.00"),
	}, nil)
	invoiceRepo.EXPECT().Count().Return(37, nil)
	productRepo.EXPECT().Count().Return(12, nil)
	productRepo.EXPECT().CountCategories().Return(4, nil)

	service := newTestService(testConfig(), invoiceRepo, productRepo, store)

	metadata, err := service.Train()

	assert.NoError(t, err)
	assert.Equal(t, 3, metadata.Samples)
	assert.Equal(t, 37, metadata.InvoiceCount)
	assert.Equal(t, 12, metadata.ProductCount)
	assert.Equal(t, 4, metadata.CategoryCount)
	assert.Equal(t, "2024-01", metadata.PeriodFrom)
	assert.Equal(t, "2024-03", metadata.PeriodTo)
	assert.NotEmpty(t, metadata.TrainedAt)

	exists, err := store.Exists()
	assert.NoError(t, err)
	assert.True(t, exists)

	model, err := store.LoadModel()
	assert.NoError(t, err)
	assert.InDelta(t, 100, model.Slope, 1e-9)
	assert.InDelta(t, 0, model.Intercept, 1e-9)
}

func TestPredictRejeitaHorizonteNegativo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := newTestService(
		testConfig(),
		mocks.NewMockInvoiceRepository(ctrl),
		mocks.NewMockProductRepository(ctrl),
		modelstore.NewMemoryStore(),
	)

	result, err := service.Predict(-1)

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestPredictTreinaSobDemandaEProjetaMesesFuturos(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().MonthlyTotals().Return([]*domain.MonthTotal{
		monthTotal(2024, time.January, "100.00"),
		monthTotal(2024, time.February, "200.00"),
		monthTotal(2024, time.March, "300.00"),
		monthTotal(2024, time.April, "400.00"),
	}, nil).AnyTimes()
	invoiceRepo.EXPECT().Count().Return(4, nil).AnyTimes()
	productRepo.EXPECT().Count().Return(2, nil).AnyTimes()
	productRepo.EXPECT().CountCategories().Return(1, nil).AnyTimes()
	invoiceRepo.EXPECT().ListAll().Return([]*domain.Invoice{}, nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newTestService(testConfig(), invoiceRepo, productRepo, modelstore.NewMemoryStore())

	result, err := service.Predict(2)

	assert.NoError(t, err)
	assert.Len(t, result.Predictions, 2)
	assert.Equal(t, "2024-05", result.Predictions[0].Label)
	assert.Equal(t, "2024-06", result.Predictions[1].Label)
	// Tendência linear de 100 por mês continua na extrapolação.
	assert.InDelta(t, 500, result.Predictions[0].Total, 1e-6)
	assert.InDelta(t, 600, result.Predictions[1].Total, 1e-6)
	assert.NotEmpty(t, result.Metadata.GeneratedAt)
	assert.Empty(t, result.ByCategory)
}

func TestPredictHorizonteZeroUsaPadraoDaConfiguracao(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().MonthlyTotals().Return([]*domain.MonthTotal{
		monthTotal(2024, time.March, "250.00"),
		monthTotal(2024, time.April, "260.00"),
	}, nil).AnyTimes()
	invoiceRepo.EXPECT().Count().Return(2, nil).AnyTimes()
	productRepo.EXPECT().Count().Return(1, nil).AnyTimes()
	productRepo.EXPECT().CountCategories().Return(1, nil).AnyTimes()
	invoiceRepo.EXPECT().ListAll().Return([]*domain.Invoice{}, nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newTestService(testConfig(), invoiceRepo, productRepo, modelstore.NewMemoryStore())

	result, err := service.Predict(0)

	assert.NoError(t, err)
	assert.Len(t, result.Predictions, 3)
}

func TestPredictCategoriaComHistoricoCurtoUsaRateioProporcional(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceRepo := mocks.NewMockInvoiceRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	invoiceRepo.EXPECT().MonthlyTotals().Return([]*domain.MonthTotal{
		monthTotal(2024, time.January, "100.00"),
		monthTotal(2024, time.February, "200.00"),
		monthTotal(2024, time.March, "300.00"),
		monthTotal(2024, time.April, "400.00"),
	}, nil).AnyTimes()
	invoiceRepo.EXPECT().Count().Return(2, nil).AnyTimes()
	productRepo.EXPECT().Count().Return(0, nil).AnyTimes()
	productRepo.EXPECT().CountCategories().Return(0, nil).AnyTimes()

	// Faturas sem payload estruturado em apenas dois meses: a categoria
	// "Sin categoria" não tem histórico para modelo próprio.
	invoiceRepo.EXPECT().ListAll().Return([]*domain.Invoice{
		{
			InvoiceID:   "INV-100",
			AmountTotal: decimal.RequireFromString("300.00"),
			CreatedAt:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			InvoiceID:   "INV-101",
			AmountTotal: decimal.RequireFromString("400.00"),
			CreatedAt:   time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC),
		},
	}, nil)
	productRepo.EXPECT().GetByIDs(gomock.Any()).Return(map[int]*domain.Product{}, nil)

	service := newTestService(testConfig(), invoiceRepo, productRepo, modelstore.NewMemoryStore())

	result, err := service.Predict(2)

	assert.NoError(t, err)
	assert.Len(t, result.ByCategory, 1)

	category := result.ByCategory[0]
	assert.Equal(t, domain.LabelUncategorized, category.Category)
	// Única categoria: participação de 100% e previsão igual à geral.
	assert.InDelta(t, 100, category.Share, 1e-6)
	assert.Len(t, category.Historical, 2)
	assert.Len(t, category.Predictions, 2)
	assert.InDelta(t, result.Predictions[0].Total, category.Predictions[0].Total, 0.01)
	assert.InDelta(t, result.Predictions[1].Total, category.Predictions[1].Total, 0.01)
}
