package analyzing

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"github.com/vfg2006/commerce-insights-api/pkg/utils"
)

// fitRegression ajusta uma regressão por mínimos quadrados sobre os pares
// (índice do mês, total). Com menos de dois pontos o modelo degenera para a
// média da série, que ainda produz uma extrapolação constante válida.
func fitRegression(series []domain.MonthlyBucket) domain.RegressionModel {
	n := len(series)
	if n == 0 {
		return domain.RegressionModel{}
	}

	if n == 1 {
		return domain.RegressionModel{Intercept: series[0].Total, Samples: 1}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, bucket := range series {
		x := float64(bucket.MonthIndex)
		y := bucket.Total
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	nf := float64(n)
	denom := nf*sumX2 - sumX*sumX
	if denom == 0 {
		return domain.RegressionModel{Intercept: sumY / nf, Samples: n}
	}

	slope := (nf*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / nf

	return domain.RegressionModel{Slope: slope, Intercept: intercept, Samples: n}
}

// Train recalcula a série mensal, ajusta o modelo geral, persiste artefato e
// metadados e devolve o snapshot de metadados do treino.
func (s *Service) Train() (*domain.ModelMetadata, error) {
	series, err := s.BuildMonthlySeries()
	if err != nil {
		return nil, err
	}

	model := fitRegression(series)
	if err := s.store.SaveModel(&model); err != nil {
		return nil, errors.Wrap(err, "erro ao persistir o modelo treinado")
	}

	metadata, err := s.buildMetadata(series)
	if err != nil {
		return nil, err
	}
	metadata.TrainedAt = s.now().Format(time.RFC3339)

	if err := s.store.SaveMetadata(metadata); err != nil {
		return nil, errors.Wrap(err, "erro ao persistir os metadados do modelo")
	}

	logrus.WithFields(logrus.Fields{
		"samples":     metadata.Samples,
		"period_from": metadata.PeriodFrom,
		"period_to":   metadata.PeriodTo,
	}).Info("analytics: modelo de previsão treinado")

	return metadata, nil
}

// Predict carrega (ou treina) o modelo geral e projeta `months` meses
// futuros, com detalhamento por categoria: categorias com pelo menos três
// meses de histórico ganham um modelo próprio; as demais recebem uma fração
// proporcional da previsão geral.
func (s *Service) Predict(months int) (*domain.ForecastResult, error) {
	if months < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "meses de previsão deve ser positivo: %d", months)
	}
	if months == 0 {
		months = s.forecastMonths()
	}

	model, metadata, err := s.loadOrTrain()
	if err != nil {
		return nil, err
	}

	series, err := s.BuildMonthlySeries()
	if err != nil {
		return nil, err
	}

	lastIndex := series[len(series)-1].MonthIndex
	labels := futureLabels(series[len(series)-1].Label, months)

	predictions := make([]domain.ForecastPoint, 0, months)
	overall := make([]float64, 0, months)
	for i, label := range labels {
		value := model.PredictAt(lastIndex + i + 1)
		overall = append(overall, value)
		predictions = append(predictions, domain.ForecastPoint{
			Label: label,
			Total: utils.RoundWithTwoDecimalPlace(value),
		})
	}

	metadata.GeneratedAt = s.now().Format(time.RFC3339)

	byCategory, err := s.categoryForecasts(series, labels, lastIndex, overall)
	if err != nil {
		return nil, err
	}

	return &domain.ForecastResult{
		Predictions: predictions,
		Metadata:    metadata,
		ByCategory:  byCategory,
	}, nil
}

func (s *Service) forecastMonths() int {
	if s.cfg != nil && s.cfg.Analytics.ForecastMonths > 0 {
		return s.cfg.Analytics.ForecastMonths
	}
	return 6
}

func (s *Service) loadOrTrain() (*domain.RegressionModel, *domain.ModelMetadata, error) {
	exists, err := s.store.Exists()
	if err != nil {
		return nil, nil, errors.Wrap(err, "erro ao consultar o armazenamento do modelo")
	}

	if !exists {
		if _, err := s.Train(); err != nil {
			return nil, nil, err
		}
	}

	model, err := s.store.LoadModel()
	if err != nil {
		return nil, nil, errors.Wrap(err, "erro ao carregar o modelo treinado")
	}

	metadata, err := s.store.LoadMetadata()
	if err != nil {
		return nil, nil, errors.Wrap(err, "erro ao carregar os metadados do modelo")
	}

	return model, metadata, nil
}

func (s *Service) buildMetadata(series []domain.MonthlyBucket) (*domain.ModelMetadata, error) {
	invoiceCount, err := s.invoiceRepo.Count()
	if err != nil {
		return nil, err
	}
	productCount, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	categoryCount, err := s.productRepo.CountCategories()
	if err != nil {
		return nil, err
	}

	metadata := &domain.ModelMetadata{
		Samples:       len(series),
		InvoiceCount:  invoiceCount,
		ProductCount:  productCount,
		CategoryCount: categoryCount,
	}
	if len(series) > 0 {
		metadata.PeriodFrom = series[0].Label
		metadata.PeriodTo = series[len(series)-1].Label
	}
	return metadata, nil
}

// categoryForecasts monta a série mensal por categoria reusando o mapa de
// índices da série geral e projeta cada categoria, ordenada por receita
// histórica decrescente.
func (s *Service) categoryForecasts(
	series []domain.MonthlyBucket,
	labels []string,
	lastIndex int,
	overall []float64,
) ([]domain.CategoryForecast, error) {
	categorySeries, categoryTotals, err := s.categoryMonthlySeries(series)
	if err != nil {
		return nil, err
	}

	grandTotal := 0.0
	for _, total := range categoryTotals {
		grandTotal += total
	}
	if grandTotal == 0 {
		// Proteção contra divisão por zero no rateio proporcional.
		grandTotal = 1.0
	}

	ranked := make([]string, 0, len(categoryTotals))
	for category := range categoryTotals {
		ranked = append(ranked, category)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if categoryTotals[ranked[i]] == categoryTotals[ranked[j]] {
			return ranked[i] < ranked[j]
		}
		return categoryTotals[ranked[i]] > categoryTotals[ranked[j]]
	})

	forecasts := make([]domain.CategoryForecast, 0, len(ranked))
	for _, category := range ranked {
		history := categorySeries[category]

		historical := make([]domain.ForecastPoint, 0, len(history))
		for _, bucket := range history {
			historical = append(historical, domain.ForecastPoint{
				Label: bucket.Label,
				Total: utils.RoundWithTwoDecimalPlace(bucket.Total),
			})
		}

		var points []domain.ForecastPoint
		if len(history) >= 3 {
			categoryModel := fitRegression(history)
			points = make([]domain.ForecastPoint, 0, len(labels))
			for i, label := range labels {
				points = append(points, domain.ForecastPoint{
					Label: label,
					Total: utils.RoundWithTwoDecimalPlace(categoryModel.PredictAt(lastIndex + i + 1)),
				})
			}
		} else {
			// Histórico curto demais para um modelo próprio: rateio da
			// previsão geral pela participação histórica da categoria.
			share := categoryTotals[category] / grandTotal
			points = make([]domain.ForecastPoint, 0, len(labels))
			for i, label := range labels {
				points = append(points, domain.ForecastPoint{
					Label: label,
					Total: utils.RoundWithTwoDecimalPlace(overall[i] * share),
				})
			}
		}

		forecasts = append(forecasts, domain.CategoryForecast{
			Category:    category,
			Share:       utils.RoundWithTwoDecimalPlace(categoryTotals[category] / grandTotal * 100),
			Historical:  historical,
			Predictions: points,
		})
	}

	return forecasts, nil
}

// categoryMonthlySeries agrega as linhas expandidas de todas as faturas por
// (categoria, mês), considerando apenas meses presentes na série geral.
func (s *Service) categoryMonthlySeries(series []domain.MonthlyBucket) (map[string][]domain.MonthlyBucket, map[string]float64, error) {
	indexByLabel := make(map[string]int, len(series))
	for _, bucket := range series {
		indexByLabel[bucket.Label] = bucket.MonthIndex
	}

	invoices, err := s.invoiceRepo.ListAll()
	if err != nil {
		return nil, nil, err
	}

	products, err := s.productRepo.GetByIDs(CollectProductIDs(invoices))
	if err != nil {
		return nil, nil, err
	}

	monthlyTotals := make(map[string]map[string]float64)
	categoryTotals := make(map[string]float64)

	for _, invoice := range invoices {
		label := invoice.MonthLabel()
		if _, ok := indexByLabel[label]; !ok {
			continue
		}

		for _, line := range ExpandInvoice(invoice, products) {
			amount := line.Amount.InexactFloat64()
			if monthlyTotals[line.CategoryLabel] == nil {
				monthlyTotals[line.CategoryLabel] = make(map[string]float64)
			}
			monthlyTotals[line.CategoryLabel][label] += amount
			categoryTotals[line.CategoryLabel] += amount
		}
	}

	categorySeries := make(map[string][]domain.MonthlyBucket, len(monthlyTotals))
	for category, byLabel := range monthlyTotals {
		buckets := make([]domain.MonthlyBucket, 0, len(byLabel))
		for label, total := range byLabel {
			buckets = append(buckets, domain.MonthlyBucket{
				MonthIndex: indexByLabel[label],
				Label:      label,
				Total:      total,
			})
		}
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].MonthIndex < buckets[j].MonthIndex
		})
		categorySeries[category] = buckets
	}

	return categorySeries, categoryTotals, nil
}

