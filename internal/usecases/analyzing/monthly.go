package analyzing

import (
	"time"

	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// BuildMonthlySeries monta a série mensal densa usada como entrada da
// regressão: janela móvel de até targetMonths meses terminando no mês da
// fatura mais recente, sem buracos, com índice sequencial começando em 1.
//
// Meses sem fatura dentro da janela entram com total zero. Se a base está
// vazia mesmo após o backfill, a série inteira é sintetizada com totais
// pseudo-aleatórios plausíveis para manter a previsão funcional.
func (s *Service) BuildMonthlySeries() ([]domain.MonthlyBucket, error) {
	s.ensureBackfill()

	totals, err := s.invoiceRepo.MonthlyTotals()
	if err != nil {
		return nil, err
	}

	if len(totals) == 0 {
		return s.syntheticSeries(), nil
	}

	// Os totais já chegam normalizados fatura a fatura pelo repositório:
	// reaplicar a heurística aqui dividiria a soma do mês por 100.
	byMonth := make(map[string]float64, len(totals))
	for _, total := range totals {
		label := total.Month.Format("2006-01")
		byMonth[label] += total.Total.InexactFloat64()
	}

	latest := monthStart(totals[len(totals)-1].Month)
	earliest := monthStart(totals[0].Month)

	start := latest.AddDate(0, -(s.targetMonths() - 1), 0)
	if earliest.After(start) {
		// Histórico mais curto que a janela: a série começa no primeiro
		// mês disponível, nunca antes dele.
		start = earliest
	}

	series := make([]domain.MonthlyBucket, 0, s.targetMonths())
	index := 1
	for current := start; !current.After(latest); current = current.AddDate(0, 1, 0) {
		label := current.Format("2006-01")
		series = append(series, domain.MonthlyBucket{
			MonthIndex: index,
			Label:      label,
			Total:      byMonth[label],
		})
		index++
	}

	return series, nil
}

// syntheticSeries devolve targetMonths buckets com totais aleatórios em uma
// faixa plausível. Existe para manter o pipeline de previsão funcional com
// base zerada (ambiente de demonstração e testes de ponta a ponta).
func (s *Service) syntheticSeries() []domain.MonthlyBucket {
	months := s.targetMonths()
	end := monthStart(s.now())
	start := end.AddDate(0, -(months - 1), 0)

	series := make([]domain.MonthlyBucket, 0, months)
	for index := 1; index <= months; index++ {
		current := start.AddDate(0, index-1, 0)
		series = append(series, domain.MonthlyBucket{
			MonthIndex: index,
			Label:      current.Format("2006-01"),
			Total:      float64(1000 + s.rand.Intn(700)),
		})
	}
	return series
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// futureLabels gera os rótulos "YYYY-MM" dos meses seguintes ao último
// bucket histórico.
func futureLabels(lastLabel string, months int) []string {
	last, err := time.Parse("2006-01", lastLabel)
	if err != nil {
		last = monthStart(time.Now())
	}

	labels := make([]string, 0, months)
	for i := 1; i <= months; i++ {
		labels = append(labels, last.AddDate(0, i, 0).Format("2006-01"))
	}
	return labels
}
