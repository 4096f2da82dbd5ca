package analyzing

import (
	"sort"

	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"github.com/vfg2006/commerce-insights-api/pkg/utils"
)

// HistoricalBreakdown agrega o histórico completo de vendas em rankings por
// produto, cliente e categoria, limitados aos top N de cada dimensão, além
// da série mensal densa.
func (s *Service) HistoricalBreakdown(limitProducts, limitCustomers int) (*domain.HistoricalBreakdown, error) {
	if limitProducts < 0 || limitCustomers < 0 {
		return nil, ErrInvalidParameter
	}
	if limitProducts == 0 {
		limitProducts = s.topProducts()
	}
	if limitCustomers == 0 {
		limitCustomers = s.topCustomers()
	}

	series, err := s.BuildMonthlySeries()
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.ListAll()
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.GetByIDs(CollectProductIDs(invoices))
	if err != nil {
		return nil, err
	}

	productTotals := make(map[string]float64)
	customerTotals := make(map[string]float64)
	categoryTotals := make(map[string]float64)

	for _, invoice := range invoices {
		// O total por cliente vem do valor da fatura inteira, não da soma
		// das linhas, para não contar duas vezes linhas de fallback.
		customerTotals[invoice.CustomerLabel()] += invoice.AmountTotal.InexactFloat64()

		for _, line := range ExpandInvoice(invoice, products) {
			amount := line.Amount.InexactFloat64()
			productTotals[line.ProductLabel] += amount
			categoryTotals[line.CategoryLabel] += amount
		}
	}

	return &domain.HistoricalBreakdown{
		MonthlyTotals: series,
		ByProduct:     rankTotals(productTotals, limitProducts),
		ByCustomer:    rankTotals(customerTotals, limitCustomers),
		ByCategory:    rankTotals(categoryTotals, 0),
	}, nil
}

func (s *Service) topProducts() int {
	if s.cfg != nil && s.cfg.Analytics.TopProducts > 0 {
		return s.cfg.Analytics.TopProducts
	}
	return 20
}

func (s *Service) topCustomers() int {
	if s.cfg != nil && s.cfg.Analytics.TopCustomers > 0 {
		return s.cfg.Analytics.TopCustomers
	}
	return 8
}

// rankTotals ordena os totais em ordem decrescente e trunca no limite.
// limit zero significa sem truncamento.
func rankTotals(totals map[string]float64, limit int) []domain.TotalEntry {
	entries := make([]domain.TotalEntry, 0, len(totals))
	for label, total := range totals {
		entries = append(entries, domain.TotalEntry{Label: label, Total: utils.RoundWithTwoDecimalPlace(total)})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total == entries[j].Total {
			return entries[i].Label < entries[j].Label
		}
		return entries[i].Total > entries[j].Total
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
