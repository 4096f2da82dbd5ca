package reporting

import (
	"sort"
	"time"

	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/analyzing"
	"github.com/vfg2006/commerce-insights-api/pkg/utils"
)

const dateLayout = "2006-01-02"

// BuildReport executa a agregação agrupada e filtrada por data sobre as
// faturas e monta o detalhamento linha a linha mais o resumo por grupo.
func (s *Service) BuildReport(parsed domain.ParsedPrompt) (*domain.Report, error) {
	// O repositório já trata a data final como inclusiva (filtra por
	// created_at < fim+1 dia), então o intervalo é repassado como está.
	rangeStart := parsed.StartDate
	rangeEnd := parsed.EndDate
	invoices, err := s.invoiceRepo.ListByDateRange(&rangeStart, &rangeEnd)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.GetByIDs(analyzing.CollectProductIDs(invoices))
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ReportRow, 0, len(invoices))
	groups := make(map[string]*domain.ReportSummaryEntry)

	for _, invoice := range invoices {
		customer := invoice.CustomerLabel()
		date := invoice.CreatedAt

		for _, line := range analyzing.ExpandInvoice(invoice, products) {
			amount := utils.RoundWithTwoDecimalPlace(line.Amount.InexactFloat64())

			rows = append(rows, domain.ReportRow{
				Invoice:    invoice.InvoiceID,
				Customer:   customer,
				Product:    line.ProductLabel,
				Category:   line.CategoryLabel,
				Quantity:   line.Quantity,
				MontoTotal: amount,
				Fecha:      date.Format(dateLayout),
				Date:       date,
			})

			key := groupKey(parsed.GroupBy, invoice, line, customer)
			entry, ok := groups[key]
			if !ok {
				entry = &domain.ReportSummaryEntry{Label: key, FirstSeen: date, LastSeen: date}
				groups[key] = entry
			}
			entry.MontoTotal += amount
			entry.Cantidad += line.Quantity
			if date.Before(entry.FirstSeen) {
				entry.FirstSeen = date
			}
			if date.After(entry.LastSeen) {
				entry.LastSeen = date
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	summary := finishSummary(groups, invoices, products, parsed)

	start := parsed.StartDate.Format(dateLayout)
	end := parsed.EndDate.Format(dateLayout)

	return &domain.Report{
		Rows:          rows,
		Summary:       summary,
		SummaryFields: summaryFields(parsed),
		GroupBy:       parsed.GroupBy,
		StartDate:     &start,
		EndDate:       &end,
		Prompt:        parsed.Prompt,
	}, nil
}

// groupKey deriva o rótulo de agrupamento de uma linha expandida.
func groupKey(groupBy string, invoice *domain.Invoice, line analyzing.ExpandedLine, customer string) string {
	switch groupBy {
	case domain.GroupByProduct:
		return line.ProductLabel
	case domain.GroupByCustomer:
		return customer
	case domain.GroupByCategory:
		return line.CategoryLabel
	default:
		return invoice.MonthLabel()
	}
}

// finishSummary arredonda totais, preenche colunas opcionais e ordena o
// resumo: cronológico quando pedido (rótulos não interpretáveis como data
// vão para o fim), caso contrário por total decrescente.
func finishSummary(
	groups map[string]*domain.ReportSummaryEntry,
	invoices []*domain.Invoice,
	products map[int]*domain.Product,
	parsed domain.ParsedPrompt,
) []domain.ReportSummaryEntry {
	var invoiceCounts map[string]int
	if parsed.IncludeCounts {
		invoiceCounts = countDistinctInvoices(invoices, products, parsed.GroupBy)
	}

	summary := make([]domain.ReportSummaryEntry, 0, len(groups))
	for _, entry := range groups {
		entry.MontoTotal = utils.RoundWithTwoDecimalPlace(entry.MontoTotal)
		if parsed.IncludeCounts {
			count := invoiceCounts[entry.Label]
			entry.InvoiceCount = &count
		}
		if parsed.IncludeDates {
			first := entry.FirstSeen.Format(dateLayout)
			last := entry.LastSeen.Format(dateLayout)
			entry.FirstDate = &first
			entry.LastDate = &last
		}
		summary = append(summary, *entry)
	}

	if parsed.Chronological {
		sort.Slice(summary, func(i, j int) bool {
			ti, okI := labelTime(summary[i])
			tj, okJ := labelTime(summary[j])
			if okI != okJ {
				return okI
			}
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return summary[i].Label < summary[j].Label
		})
	} else {
		sort.Slice(summary, func(i, j int) bool {
			if summary[i].MontoTotal == summary[j].MontoTotal {
				return summary[i].Label < summary[j].Label
			}
			return summary[i].MontoTotal > summary[j].MontoTotal
		})
	}

	return summary
}

// labelTime tenta interpretar o rótulo do grupo como data ("2006-01"),
// caindo na data da primeira transação como critério de desempate.
func labelTime(entry domain.ReportSummaryEntry) (time.Time, bool) {
	if t, err := time.Parse("2006-01", entry.Label); err == nil {
		return t, true
	}
	if !entry.FirstSeen.IsZero() {
		return entry.FirstSeen, false
	}
	return time.Time{}, false
}

// countDistinctInvoices conta faturas distintas por grupo. Uma fatura com
// linhas de mais de um grupo conta uma vez em cada grupo.
func countDistinctInvoices(invoices []*domain.Invoice, products map[int]*domain.Product, groupBy string) map[string]int {
	seen := make(map[string]map[string]struct{})

	for _, invoice := range invoices {
		customer := invoice.CustomerLabel()
		for _, line := range analyzing.ExpandInvoice(invoice, products) {
			key := groupKey(groupBy, invoice, line, customer)
			if seen[key] == nil {
				seen[key] = make(map[string]struct{})
			}
			seen[key][invoice.InvoiceID] = struct{}{}
		}
	}

	counts := make(map[string]int, len(seen))
	for key, ids := range seen {
		counts[key] = len(ids)
	}
	return counts
}

// summaryFields declara as colunas do resumo. Os exportadores dirigem o
// layout inteiramente por este manifesto.
func summaryFields(parsed domain.ParsedPrompt) []domain.SummaryField {
	fields := []domain.SummaryField{
		{Key: "label", Label: groupLabel(parsed.GroupBy)},
		{Key: "monto_total", Label: "Monto total"},
		{Key: "cantidad", Label: "Cantidad"},
	}
	if parsed.IncludeCounts {
		fields = append(fields, domain.SummaryField{Key: "facturas", Label: "Facturas"})
	}
	if parsed.IncludeDates {
		fields = append(fields,
			domain.SummaryField{Key: "primera_fecha", Label: "Primera fecha"},
			domain.SummaryField{Key: "ultima_fecha", Label: "Última fecha"},
		)
	}
	return fields
}

func groupLabel(groupBy string) string {
	switch groupBy {
	case domain.GroupByProduct:
		return "Producto"
	case domain.GroupByCustomer:
		return "Cliente"
	case domain.GroupByCategory:
		return "Categoría"
	default:
		return "Mes"
	}
}
