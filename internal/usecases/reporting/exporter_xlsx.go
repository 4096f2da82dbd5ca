package reporting

import (
	"github.com/pkg/errors"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	sheetRows    = "Reporte"
	sheetSummary = "Resumen"
)

// RenderXLSX renderiza o relatório em uma planilha com duas abas: o
// detalhamento linha a linha e o resumo, cujas colunas são dirigidas pelo
// manifesto de campos do construtor.
func RenderXLSX(report *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := renderRowsSheet(f, report); err != nil {
		return nil, err
	}
	if err := renderSummarySheet(f, report); err != nil {
		return nil, err
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao renderizar o relatório em XLSX")
	}
	return buf.Bytes(), nil
}

func renderRowsSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(sheetRows); err != nil {
		return errors.Wrap(err, "erro ao criar a aba de detalhamento")
	}

	headers := []interface{}{"Factura", "Cliente", "Producto", "Categoría", "Cantidad", "Monto total", "Fecha"}
	if err := writeRow(f, sheetRows, 1, headers); err != nil {
		return err
	}

	for i, row := range report.Rows {
		values := []interface{}{
			row.Invoice,
			row.Customer,
			row.Product,
			row.Category,
			row.Quantity,
			row.MontoTotal,
			row.Fecha,
		}
		if err := writeRow(f, sheetRows, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func renderSummarySheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return errors.Wrap(err, "erro ao criar a aba de resumo")
	}

	headers := make([]interface{}, 0, len(report.SummaryFields))
	for _, field := range report.SummaryFields {
		headers = append(headers, field.Label)
	}
	if err := writeRow(f, sheetSummary, 1, headers); err != nil {
		return err
	}

	for i, entry := range report.Summary {
		values := make([]interface{}, 0, len(report.SummaryFields))
		for _, field := range report.SummaryFields {
			values = append(values, summaryValue(entry, field.Key))
		}
		if err := writeRow(f, sheetSummary, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// summaryValue resolve o valor de uma coluna do resumo pela chave do
// manifesto. Chaves desconhecidas rendem célula vazia, nunca erro.
func summaryValue(entry domain.ReportSummaryEntry, key string) interface{} {
	switch key {
	case "label":
		return entry.Label
	case "monto_total":
		return entry.MontoTotal
	case "cantidad":
		return entry.Cantidad
	case "facturas":
		if entry.InvoiceCount != nil {
			return *entry.InvoiceCount
		}
		return ""
	case "primera_fecha":
		if entry.FirstDate != nil {
			return *entry.FirstDate
		}
		return ""
	case "ultima_fecha":
		if entry.LastDate != nil {
			return *entry.LastDate
		}
		return ""
	default:
		return ""
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return errors.Wrap(err, "erro ao calcular a célula da planilha")
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return errors.Wrapf(err, "erro ao escrever a célula %s", cell)
		}
	}
	return nil
}
