package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// Máximo de entradas de resumo no documento. O PDF é um recorte dos
// principais grupos; o detalhamento completo sai em planilha.
const pdfSummaryCap = 15

// RenderPDF renderiza o resumo do relatório em um documento de página única:
// título, período, agrupamento e as primeiras entradas do resumo com as
// colunas opcionais embutidas na mesma linha.
func RenderPDF(report *domain.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	translator := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, translator("Reporte dinámico de ventas"), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if report.StartDate != nil && report.EndDate != nil {
		pdf.CellFormat(0, 6, translator(fmt.Sprintf("Período: %s a %s", *report.StartDate, *report.EndDate)), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, translator(fmt.Sprintf("Agrupado por: %s", groupLabel(report.GroupBy))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, translator(summaryHeader(report.SummaryFields)), "B", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, entry := range capSummary(report.Summary) {
		pdf.CellFormat(0, 6, translator(summaryLine(entry)), "", 1, "L", false, 0, "")
	}

	if len(report.Summary) == 0 {
		pdf.CellFormat(0, 6, translator("Sin resultados para el período."), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "erro ao renderizar o relatório em PDF")
	}
	return buf.Bytes(), nil
}

func capSummary(entries []domain.ReportSummaryEntry) []domain.ReportSummaryEntry {
	if len(entries) > pdfSummaryCap {
		return entries[:pdfSummaryCap]
	}
	return entries
}

func summaryHeader(fields []domain.SummaryField) string {
	header := ""
	for i, field := range fields {
		if i > 0 {
			header += " | "
		}
		header += field.Label
	}
	return header
}

func summaryLine(entry domain.ReportSummaryEntry) string {
	line := fmt.Sprintf("%s | %.2f | %d", entry.Label, entry.MontoTotal, entry.Cantidad)
	if entry.InvoiceCount != nil {
		line += fmt.Sprintf(" | %d", *entry.InvoiceCount)
	}
	if entry.FirstDate != nil && entry.LastDate != nil {
		line += fmt.Sprintf(" | %s | %s", *entry.FirstDate, *entry.LastDate)
	}
	return line
}
