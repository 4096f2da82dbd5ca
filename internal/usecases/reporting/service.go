package reporting

import (
	"fmt"
	"time"

	"github.com/vfg2006/commerce-insights-api/infrastructure/repository"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// Reporter transforma um prompt em texto livre em um relatório estruturado
// ou em um documento renderizado pronto para download.
type Reporter interface {
	ParseAndBuildReport(prompt, formatOverride string) (*ReportOutput, error)
}

// ReportOutput é a saída de um pedido de relatório. Para o formato pantalla
// apenas Report é preenchido; para PDF e Excel o documento renderizado vem
// em Content com o MIME e o nome de arquivo correspondentes.
type ReportOutput struct {
	Report   *domain.Report
	Content  []byte
	MIMEType string
	Filename string
}

type Service struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository

	now func() time.Time
}

func NewService(invoiceRepo repository.InvoiceRepository, productRepo repository.ProductRepository) *Service {
	return &Service{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// ParseAndBuildReport interpreta o prompt, monta o relatório e, quando o
// formato pede documento, renderiza o exportador correspondente.
func (s *Service) ParseAndBuildReport(prompt, formatOverride string) (*ReportOutput, error) {
	parsed := ParsePrompt(prompt, formatOverride, s.now())

	report, err := s.BuildReport(parsed)
	if err != nil {
		return nil, err
	}
	report.Channel = parsed.Format

	switch parsed.Format {
	case domain.FormatPDF:
		content, err := RenderPDF(report)
		if err != nil {
			return nil, err
		}
		return &ReportOutput{
			Report:   report,
			Content:  content,
			MIMEType: "application/pdf",
			Filename: reportFilename(report, "pdf"),
		}, nil

	case domain.FormatExcel:
		content, err := RenderXLSX(report)
		if err != nil {
			return nil, err
		}
		return &ReportOutput{
			Report:   report,
			Content:  content,
			MIMEType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename: reportFilename(report, "xlsx"),
		}, nil

	default:
		return &ReportOutput{Report: report}, nil
	}
}

func reportFilename(report *domain.Report, ext string) string {
	start, end := "inicio", "fin"
	if report.StartDate != nil {
		start = *report.StartDate
	}
	if report.EndDate != nil {
		end = *report.EndDate
	}
	return fmt.Sprintf("reporte_%s_%s.%s", start, end, ext)
}

