package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/auditing"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/reporting"
	"github.com/vfg2006/commerce-insights-api/pkg/apiErrors"
	"github.com/vfg2006/commerce-insights-api/pkg/middleware"
)

type PromptReportRequest struct {
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
}

// PromptReport interpreta um prompt em texto livre e devolve o relatório:
// JSON para o formato pantalla, anexo binário para PDF e Excel.
func PromptReport(service reporting.Reporter, auditor auditing.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - PromptReport")

		var req PromptReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		output, err := service.ParseAndBuildReport(req.Prompt, req.Format)
		if err != nil {
			logrus.WithError(err).Error("Erro ao montar relatório dinâmico")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao montar relatório", nil)
			return
		}

		auditor.Record("reports.prompt", middleware.ClaimsFromRequest(r), r)

		if len(output.Content) > 0 {
			w.Header().Set("Content-Type", output.MIMEType)
			w.Header().Set("Content-Disposition", `attachment; filename="`+output.Filename+`"`)
			if _, err := w.Write(output.Content); err != nil {
				logrus.WithError(err).Warn("Erro ao enviar o documento do relatório")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(output.Report)
	}
}
