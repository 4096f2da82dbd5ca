package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/auditing"
	"github.com/vfg2006/commerce-insights-api/pkg/apiErrors"
)

// GetAuditLog lista as entradas mais recentes da bitácora. O parâmetro
// ?limit é opcional.
func GetAuditLog(service auditing.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetAuditLog")

		limit, ok := queryInt(w, r, "limit")
		if !ok {
			return
		}

		entries, err := service.List(limit)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar a bitácora de auditoria")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao listar auditoria", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}
}
