package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/analyzing"
	"github.com/vfg2006/commerce-insights-api/internal/usecases/auditing"
	"github.com/vfg2006/commerce-insights-api/pkg/apiErrors"
	"github.com/vfg2006/commerce-insights-api/pkg/middleware"
)

// TrainModel dispara um treino síncrono do modelo de previsão e devolve os
// metadados do treino.
func TrainModel(service analyzing.Analyzer, auditor auditing.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - TrainModel")

		metadata, err := service.Train()
		if err != nil {
			logrus.WithError(err).Error("Erro ao treinar o modelo de previsão")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao treinar o modelo", nil)
			return
		}

		auditor.Record("analytics.train", middleware.ClaimsFromRequest(r), r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metadata)
	}
}

// GetPredictions devolve a previsão de vendas dos próximos meses, geral e
// por categoria. O parâmetro ?months é opcional.
func GetPredictions(service analyzing.Analyzer, auditor auditing.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetPredictions")

		months, ok := queryInt(w, r, "months")
		if !ok {
			return
		}

		result, err := service.Predict(months)
		if err != nil {
			if errors.Is(err, analyzing.ErrInvalidParameter) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
				return
			}
			logrus.WithError(err).Error("Erro ao gerar previsão de vendas")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar previsão", nil)
			return
		}

		auditor.Record("analytics.predict", middleware.ClaimsFromRequest(r), r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

// GetHistory devolve o consolidado histórico por produto, cliente e
// categoria. Os parâmetros ?limit_products e ?limit_customers são opcionais.
func GetHistory(service analyzing.Analyzer, auditor auditing.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetHistory")

		limitProducts, ok := queryInt(w, r, "limit_products")
		if !ok {
			return
		}
		limitCustomers, ok := queryInt(w, r, "limit_customers")
		if !ok {
			return
		}

		breakdown, err := service.HistoricalBreakdown(limitProducts, limitCustomers)
		if err != nil {
			if errors.Is(err, analyzing.ErrInvalidParameter) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
				return
			}
			logrus.WithError(err).Error("Erro ao consolidar histórico de vendas")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao consolidar histórico", nil)
			return
		}

		auditor.Record("analytics.history", middleware.ClaimsFromRequest(r), r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(breakdown)
	}
}

// queryInt lê um parâmetro inteiro opcional da query string. Ausente vale
// zero; malformado encerra a requisição com erro de validação.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro inválido: "+name, nil)
		return 0, false
	}
	return value, true
}
