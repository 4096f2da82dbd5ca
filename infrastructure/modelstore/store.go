// Package modelstore persiste o modelo de previsão treinado e seus
// metadados. A abstração existe para que os testes usem um store em memória
// e para isolar a troca atômica do artefato em disco.
package modelstore

import (
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

type Store interface {
	// Exists indica se há um modelo treinado disponível.
	Exists() (bool, error)
	LoadModel() (*domain.RegressionModel, error)
	// SaveModel substitui o artefato de forma atômica: um leitor concorrente
	// vê o modelo antigo ou o novo, nunca um estado intermediário.
	SaveModel(model *domain.RegressionModel) error
	LoadMetadata() (*domain.ModelMetadata, error)
	SaveMetadata(metadata *domain.ModelMetadata) error
}
