package domain

// RegressionModel é o artefato treinado persistido: uma regressão por
// mínimos quadrados sobre (índice do mês → total mensal).
type RegressionModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Samples   int     `json:"samples"`
}

// PredictAt extrapola o total previsto para um índice de mês futuro.
func (m RegressionModel) PredictAt(monthIndex int) float64 {
	return m.Intercept + m.Slope*float64(monthIndex)
}
