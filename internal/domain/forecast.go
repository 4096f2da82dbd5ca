package domain

// MonthlyBucket é um ponto da série mensal densa usada como entrada da
// regressão: índice sequencial 1..N, rótulo "YYYY-MM" e total do mês.
type MonthlyBucket struct {
	MonthIndex int     `json:"month_index"`
	Label      string  `json:"label"`
	Total      float64 `json:"total"`
}

// ForecastPoint é um par (mês, total) de previsão ou histórico.
type ForecastPoint struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// ModelMetadata descreve o modelo treinado e o conjunto de dados coberto.
type ModelMetadata struct {
	TrainedAt     string `json:"trained_at,omitempty"`
	GeneratedAt   string `json:"generated_at,omitempty"`
	Samples       int    `json:"samples"`
	InvoiceCount  int    `json:"invoice_count"`
	ProductCount  int    `json:"product_count"`
	CategoryCount int    `json:"category_count"`
	PeriodFrom    string `json:"period_from"`
	PeriodTo      string `json:"period_to"`
}

// CategoryForecast carrega a série histórica, a previsão e a participação
// percentual de uma categoria na receita total.
type CategoryForecast struct {
	Category    string          `json:"category"`
	Share       float64         `json:"share"`
	Historical  []ForecastPoint `json:"historical"`
	Predictions []ForecastPoint `json:"predictions"`
}

// ForecastResult é a resposta completa de uma previsão.
type ForecastResult struct {
	Predictions []ForecastPoint    `json:"predictions"`
	Metadata    *ModelMetadata     `json:"metadata"`
	ByCategory  []CategoryForecast `json:"by_category"`
}

// TotalEntry é um item de ranking (rótulo, total acumulado).
type TotalEntry struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// HistoricalBreakdown agrega os totais históricos por dimensão.
type HistoricalBreakdown struct {
	MonthlyTotals []MonthlyBucket `json:"monthly_totals"`
	ByProduct     []TotalEntry    `json:"by_product"`
	ByCustomer    []TotalEntry    `json:"by_customer"`
	ByCategory    []TotalEntry    `json:"by_category"`
}
