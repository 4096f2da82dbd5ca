package domain

import "time"

// Dimensões de agrupamento reconhecidas pelo parser de prompts.
const (
	GroupByProduct  = "producto"
	GroupByCustomer = "cliente"
	GroupByCategory = "categoria"
	GroupByMonth    = "mes"
)

// Formatos de saída do relatório.
const (
	FormatScreen = "screen"
	FormatPDF    = "pdf"
	FormatExcel  = "excel"
)

// ParsedPrompt é o pedido estruturado extraído de um prompt em texto livre.
// Nunca fica incompleto: cada campo tem um default documentado.
type ParsedPrompt struct {
	Prompt        string    `json:"prompt"`
	GroupBy       string    `json:"group_by"`
	Format        string    `json:"format"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	IncludeCounts bool      `json:"include_counts"`
	IncludeDates  bool      `json:"include_dates"`
	Chronological bool      `json:"chronological"`
}
