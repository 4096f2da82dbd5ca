package domain

import "time"

// ReportRow é uma linha detalhada do relatório: uma linha expandida de
// fatura. Os nomes JSON seguem o contrato histórico da API em espanhol.
type ReportRow struct {
	Invoice    string  `json:"factura"`
	Customer   string  `json:"cliente"`
	Product    string  `json:"producto"`
	Category   string  `json:"categoria"`
	Quantity   int     `json:"cantidad"`
	MontoTotal float64 `json:"monto_total"`
	Fecha      string  `json:"fecha"`

	// Date é usado apenas para ordenação, nunca serializado.
	Date time.Time `json:"-"`
}

// ReportSummaryEntry é uma entrada do resumo agrupado. Os campos opcionais
// só são preenchidos quando as flags correspondentes do prompt estão ativas.
type ReportSummaryEntry struct {
	Label        string  `json:"label"`
	MontoTotal   float64 `json:"monto_total"`
	Cantidad     int     `json:"cantidad"`
	InvoiceCount *int    `json:"facturas,omitempty"`
	FirstDate    *string `json:"primera_fecha,omitempty"`
	LastDate     *string `json:"ultima_fecha,omitempty"`

	// FirstSeen/LastSeen apoiam ordenação e desempate cronológico.
	FirstSeen time.Time `json:"-"`
	LastSeen  time.Time `json:"-"`
}

// SummaryField descreve uma coluna do resumo. Os exportadores usam esse
// manifesto para decidir colunas e cabeçalhos dinamicamente.
type SummaryField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Report é a saída completa do construtor de relatórios.
type Report struct {
	Rows          []ReportRow          `json:"rows"`
	Summary       []ReportSummaryEntry `json:"summary"`
	SummaryFields []SummaryField       `json:"summary_fields"`
	GroupBy       string               `json:"group_by"`
	StartDate     *string              `json:"start_date"`
	EndDate       *string              `json:"end_date"`
	Prompt        string               `json:"prompt,omitempty"`
	Channel       string               `json:"channel,omitempty"`
}
