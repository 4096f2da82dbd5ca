package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Labels sentinela usados quando o payload da fatura não permite resolver
// produto, categoria ou cliente. Mantidos em espanhol por compatibilidade
// com o contrato histórico da API.
const (
	LabelUncategorized   = "Sin categoria"
	LabelNoCustomer      = "Sin cliente"
	LabelGeneralSale     = "Venta general"
	LabelUnnamedProduct  = "Producto sin nombre"
	LabelUnlinkedProduct = "Producto sin asociar"
)

// Invoice representa uma fatura persistida. O campo Data carrega o payload
// estruturado original do gateway (metadata.items e lines.data), que pode
// variar de formato entre períodos.
type Invoice struct {
	ID               int64                  `json:"id"`
	InvoiceID        string                 `json:"invoice_id"`
	SessionID        string                 `json:"session_id"`
	CustomerID       *int                   `json:"customer_id"`
	CustomerUsername *string                `json:"customer_username"`
	AmountTotal      decimal.Decimal        `json:"amount_total"`
	Currency         string                 `json:"currency"`
	Status           string                 `json:"status"`
	HostedInvoiceURL string                 `json:"hosted_invoice_url"`
	Data             map[string]interface{} `json:"data"`
	StockProcessed   bool                   `json:"stock_processed"`
	CreatedAt        time.Time              `json:"created_at"`
}

// CustomerLabel retorna o username do cliente ou o sentinela "Sin cliente".
func (i *Invoice) CustomerLabel() string {
	if i.CustomerUsername != nil && *i.CustomerUsername != "" {
		return *i.CustomerUsername
	}
	return LabelNoCustomer
}

// MonthLabel retorna o rótulo "YYYY-MM" do mês de criação da fatura.
func (i *Invoice) MonthLabel() string {
	return i.CreatedAt.Format("2006-01")
}

// MonthTotal é o resultado do agrupamento mensal feito no banco.
type MonthTotal struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}
