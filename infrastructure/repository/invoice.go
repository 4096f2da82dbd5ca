package repository

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/commerce-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

const (
	invoicesTable = "invoices i"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const invoiceColumns = `i.id, i.invoice_id, i.session_id, i.user_id, u.username,
	i.amount_total, i.currency, i.status, i.hosted_invoice_url, i.data,
	i.stock_processed, i.created_at`

type InvoiceRepository interface {
	ListAll() ([]*domain.Invoice, error)
	ListByDateRange(startDate, endDate *time.Time) ([]*domain.Invoice, error)
	MonthlyTotals() ([]*domain.MonthTotal, error)
	HasInvoicesInMonth(monthStart, monthEnd time.Time) (bool, error)
	Count() (int, error)
	CreateInTx(tx *sql.Tx, invoice *domain.Invoice) (int64, error)
	UpdateCreatedAtInTx(tx *sql.Tx, id int64, createdAt time.Time) error
}

type invoiceRepository struct {
	conn *postgres.Connection
}

func NewInvoiceRepository(conn *postgres.Connection) InvoiceRepository {
	return &invoiceRepository{
		conn: conn,
	}
}

func (r *invoiceRepository) ListAll() ([]*domain.Invoice, error) {
	return r.list(nil, nil)
}

func (r *invoiceRepository) ListByDateRange(startDate, endDate *time.Time) ([]*domain.Invoice, error) {
	return r.list(startDate, endDate)
}

func (r *invoiceRepository) list(startDate, endDate *time.Time) ([]*domain.Invoice, error) {
	builder := squirrel.
		Select(invoiceColumns).
		From(invoicesTable).
		LeftJoin("users u ON u.id = i.user_id").
		OrderBy("i.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if startDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"i.created_at": *startDate})
	}
	if endDate != nil {
		builder = builder.Where(squirrel.Lt{"i.created_at": endDate.AddDate(0, 0, 1)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query de faturas")
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao executar a query de faturas")
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao escanear fatura")
		}
		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração de faturas")
	}

	return invoices, nil
}

// MonthlyTotals agrupa as faturas por mês calendário. A heurística de escala
// é aplicada fatura a fatura dentro do SUM: somar o bruto e normalizar depois
// dividiria por 100 um mês inteiro de faturas em unidades maiores.
func (r *invoiceRepository) MonthlyTotals() ([]*domain.MonthTotal, error) {
	query, args, err := squirrel.
		Select(
			"date_trunc('month', i.created_at) AS month",
			"SUM(CASE WHEN i.amount_total > 1000 THEN i.amount_total / 100 ELSE i.amount_total END) AS total",
		).
		From(invoicesTable).
		GroupBy("date_trunc('month', i.created_at)").
		OrderBy("month ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query de totais mensais")
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao executar a query de totais mensais")
	}
	defer rows.Close()

	totals := make([]*domain.MonthTotal, 0)
	for rows.Next() {
		var month time.Time
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear total mensal")
		}
		totals = append(totals, &domain.MonthTotal{Month: month, Total: total})
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração de totais mensais")
	}

	return totals, nil
}

func (r *invoiceRepository) HasInvoicesInMonth(monthStart, monthEnd time.Time) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(invoicesTable).
		Where(squirrel.GtOrEq{"i.created_at": monthStart}).
		Where(squirrel.Lt{"i.created_at": monthEnd}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "erro ao construir a query de existência mensal")
	}

	var one int
	err = r.conn.QueryRow(query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "erro ao verificar faturas do mês")
	}

	return true, nil
}

func (r *invoiceRepository) Count() (int, error) {
	var count int
	err := r.conn.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "erro ao contar faturas")
	}
	return count, nil
}

// CreateInTx insere uma fatura dentro de uma transação já aberta. Usado pelo
// gerador de backfill para manter a atomicidade por mês.
func (r *invoiceRepository) CreateInTx(tx *sql.Tx, invoice *domain.Invoice) (int64, error) {
	var dataJSON []byte
	var err error

	if invoice.Data != nil {
		dataJSON, err = json.Marshal(invoice.Data)
		if err != nil {
			return 0, errors.Wrap(err, "erro ao serializar payload da fatura")
		}
	}

	query, args, err := squirrel.
		Insert("invoices").
		Columns("invoice_id", "session_id", "user_id", "amount_total", "currency",
			"status", "hosted_invoice_url", "data", "stock_processed").
		Values(
			invoice.InvoiceID,
			invoice.SessionID,
			invoice.CustomerID,
			invoice.AmountTotal,
			invoice.Currency,
			invoice.Status,
			invoice.HostedInvoiceURL,
			dataJSON,
			invoice.StockProcessed,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "erro ao construir a query de inserção de fatura")
	}

	var id int64
	if err := tx.QueryRow(query, args...).Scan(&id); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return 0, errors.Wrapf(pqErr, "erro no banco de dados (código: %s)", pqErr.Code)
		}
		return 0, errors.Wrap(err, "erro ao inserir fatura")
	}

	return id, nil
}

func (r *invoiceRepository) UpdateCreatedAtInTx(tx *sql.Tx, id int64, createdAt time.Time) error {
	query, args, err := squirrel.
		Update("invoices").
		Set("created_at", createdAt).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir a query de ajuste de data")
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return errors.Wrap(err, "erro ao ajustar data de criação da fatura")
	}

	return nil
}

func (r *invoiceRepository) scanInvoice(rows *sql.Rows) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var dataJSON []byte
	var amountStr string

	err := rows.Scan(
		&invoice.ID,
		&invoice.InvoiceID,
		&invoice.SessionID,
		&invoice.CustomerID,
		&invoice.CustomerUsername,
		&amountStr,
		&invoice.Currency,
		&invoice.Status,
		&invoice.HostedInvoiceURL,
		&dataJSON,
		&invoice.StockProcessed,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao converter total da fatura")
	}
	invoice.AmountTotal = amount

	if len(dataJSON) > 0 {
		// Payloads com drift de formato nunca interrompem a leitura: uma
		// fatura com JSON inválido segue com payload vazio.
		var data map[string]interface{}
		if err := json.Unmarshal(dataJSON, &data); err == nil {
			invoice.Data = data
		}
	}

	return invoice, nil
}
