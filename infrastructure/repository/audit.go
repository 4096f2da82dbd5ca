package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vfg2006/commerce-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

const (
	auditTable = "audit_log a"
)

type AuditRepository interface {
	Insert(entry *domain.AuditEntry) error
	ListRecent(limit int) ([]*domain.AuditEntry, error)
}

type auditRepository struct {
	conn *postgres.Connection
}

func NewAuditRepository(conn *postgres.Connection) AuditRepository {
	return &auditRepository{
		conn: conn,
	}
}

func (r *auditRepository) Insert(entry *domain.AuditEntry) error {
	query, args, err := squirrel.
		Insert("audit_log").
		Columns("user_id", "action", "ip_address").
		Values(entry.UserID, entry.Action, entry.IPAddress).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir a query de bitácora")
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return errors.Wrap(err, "erro ao registrar evento na bitácora")
	}

	return nil
}

func (r *auditRepository) ListRecent(limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := squirrel.
		Select("a.id, a.user_id, u.username, a.action, a.ip_address, a.created_at").
		From(auditTable).
		LeftJoin("users u ON u.id = a.user_id").
		OrderBy("a.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir a query de bitácora")
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao executar a query de bitácora")
	}
	defer rows.Close()

	entries := make([]*domain.AuditEntry, 0)
	for rows.Next() {
		entry := &domain.AuditEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.Action,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear entrada da bitácora")
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante a iteração da bitácora")
	}

	return entries, nil
}
