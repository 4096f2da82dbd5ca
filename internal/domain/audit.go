package domain

import "time"

// AuditEntry é um registro da bitácora: quem fez o quê e de onde.
type AuditEntry struct {
	ID        int64     `json:"id"`
	UserID    *int      `json:"user_id"`
	Username  *string   `json:"username"`
	Action    string    `json:"action"`
	IPAddress *string   `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}
