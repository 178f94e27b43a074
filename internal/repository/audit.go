package repository

import (
	"context"
	"database/sql"

	"github.com/vaultpass/keysmith-go/internal/model"
)

// AuditRepository stores generation audit records.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts a single generation event.
func (r *AuditRepository) Record(ctx context.Context, e model.GenerationEvent) error {
	const query = `INSERT INTO generation_events (id, client_id, kind, length, key_size, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, e.ID, nullString(e.ClientID), e.Kind, e.Length, e.KeySize, e.Outcome)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
