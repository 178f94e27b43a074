package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/vaultpass/keysmith-go/internal/model"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrDuplicateClient = errors.New("client already exists")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// ClientRepository handles client application persistence.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a client and fills in its creation time.
func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	const query = `INSERT INTO clients (id, name, secret_hash) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.SecretHash); err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateClient
		}
		return err
	}

	return r.db.QueryRowContext(ctx, `SELECT created_at FROM clients WHERE id = ?`, c.ID).Scan(&c.CreatedAt)
}

// GetByID retrieves a client by its ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	const query = `SELECT id, name, secret_hash, created_at FROM clients WHERE id = ?`

	c := &model.Client{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.SecretHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	return c, nil
}

func isDuplicateEntryError(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
