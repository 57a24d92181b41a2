package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoice_recorder/internal/config/connections/postgres"

	"github.com/jackc/pgx/v5"
)

var ErrTokenNotFound = errors.New("token not found")

type APIToken struct {
	ID        int64
	OwnerID   string
	Name      string
	ExpiresAt *time.Time
}

type APITokenRepository struct {
	pg *postgres.Postgres
}

func NewAPITokenRepository(pg *postgres.Postgres) *APITokenRepository {
	return &APITokenRepository{pg: pg}
}

// HashToken is the form a token is stored in; plain tokens never hit the table.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(plain)))
	return hex.EncodeToString(sum[:])
}

func (r *APITokenRepository) FindByPlainToken(ctx context.Context, plain string) (*APIToken, error) {
	if strings.TrimSpace(plain) == "" {
		return nil, ErrTokenNotFound
	}

	var t APIToken
	err := r.pg.Pool.QueryRow(ctx, `
		SELECT id, owner_id, name, expires_at
		FROM api_tokens
		WHERE token_hash = $1
		  AND (expires_at IS NULL OR expires_at > $2)`,
		HashToken(plain), time.Now(),
	).Scan(&t.ID, &t.OwnerID, &t.Name, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

// Issue stores a new token for owner and returns it in plain form once.
func (r *APITokenRepository) Issue(ctx context.Context, ownerID, name string, ttl time.Duration) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	plain := hex.EncodeToString(buf)

	var expires *time.Time
	if ttl > 0 {
		e := time.Now().Add(ttl)
		expires = &e
	}

	_, err := r.pg.Pool.Exec(ctx, `
		INSERT INTO api_tokens (owner_id, name, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		ownerID, name, HashToken(plain), expires,
	)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return plain, nil
}
