package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/skyline/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sync_records (
    collection TEXT        NOT NULL,
    id         BIGINT      NOT NULL,
    payload    JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, id)
)`

// Postgres keeps every collection in a single sync_records table.
type Postgres struct {
	db      *pgxpool.Pool
	cascade []CascadeRule
}

func NewPostgres(db *pgxpool.Pool, cascade []CascadeRule) *Postgres {
	return &Postgres{db: db, cascade: cascade}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create sync_records: %w", err)
	}
	return nil
}

func (p *Postgres) SelectAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := p.db.Query(ctx, `SELECT payload FROM sync_records WHERE collection=$1 ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(payload))
	}
	return out, rows.Err()
}

// Upsert inserts the record or merges its fields into the stored one.
func (p *Postgres) Upsert(ctx context.Context, collection string, payload json.RawMessage) error {
	id, err := payloadID(payload)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
        INSERT INTO sync_records (collection, id, payload)
        VALUES ($1, $2, $3::jsonb)
        ON CONFLICT (collection, id) DO UPDATE
        SET payload = sync_records.payload || EXCLUDED.payload,
            updated_at = now()
    `, collection, id, string(payload))
	return err
}

// Delete removes the record and, in the same transaction, every record that
// references it through the cascade rules.
func (p *Postgres) Delete(ctx context.Context, collection string, id int64) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sync_records WHERE collection=$1 AND id=$2`, collection, id); err != nil {
		return err
	}
	if err := p.deleteChildren(ctx, tx, collection, []int64{id}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) deleteChildren(ctx context.Context, tx pgx.Tx, parent string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	for _, rule := range childRules(p.cascade, parent) {
		rows, err := tx.Query(ctx, `
            DELETE FROM sync_records
            WHERE collection=$1 AND (payload->>$2)::bigint = ANY($3)
            RETURNING id
        `, rule.Child, rule.ForeignKey, ids)
		if err != nil {
			return fmt.Errorf("cascade %s -> %s: %w", parent, rule.Child, err)
		}
		childIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("cascade %s -> %s: %w", parent, rule.Child, err)
		}
		if err := p.deleteChildren(ctx, tx, rule.Child, childIDs); err != nil {
			return err
		}
	}
	return nil
}

var _ store.Remote = (*Postgres)(nil)
