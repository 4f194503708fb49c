package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"stackpot/database"
	"stackpot/domain/entities"

	"github.com/jackc/pgx/v5/pgtype"
)

// LedgerEntryRepository implements the append-only operation journal
type LedgerEntryRepository struct {
	q Queryable
}

// NewLedgerEntryRepository creates a new ledger entry repository
func NewLedgerEntryRepository(db *database.DB) *LedgerEntryRepository {
	return &LedgerEntryRepository{q: db.Pool}
}

// NewLedgerEntryRepositoryScoped creates a new ledger entry repository bound to a transaction
func NewLedgerEntryRepositoryScoped(tx Queryable) *LedgerEntryRepository {
	return &LedgerEntryRepository{q: tx}
}

// Record appends an entry
func (r *LedgerEntryRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (kind, principal, amount, block, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		string(entry.Kind),
		entry.Principal,
		toNumeric(entry.Amount),
		entry.Block,
		metadataJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s ledger entry: %w", entry.Kind, err)
	}

	return nil
}

// GetByPrincipal returns the newest entries for a principal
func (r *LedgerEntryRepository) GetByPrincipal(ctx context.Context, principal string, limit int) ([]*entities.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, principal, amount, block, metadata, created_at
		FROM ledger_entries
		WHERE principal = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, principal, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		var kind string
		var amount pgtype.Numeric
		var metadataJSON []byte

		if err := rows.Scan(&entry.ID, &kind, &entry.Principal, &amount, &entry.Block, &metadataJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.Kind = entities.LedgerEntryKind(kind)
		if entry.Amount, err = fromNumeric(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for ledger entry %d: %w", entry.ID, err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ledger metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}
