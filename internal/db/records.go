package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"textrecords/internal/models"
	"textrecords/internal/tally"
)

// LoadRecords returns every saved entry for a user. Order is unspecified.
func (d *DB) LoadRecords(ctx context.Context, userID uuid.UUID) ([]tally.Entry, error) {
	records, err := d.GetRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.Entries(records), nil
}

// GetRecords returns the full saved rows for a user.
func (d *DB) GetRecords(ctx context.Context, userID uuid.UUID) ([]models.Record, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, user_id, item, item_key, count, created_at, updated_at
		FROM records
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Item, &r.ItemKey, &r.Count, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveRecords merges entries into the user's saved records, summing counts
// for items that match case-insensitively. The first stored casing is kept.
//
// batchID makes the save idempotent: a batch that has already been applied
// is skipped and SaveRecords returns false.
func (d *DB) SaveRecords(ctx context.Context, userID, batchID uuid.UUID, entries []tally.Entry) (bool, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO save_batches (id, user_id, records)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, batchID, userID, len(entries))
	if err != nil {
		return false, fmt.Errorf("failed to record batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if len(entries) > 0 {
		if err := upsertRecords(ctx, tx, userID, entries); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit records: %w", err)
	}
	return true, nil
}

func upsertRecords(ctx context.Context, tx pgx.Tx, userID uuid.UUID, entries []tally.Entry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO records (user_id, item, item_key, count)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, item_key) DO UPDATE
			SET count = records.count + EXCLUDED.count, updated_at = NOW()
		`, userID, e.Key, models.ItemKey(e.Key), e.Count)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert records: %w", err)
	}
	return nil
}

// DeleteRecords removes all saved records for a user.
func (d *DB) DeleteRecords(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM records WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteStaleRecords removes records and save batches untouched for longer
// than maxAge and returns the number of records removed.
func (d *DB) DeleteStaleRecords(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	tag, err := d.Pool.Exec(ctx, `DELETE FROM records WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale records: %w", err)
	}

	if _, err := d.Pool.Exec(ctx, `DELETE FROM save_batches WHERE created_at < $1`, cutoff); err != nil {
		return tag.RowsAffected(), fmt.Errorf("failed to delete stale batches: %w", err)
	}

	return tag.RowsAffected(), nil
}
