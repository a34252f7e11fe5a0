// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

const entriesTable = "entries"

// entryRepository is the SQLite-backed implementation of [vault.Vault].
// Every entry is stored as a JSON payload next to its identifier and
// identity key columns; insertion order is kept by the seq column.
type entryRepository struct {
	*DB
	changed atomic.Bool
	logger  *logger.Logger
}

// NewEntryRepository constructs a [vault.Vault] backed by db. The schema
// must already be migrated.
func NewEntryRepository(db *DB, logger *logger.Logger) vault.Vault {
	return &entryRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *entryRepository) FindByUUID(ctx context.Context, id uuid.UUID) (models.Entry, error) {
	query, args, err := sq.Select("payload").
		From(entriesTable).
		Where(sq.Eq{"uuid": id.String()}).
		ToSql()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.queryOne(ctx, "entryRepository.FindByUUID", query, args...)
}

func (r *entryRepository) FindByGTU(ctx context.Context, key models.GTU) (models.Entry, error) {
	query, args, err := sq.Select("payload").
		From(entriesTable).
		Where(sq.Eq{"grp": key.Group, "title": key.Title, "username": key.User}).
		OrderBy("seq").
		Limit(1).
		ToSql()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.queryOne(ctx, "entryRepository.FindByGTU", query, args...)
}

func (r *entryRepository) queryOne(ctx context.Context, fn, query string, args ...any) (models.Entry, error) {
	log := logger.FromContext(ctx)

	var payload string
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, vault.ErrEntryNotFound
	}
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to query entry")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return decodeEntry(payload)
}

func (r *entryRepository) Entries(ctx context.Context) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("payload").From(entriesTable).OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "entryRepository.Entries").Msg("failed to execute query for getting entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0, 64)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			log.Err(err).Str("func", "entryRepository.Entries").Msg("failed to scan entry row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		e, err := decodeEntry(payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "entryRepository.Entries").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

func (r *entryRepository) Append(ctx context.Context, entry models.Entry) error {
	log := logger.FromContext(ctx)

	payload, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert(entriesTable).
		Columns("uuid", "grp", "title", "username", "payload").
		Values(entry.UUID.String(), entry.Group, entry.Title, entry.User, payload).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", vault.ErrDuplicateUUID, entry.UUID)
		}
		log.Err(err).
			Str("func", "entryRepository.Append").
			Str("uuid", entry.UUID.String()).
			Msg("failed to insert entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *entryRepository) Update(ctx context.Context, entry models.Entry) error {
	payload, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	query, args, err := sq.Update(entriesTable).
		SetMap(map[string]any{
			"grp":      entry.Group,
			"title":    entry.Title,
			"username": entry.User,
			"payload":  payload,
		}).
		Where(sq.Eq{"uuid": entry.UUID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.execOne(ctx, "entryRepository.Update", entry.UUID, query, args...)
}

func (r *entryRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query, args, err := sq.Delete(entriesTable).
		Where(sq.Eq{"uuid": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.execOne(ctx, "entryRepository.Remove", id, query, args...)
}

// execOne runs a statement that must touch exactly the row of id.
func (r *entryRepository) execOne(ctx context.Context, fn string, id uuid.UUID, query string, args ...any) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Str("uuid", id.String()).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return vault.ErrEntryNotFound
	}
	return nil
}

func (r *entryRepository) MarkChanged(changed bool) {
	r.changed.Store(changed)
}

func (r *entryRepository) IsChanged() bool {
	return r.changed.Load()
}

func encodeEntry(e models.Entry) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingEntry, err)
	}
	return string(data), nil
}

func decodeEntry(payload string) (models.Entry, error) {
	var e models.Entry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrEncodingEntry, err)
	}
	return e, nil
}
