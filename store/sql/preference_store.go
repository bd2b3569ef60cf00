package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PreferenceStore persists boolean preferences in system_auth_preferences,
// one row per key. Writes commit immediately, so Flush has nothing to do
// beyond checking the store is usable.
type PreferenceStore struct {
	db   *bun.DB
	repo repository.Repository[*preferenceRecord]
}

func NewPreferenceStore(db *bun.DB) (*PreferenceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*preferenceRecord](db, preferenceHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid preference repository wiring: %w", err)
		}
	}
	return &PreferenceStore{db: db, repo: repo}, nil
}

// NewPreferenceStoreFromPersistence accepts a *bun.DB or anything exposing
// DB() *bun.DB, such as a go-persistence-bun client.
func NewPreferenceStoreFromPersistence(client any) (*PreferenceStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewPreferenceStore(db)
}

func (s *PreferenceStore) Bool(ctx context.Context, key string) (bool, bool, error) {
	if s == nil || s.repo == nil {
		return false, false, fmt.Errorf("sqlstore: preference store is not configured")
	}
	key, err := normalizePreferenceKey(key)
	if err != nil {
		return false, false, err
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("preference_key", "=", key),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return false, false, err
	}
	if len(records) == 0 || records[0] == nil {
		return false, false, nil
	}
	return records[0].Value, true, nil
}

func (s *PreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	if s == nil || s.db == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: preference store is not configured")
	}
	key, err := normalizePreferenceKey(key)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findPreferenceTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			_, createErr := s.repo.CreateTx(ctx, tx, &preferenceRecord{
				ID:        uuid.NewString(),
				Key:       key,
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			})
			return createErr
		}
		record.Value = value
		record.UpdatedAt = now
		_, updateErr := tx.NewUpdate().
			Model(record).
			Column("value", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
}

func (s *PreferenceStore) Flush(context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: preference store is not configured")
	}
	return nil
}

func findPreferenceTx(ctx context.Context, tx bun.Tx, key string) (*preferenceRecord, error) {
	record := &preferenceRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.preference_key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func normalizePreferenceKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: preference key is required")
	}
	return trimmed, nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
