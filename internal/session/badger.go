package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bibliobot/bibliobot-server/internal/domain"
)

const sessionPrefix = "session:"

// BadgerStore persists sessions in a Badger database so conversations
// survive restarts. Entries also carry a Badger TTL as a backstop for Sweep.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
}

// NewBadgerStore opens (or creates) a session database at path. Entries expire
// after ttl; a zero ttl disables expiry.
func NewBadgerStore(path string, ttl time.Duration, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Session database opened", "path", path)
	}

	return &BadgerStore{db: db, logger: logger, ttl: ttl}, nil
}

// Close gracefully closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func sessionKey(userID string) []byte {
	return []byte(sessionPrefix + userID)
}

// Get implements Store.
func (b *BadgerStore) Get(_ context.Context, userID string) (*domain.Session, error) {
	var s domain.Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Set implements Store.
func (b *BadgerStore) Set(_ context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(s.UserID), data)
		if b.ttl > 0 {
			entry = entry.WithTTL(b.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete implements Store.
func (b *BadgerStore) Delete(_ context.Context, userID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(userID))
	})
}

// Sweep implements Store.
func (b *BadgerStore) Sweep(ctx context.Context, idleBefore time.Time) (int, error) {
	var stale [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var s domain.Session
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			}); err != nil {
				if b.logger != nil {
					b.logger.Warn("dropping unreadable session", "key", string(item.Key()), "error", err)
				}
				stale = append(stale, item.KeyCopy(nil))
				continue
			}
			if s.UpdatedAt.Before(idleBefore) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	if len(stale) == 0 {
		return 0, nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete session: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush session deletes: %w", err)
	}

	return len(stale), nil
}
