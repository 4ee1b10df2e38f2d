// Package badgerdb implements store.Store on top of Badger.
//
// Records are JSON documents under a per-kind key prefix; secondary index
// entries are empty-payload keys whose byte order is the listing order, so
// every listing is a single prefix scan.
package badgerdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/guestbook/internal/store"
)

// seqBandwidth is how many IDs a sequence leases per disk write.
const seqBandwidth = 100

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	bookSeq     *badger.Sequence
	greetingSeq *badger.Sequence
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	s, err := open(opts, logger)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return s, nil
}

// NewInMemory opens a Badger database that lives only in memory.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	bookSeq, err := db.GetSequence([]byte(bookSeqKey), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get book sequence: %w", err)
	}
	greetingSeq, err := db.GetSequence([]byte(greetingSeqKey), seqBandwidth)
	if err != nil {
		_ = bookSeq.Release()
		db.Close()
		return nil, fmt.Errorf("failed to get greeting sequence: %w", err)
	}

	return &Store{
		db:          db,
		logger:      logger,
		bookSeq:     bookSeq,
		greetingSeq: greetingSeq,
	}, nil
}

// Close releases unused sequence leases and closes the database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	if err := s.bookSeq.Release(); err != nil {
		s.logWarn("failed to release book sequence", err)
	}
	if err := s.greetingSeq.Release(); err != nil {
		s.logWarn("failed to release greeting sequence", err)
	}
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return store.ErrClosed
	}
	return nil
}

// DB exposes the underlying handle for read-only tooling.
func (s *Store) DB() *badger.DB {
	return s.db
}

// nextID draws from seq. Sequences start at zero; IDs start at one.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

func (s *Store) logWarn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "error", err)
	}
}
