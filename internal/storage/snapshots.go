package storage

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"

	"scardoc/internal/errors"
	"scardoc/internal/output"
	"scardoc/internal/scardoc"
)

// timeLayout has fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultCacheSize bounds the decoded-document cache when no size is given.
const DefaultCacheSize = 32

// Snapshot describes one stored document.
type Snapshot struct {
	ID          string    `json:"id"`
	Label       string    `json:"label,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"createdAt"`
	Functions   int       `json:"functions"`
	Enums       int       `json:"enums"`
	Globals     int       `json:"globals"`
}

// Store saves and loads documents. Identical content is stored once.
type Store struct {
	db     *DB
	cache  *lru.Cache[string, *scardoc.Document]
	logger *slog.Logger
	now    func() time.Time
}

// NewStore wraps an open database. cacheSize below 1 uses DefaultCacheSize.
func NewStore(db *DB, cacheSize int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *scardoc.Document](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache, logger: logger, now: time.Now}, nil
}

// Fingerprint returns the BLAKE2b-256 hex digest of the canonical JSON.
func Fingerprint(canonical []byte) string {
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// Put stores doc under label. When a snapshot with the same content exists it
// is returned with created false and nothing is written.
func (s *Store) Put(label string, doc *scardoc.Document) (Snapshot, bool, error) {
	canonical, err := output.Canonical(doc)
	if err != nil {
		return Snapshot{}, false, errors.NewDocError(errors.InternalError, "failed to encode document", err)
	}
	fp := Fingerprint(canonical)

	if existing, err := s.byFingerprint(fp); err != nil {
		return Snapshot{}, false, err
	} else if existing != nil {
		s.logger.Debug("Snapshot already stored", "id", existing.ID, "fingerprint", fp)
		return *existing, false, nil
	}

	snap := Snapshot{
		ID:          uuid.NewString(),
		Label:       label,
		Fingerprint: fp,
		CreatedAt:   s.now().UTC(),
		Functions:   doc.FunctionCount(),
	}
	if doc != nil {
		snap.Enums = len(doc.Enums)
		snap.Globals = len(doc.Globals)
	}

	err = s.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO snapshots (id, label, fingerprint, created_at, functions, enums, globals, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, snap.ID, snap.Label, snap.Fingerprint, snap.CreatedAt.Format(timeLayout),
			snap.Functions, snap.Enums, snap.Globals, output.Compress(canonical))
		return err
	})
	if err != nil {
		return Snapshot{}, false, errors.NewDocError(errors.StoreFailure, "failed to store snapshot", err)
	}

	s.logger.Info("Stored snapshot", "id", snap.ID, "label", label, "functions", snap.Functions)
	return snap, true, nil
}

// Get resolves an ID or unique ID prefix and returns its metadata and a copy
// of the document.
func (s *Store) Get(idOrPrefix string) (Snapshot, *scardoc.Document, error) {
	snap, err := s.resolve(idOrPrefix)
	if err != nil {
		return Snapshot{}, nil, err
	}

	if doc, ok := s.cache.Get(snap.ID); ok {
		return snap, doc.Clone(), nil
	}

	var data []byte
	if err := s.db.conn.QueryRow(`SELECT data FROM snapshots WHERE id = ?`, snap.ID).Scan(&data); err != nil {
		return Snapshot{}, nil, errors.NewDocError(errors.StoreFailure, "failed to read snapshot", err)
	}
	raw, err := output.Decompress(data)
	if err != nil {
		return Snapshot{}, nil, errors.NewDocError(errors.StoreFailure, "snapshot data is corrupt", err)
	}
	doc, err := output.Decode(bytes.NewReader(raw), output.FormatJSON)
	if err != nil {
		return Snapshot{}, nil, err
	}

	s.cache.Add(snap.ID, doc)
	return snap, doc.Clone(), nil
}

// List returns all snapshots, newest first.
func (s *Store) List() ([]Snapshot, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, label, fingerprint, created_at, functions, enums, globals
		FROM snapshots ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, errors.NewDocError(errors.StoreFailure, "failed to list snapshots", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, errors.NewDocError(errors.StoreFailure, "failed to scan snapshot", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDocError(errors.StoreFailure, "failed to list snapshots", err)
	}
	return snaps, nil
}

// Delete removes the snapshot identified by an ID or unique prefix.
func (s *Store) Delete(idOrPrefix string) (Snapshot, error) {
	snap, err := s.resolve(idOrPrefix)
	if err != nil {
		return Snapshot{}, err
	}
	err = s.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM snapshots WHERE id = ?`, snap.ID)
		return err
	})
	if err != nil {
		return Snapshot{}, errors.NewDocError(errors.StoreFailure, "failed to delete snapshot", err)
	}
	s.cache.Remove(snap.ID)
	s.logger.Info("Deleted snapshot", "id", snap.ID)
	return snap, nil
}

const snapshotColumns = `id, label, fingerprint, created_at, functions, enums, globals`

func (s *Store) resolve(idOrPrefix string) (Snapshot, error) {
	if idOrPrefix == "" {
		return Snapshot{}, errors.Errorf(errors.SnapshotNotFound, "empty snapshot id")
	}

	rows, err := s.db.conn.Query(`
		SELECT `+snapshotColumns+` FROM snapshots
		WHERE id = ? OR substr(id, 1, length(?)) = ?
		ORDER BY id LIMIT 2
	`, idOrPrefix, idOrPrefix, idOrPrefix)
	if err != nil {
		return Snapshot{}, errors.NewDocError(errors.StoreFailure, "failed to look up snapshot", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return Snapshot{}, errors.NewDocError(errors.StoreFailure, "failed to scan snapshot", err)
		}
		if snap.ID == idOrPrefix {
			return snap, nil
		}
		matches = append(matches, snap)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, errors.NewDocError(errors.StoreFailure, "failed to look up snapshot", err)
	}

	switch len(matches) {
	case 0:
		return Snapshot{}, errors.Errorf(errors.SnapshotNotFound, "no snapshot matches %q", idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return Snapshot{}, errors.Errorf(errors.SnapshotNotFound, "snapshot prefix %q is ambiguous", idOrPrefix)
	}
}

func (s *Store) byFingerprint(fp string) (*Snapshot, error) {
	row := s.db.conn.QueryRow(`SELECT `+snapshotColumns+` FROM snapshots WHERE fingerprint = ?`, fp)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDocError(errors.StoreFailure, "failed to look up fingerprint", err)
	}
	return &snap, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (Snapshot, error) {
	var snap Snapshot
	var created string
	if err := sc.Scan(&snap.ID, &snap.Label, &snap.Fingerprint, &created,
		&snap.Functions, &snap.Enums, &snap.Globals); err != nil {
		return Snapshot{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	snap.CreatedAt = t
	return snap, nil
}
