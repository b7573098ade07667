package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"slidedeck/model"
	"slidedeck/native"
)

// DefaultVersionLimit is how many versions are kept per deck.
const DefaultVersionLimit = 10

// ErrVersionNotFound is returned for unknown version ids.
var ErrVersionNotFound = errors.New("version not found")

// Version describes a saved savepoint of a deck.
type Version struct {
	ID          string `json:"id"`
	DeckName    string `json:"deckName"`
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
	SlideCount  int    `json:"slideCount"`
	CreatedAt   int64  `json:"createdAt"`
}

// VersionService stores whole-deck savepoints, newest first, keeping at most
// limit per deck.
type VersionService struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// NewVersionService creates a VersionService. A limit of zero or less uses
// DefaultVersionLimit.
func NewVersionService(db *sql.DB, limit int) *VersionService {
	if limit <= 0 {
		limit = DefaultVersionLimit
	}
	return &VersionService{db: db, limit: limit, now: time.Now}
}

// SaveVersion stores p as the newest version of deckName. An empty
// description becomes "Version N". Versions past the limit are pruned in
// the same transaction.
func (s *VersionService) SaveVersion(deckName, description, author string, p model.Presentation) (Version, error) {
	if s.db == nil {
		return Version{}, fmt.Errorf("database connection is nil")
	}
	if deckName == "" {
		return Version{}, fmt.Errorf("deckName is required")
	}

	now := s.now()
	doc, err := native.EncodeAt(p, now)
	if err != nil {
		return Version{}, fmt.Errorf("failed to serialize presentation: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Version{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if description == "" {
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM deck_versions WHERE deck_name = ?", deckName).Scan(&count); err != nil {
			return Version{}, fmt.Errorf("failed to count versions: %w", err)
		}
		description = fmt.Sprintf("Version %d", count+1)
	}

	v := Version{
		ID:          uuid.New().String(),
		DeckName:    deckName,
		Description: description,
		Author:      author,
		SlideCount:  p.Len(),
		CreatedAt:   now.UnixMilli(),
	}
	_, err = tx.Exec(`
		INSERT INTO deck_versions (id, deck_name, description, author, slide_count, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.DeckName, v.Description, v.Author, v.SlideCount, string(doc), v.CreatedAt)
	if err != nil {
		return Version{}, fmt.Errorf("failed to insert version: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM deck_versions
		WHERE deck_name = ? AND seq NOT IN (
			SELECT seq FROM deck_versions WHERE deck_name = ?
			ORDER BY created_at DESC, seq DESC LIMIT ?
		)
	`, deckName, deckName, s.limit)
	if err != nil {
		return Version{}, fmt.Errorf("failed to prune versions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return v, nil
}

// ListVersions returns the versions of deckName, newest first.
func (s *VersionService) ListVersions(deckName string) ([]Version, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	rows, err := s.db.Query(`
		SELECT id, deck_name, description, author, slide_count, created_at
		FROM deck_versions WHERE deck_name = ?
		ORDER BY created_at DESC, seq DESC
	`, deckName)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.DeckName, &v.Description, &v.Author, &v.SlideCount, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// LoadVersion returns the presentation saved under id.
func (s *VersionService) LoadVersion(id string) (model.Presentation, Version, error) {
	if s.db == nil {
		return model.Presentation{}, Version{}, fmt.Errorf("database connection is nil")
	}
	var v Version
	var doc string
	err := s.db.QueryRow(`
		SELECT id, deck_name, description, author, slide_count, created_at, document
		FROM deck_versions WHERE id = ?
	`, id).Scan(&v.ID, &v.DeckName, &v.Description, &v.Author, &v.SlideCount, &v.CreatedAt, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Presentation{}, Version{}, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}
	if err != nil {
		return model.Presentation{}, Version{}, fmt.Errorf("failed to load version: %w", err)
	}
	p, err := native.Decode([]byte(doc))
	if err != nil {
		return model.Presentation{}, Version{}, fmt.Errorf("version %s: %w", id, err)
	}
	return p, v, nil
}

// DeleteVersion removes one version.
func (s *VersionService) DeleteVersion(id string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	res, err := s.db.Exec("DELETE FROM deck_versions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}
	return nil
}
