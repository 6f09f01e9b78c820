package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"eduvid/internal/config"
)

// Store manages the content catalog backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog configured in cfg and seeds it
// on first use.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(context.Background(), cfg.Content.CatalogPath)
}

// OpenPath opens the catalog file at path.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is empty")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := store.Seed(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves a recognized label to a catalogued object: an exact
// case-insensitive key match first, then the first key (in catalog order)
// that contains or is contained in the label. It returns nil when nothing
// matches.
func (s *Store) Lookup(ctx context.Context, name string) (*Object, error) {
	key, err := s.resolveKey(ctx, name, false)
	if err != nil || key == "" {
		return nil, err
	}
	return s.object(ctx, key)
}

func (s *Store) resolveKey(ctx context.Context, name string, withQuizzes bool) (string, error) {
	needle := normalizeKey(name)
	if needle == "" {
		return "", nil
	}
	var (
		keys []string
		err  error
	)
	if withQuizzes {
		keys, err = s.quizKeys(ctx)
	} else {
		keys, err = s.keys(ctx)
	}
	if err != nil {
		return "", err
	}
	for _, key := range keys {
		if key == needle {
			return key, nil
		}
	}
	for _, key := range keys {
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return key, nil
		}
	}
	return "", nil
}

func (s *Store) keys(ctx context.Context) ([]string, error) {
	return s.queryKeys(ctx, "SELECT key FROM objects ORDER BY position, key")
}

func (s *Store) quizKeys(ctx context.Context) ([]string, error) {
	return s.queryKeys(ctx, `SELECT key FROM objects o
        WHERE EXISTS (SELECT 1 FROM quizzes q WHERE q.object_key = o.key)
        ORDER BY position, key`)
}

func (s *Store) queryKeys(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *Store) object(ctx context.Context, key string) (*Object, error) {
	obj := &Object{Key: key}
	err := s.db.QueryRowContext(ctx, "SELECT name, category FROM objects WHERE key = ?", key).
		Scan(&obj.Name, &obj.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	features, err := s.features(ctx, key)
	if err != nil {
		return nil, err
	}
	obj.Features = features
	return obj, nil
}

func (s *Store) features(ctx context.Context, key string) ([]Feature, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT title, detail FROM features WHERE object_key = ? ORDER BY position", key)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()
	features := []Feature{}
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.Title, &f.Detail); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// Objects lists every catalogued object in catalog order.
func (s *Store) Objects(ctx context.Context) ([]Object, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	objects := make([]Object, 0, len(keys))
	for _, key := range keys {
		obj, err := s.object(ctx, key)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			objects = append(objects, *obj)
		}
	}
	return objects, nil
}

// Quizzes returns the questions for the object matching name. Resolution
// follows Lookup but only considers objects that have questions. Unknown
// objects yield an empty slice.
func (s *Store) Quizzes(ctx context.Context, name string) ([]Quiz, error) {
	key, err := s.resolveKey(ctx, name, true)
	if err != nil || key == "" {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, object_key, question, options_json, correct_index,
                explanation_correct, explanation_wrong
         FROM quizzes WHERE object_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	var quizzes []Quiz
	for rows.Next() {
		var q Quiz
		var options string
		if err := rows.Scan(&q.ID, &q.ObjectKey, &q.Question, &options, &q.CorrectIndex,
			&q.ExplanationCorrect, &q.ExplanationWrong); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode quiz %d options: %w", q.ID, err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Quiz fetches one question by identifier. It returns nil when absent.
func (s *Store) Quiz(ctx context.Context, id int64) (*Quiz, error) {
	var q Quiz
	var options string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, object_key, question, options_json, correct_index,
                explanation_correct, explanation_wrong
         FROM quizzes WHERE id = ?`, id).
		Scan(&q.ID, &q.ObjectKey, &q.Question, &options, &q.CorrectIndex,
			&q.ExplanationCorrect, &q.ExplanationWrong)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return nil, fmt.Errorf("decode quiz %d options: %w", q.ID, err)
	}
	return &q, nil
}

// RecordSighting stores a confirmed subject. A zero ConfirmedAt is stamped
// with the current time.
func (s *Store) RecordSighting(ctx context.Context, sighting Sighting) (int64, error) {
	if strings.TrimSpace(sighting.Label) == "" {
		return 0, errors.New("sighting label is empty")
	}
	if sighting.ConfirmedAt.IsZero() {
		sighting.ConfirmedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sightings (session_id, label, confidence, confirmed_at) VALUES (?, ?, ?, ?)",
		sighting.SessionID,
		sighting.Label,
		sighting.Confidence,
		sighting.ConfirmedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert sighting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Sightings returns the most recent sightings, newest first. A non-positive
// limit returns all of them.
func (s *Store) Sightings(ctx context.Context, limit int) ([]Sighting, error) {
	query := "SELECT id, session_id, label, confidence, confirmed_at FROM sightings ORDER BY confirmed_at DESC, id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()
	var out []Sighting
	for rows.Next() {
		var sighting Sighting
		var confirmed string
		if err := rows.Scan(&sighting.ID, &sighting.SessionID, &sighting.Label, &sighting.Confidence, &confirmed); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		if ts, err := time.Parse(timestampLayout, confirmed); err == nil {
			sighting.ConfirmedAt = ts
		}
		out = append(out, sighting)
	}
	return out, rows.Err()
}
