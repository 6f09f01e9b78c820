package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed seed.json
var seedJSON []byte

type seedFile struct {
	Objects []seedObject `json:"objects"`
}

type seedObject struct {
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Features []Feature  `json:"features"`
	Quizzes  []seedQuiz `json:"quizzes"`
}

type seedQuiz struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectIndex       int      `json:"correct_index"`
	ExplanationCorrect string   `json:"explanation_correct"`
	ExplanationWrong   string   `json:"explanation_wrong"`
}

func loadSeed(data []byte) ([]seedObject, error) {
	var file seedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for _, obj := range file.Objects {
		if strings.TrimSpace(obj.Key) == "" {
			return nil, fmt.Errorf("seed object %q has no key", obj.Name)
		}
		for i, q := range obj.Quizzes {
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return nil, fmt.Errorf("seed object %q quiz %d: correct index out of range", obj.Key, i)
			}
		}
	}
	return file.Objects, nil
}

// Seed loads the embedded catalog when the store holds no objects. It returns
// the number of objects inserted (zero when the catalog was already seeded).
func (s *Store) Seed(ctx context.Context) (int, error) {
	return s.seedFrom(ctx, seedJSON)
}

func (s *Store) seedFrom(ctx context.Context, data []byte) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM objects").Scan(&count); err != nil {
		return 0, fmt.Errorf("count objects: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	objects, err := loadSeed(data)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for pos, obj := range objects {
		key := normalizeKey(obj.Key)
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO objects (key, name, category, position) VALUES (?, ?, ?, ?)",
			key, obj.Name, obj.Category, pos,
		); err != nil {
			return 0, fmt.Errorf("insert object %q: %w", key, err)
		}
		for i, f := range obj.Features {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO features (object_key, position, title, detail) VALUES (?, ?, ?, ?)",
				key, i, f.Title, f.Detail,
			); err != nil {
				return 0, fmt.Errorf("insert feature %q/%d: %w", key, i, err)
			}
		}
		for i, q := range obj.Quizzes {
			options, err := json.Marshal(q.Options)
			if err != nil {
				return 0, fmt.Errorf("encode options %q/%d: %w", key, i, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quizzes (
                    object_key, position, question, options_json, correct_index,
                    explanation_correct, explanation_wrong
                ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				key, i, q.Question, string(options), q.CorrectIndex,
				q.ExplanationCorrect, q.ExplanationWrong,
			); err != nil {
				return 0, fmt.Errorf("insert quiz %q/%d: %w", key, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(objects), nil
}
