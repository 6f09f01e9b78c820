package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"eduvid/internal/catalog"
	"eduvid/internal/testsupport"
)

func TestOpenSeedsOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	objects, err := store.Objects(ctx)
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if len(objects) < 20 {
		t.Fatalf("expected seeded catalog, got %d objects", len(objects))
	}
	if objects[0].Key != "bottle" || len(objects[0].Features) == 0 {
		t.Fatalf("unexpected first object %+v", objects[0])
	}

	inserted, err := store.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("second seed inserted %d objects", inserted)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := catalog.OpenPath(ctx, cfg.Content.CatalogPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	again, err := reopened.Objects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != len(objects) {
		t.Fatalf("reopen changed object count: %d vs %d", len(again), len(objects))
	}
}

func TestLookup(t *testing.T) {
	store := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := []struct {
		name    string
		wantKey string
	}{
		{"bottle", "bottle"},
		{"  Cell Phone ", "cell phone"},
		{"Water bottle", "bottle"},
		{"phone", "cell phone"},
		{"Electric fan", ""},
		{"", ""},
	}
	for _, tc := range cases {
		obj, err := store.Lookup(ctx, tc.name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.name, err)
		}
		if tc.wantKey == "" {
			if obj != nil {
				t.Errorf("Lookup(%q) = %q, want no match", tc.name, obj.Key)
			}
			continue
		}
		if obj == nil || obj.Key != tc.wantKey {
			t.Errorf("Lookup(%q) = %+v, want key %q", tc.name, obj, tc.wantKey)
		}
	}
}

func TestQuizzes(t *testing.T) {
	store := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	ctx := context.Background()

	quizzes, err := store.Quizzes(ctx, "Bottle")
	if err != nil {
		t.Fatalf("Quizzes: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("expected 2 bottle quizzes, got %d", len(quizzes))
	}
	q := quizzes[0]
	if q.ID == 0 || q.ObjectKey != "bottle" || len(q.Options) != 4 {
		t.Fatalf("unexpected quiz %+v", q)
	}
	if q.Options[q.CorrectIndex] != "H₂O" {
		t.Fatalf("unexpected correct option %q", q.Options[q.CorrectIndex])
	}

	none, err := store.Quizzes(ctx, "cup")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("cup has no quizzes, got %d", len(none))
	}
}

func TestSightings(t *testing.T) {
	store := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, label := range []string{"Bottle", "Cup", "Banana"} {
		if _, err := store.RecordSighting(ctx, catalog.Sighting{
			SessionID:   "s-1",
			Label:       label,
			Confidence:  0.5,
			ConfirmedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("RecordSighting: %v", err)
		}
	}
	if _, err := store.RecordSighting(ctx, catalog.Sighting{Label: " "}); err == nil {
		t.Fatal("expected error for empty label")
	}

	recent, err := store.Sightings(ctx, 2)
	if err != nil {
		t.Fatalf("Sightings: %v", err)
	}
	if len(recent) != 2 || recent[0].Label != "Banana" || recent[1].Label != "Cup" {
		t.Fatalf("unexpected sightings %+v", recent)
	}
	if !recent[0].ConfirmedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("timestamp not preserved: %v", recent[0].ConfirmedAt)
	}

	all, err := store.Sightings(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sightings, got %d", len(all))
	}
}

func TestOpenPathRejectsEmpty(t *testing.T) {
	if _, err := catalog.OpenPath(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
	store, err := catalog.OpenPath(context.Background(), filepath.Join(t.TempDir(), "nested", "c.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	_ = store.Close()
}

func TestQuizByID(t *testing.T) {
	store := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	ctx := context.Background()

	quizzes, err := store.Quizzes(ctx, "laptop")
	if err != nil || len(quizzes) == 0 {
		t.Fatalf("Quizzes: %v (%d)", err, len(quizzes))
	}
	got, err := store.Quiz(ctx, quizzes[len(quizzes)-1].ID)
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	if got == nil || got.Question != quizzes[len(quizzes)-1].Question {
		t.Fatalf("unexpected quiz %+v", got)
	}
	missing, err := store.Quiz(ctx, 99999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v, %v", missing, err)
	}
}
