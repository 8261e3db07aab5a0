package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ldi/tasklite/pkg/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	due := "2026-07-01"
	desc := "with description"
	task1 := models.NewTask("Exported 1")
	task1.DueDate = &due
	task1.Description = &desc
	task2 := models.NewTask("Exported 2")
	task2.IsCompleted = true

	if _, err := repo.Insert(ctx, task1); err != nil {
		t.Fatalf("Failed to insert task1: %v", err)
	}
	if _, err := repo.Insert(ctx, task2); err != nil {
		t.Fatalf("Failed to insert task2: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export", "tasks.jsonl")
	if err := repo.ExportJSONL(ctx, path); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected export file to exist: %v", err)
	}

	// Import into a fresh store.
	other := newTestRepo(t)
	n, err := other.ImportJSONL(ctx, path)
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 imports, got %d", n)
	}

	imported, err := other.FindAll(ctx)
	if err != nil {
		t.Fatalf("Failed to find imported tasks: %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(imported))
	}

	byTitle := make(map[string]*models.Task, len(imported))
	for _, task := range imported {
		byTitle[task.Title] = task
		if task.TaskID == nil {
			t.Errorf("Expected a fresh identity on %s", task.Title)
		}
	}
	got1 := byTitle["Exported 1"]
	if got1 == nil {
		t.Fatalf("Exported 1 missing after import")
	}
	if got1.DueDate == nil || *got1.DueDate != due {
		t.Errorf("Expected due date %s, got %v", due, got1.DueDate)
	}
	if got1.Description == nil || *got1.Description != desc {
		t.Errorf("Expected description to survive, got %v", got1.Description)
	}
	got2 := byTitle["Exported 2"]
	if got2 == nil {
		t.Fatalf("Exported 2 missing after import")
	}
	if !got2.IsCompleted {
		t.Errorf("Expected completed flag to survive")
	}
}

func TestImportMissingFile(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.ImportJSONL(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Errorf("Expected error importing a missing file")
	}
}

func TestExportEmptyStore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "tasks.jsonl")
	if err := repo.ExportJSONL(ctx, path); err != nil {
		t.Fatalf("Failed to export empty store: %v", err)
	}

	n, err := repo.ImportJSONL(ctx, path)
	if err != nil {
		t.Fatalf("Failed to import empty export: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 imports, got %d", n)
	}
}
