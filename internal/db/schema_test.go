package db

import (
	"context"
	"testing"
)

func testColumns() []Column {
	return []Column{
		{Name: "id", Type: "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Name: "name", Type: "TEXT NOT NULL"},
		{Name: "score", Type: "INTEGER DEFAULT 3"},
	}
}

func TestCreateTable(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CreateTable(ctx, "things", testColumns()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	exists, err := db.TableExists(ctx, "things")
	if err != nil {
		t.Fatalf("Failed to check table: %v", err)
	}
	if !exists {
		t.Errorf("Expected table things to exist")
	}

	// A second call with the same definition is a no-op.
	if err := db.CreateTable(ctx, "things", testColumns()); err != nil {
		t.Errorf("Expected idempotent create, got %v", err)
	}
}

func TestCreateTableWithoutColumns(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.CreateTable(context.Background(), "empty", nil); err == nil {
		t.Errorf("Expected error for a table with no columns")
	}
}

func TestAddColumn(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CreateTable(ctx, "things", testColumns()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	if err := db.AddColumn(ctx, "things", "notes", "TEXT"); err != nil {
		t.Fatalf("Failed to add column: %v", err)
	}

	// Adding the same column twice fails.
	if err := db.AddColumn(ctx, "things", "notes", "TEXT"); err == nil {
		t.Errorf("Expected error adding a column that already exists")
	}

	cols, err := db.TableInfo(ctx, "things")
	if err != nil {
		t.Fatalf("Failed to get table info: %v", err)
	}
	if len(cols) != 4 {
		t.Fatalf("Expected 4 columns, got %d", len(cols))
	}
	if cols[3].Name != "notes" {
		t.Errorf("Expected new column last, got %s", cols[3].Name)
	}
}

func TestTableExistsMissing(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	exists, err := db.TableExists(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Failed to check table: %v", err)
	}
	if exists {
		t.Errorf("Expected table nope to not exist")
	}
}

func TestTableInfo(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.CreateTable(ctx, "things", testColumns()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	cols, err := db.TableInfo(ctx, "things")
	if err != nil {
		t.Fatalf("Failed to get table info: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(cols))
	}

	if cols[0].Name != "id" || !cols[0].PrimaryKey {
		t.Errorf("Expected id to be the primary key, got %+v", cols[0])
	}
	if cols[1].Name != "name" || !cols[1].NotNull {
		t.Errorf("Expected name NOT NULL, got %+v", cols[1])
	}
	if cols[2].DefaultValue == nil || *cols[2].DefaultValue != "3" {
		t.Errorf("Expected score default 3, got %+v", cols[2])
	}
	for i, c := range cols {
		if c.CID != i {
			t.Errorf("Expected cid %d at position %d, got %d", i, i, c.CID)
		}
	}
}
