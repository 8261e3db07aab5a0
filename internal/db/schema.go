package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Column is one entry of an ordered table definition.
type Column struct {
	Name string
	Type string
}

// ColumnInfo describes one column as reported by the store's schema
// introspection, in physical column order.
type ColumnInfo struct {
	CID          int
	Name         string
	Type         string
	NotNull      bool
	DefaultValue *string
	PrimaryKey   bool
}

// CreateTable builds and executes a CREATE TABLE IF NOT EXISTS
// statement. Idempotent: a second call with the same definition is a
// no-op.
func (db *DB) CreateTable(ctx context.Context, name string, cols []Column) error {
	if len(cols) == 0 {
		return fmt.Errorf("cannot create table %s without columns", name)
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, c.Name+" "+c.Type)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// AddColumn executes ALTER TABLE ADD COLUMN. Unlike CreateTable this is
// not idempotent: adding a column that already exists fails, and the
// caller has to track whether it was added before.
func (db *DB) AddColumn(ctx context.Context, table, name, typeDef string) error {
	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, name, typeDef)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to add column %s to %s: %w", name, table, err)
	}
	return nil
}

// TableExists reports whether a table of the given name exists.
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	query := `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`
	var found string
	err := db.QueryRowContext(ctx, query, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return true, nil
}

// TableInfo returns the table's column descriptors ordered by physical
// position.
func (db *DB) TableInfo(ctx context.Context, name string) ([]ColumnInfo, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", name))
	if err != nil {
		return nil, fmt.Errorf("failed to get table info for %s: %w", name, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var (
			c       ColumnInfo
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info row: %w", err)
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		if dflt.Valid {
			c.DefaultValue = &dflt.String
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cols, nil
}
