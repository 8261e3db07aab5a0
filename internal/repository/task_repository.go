package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ldi/tasklite/internal/db"
	"github.com/ldi/tasklite/pkg/models"
)

// TaskRepository translates task CRUD and predicate queries into
// parameterized statements against one table. Every statement binds
// caller values as parameters; nothing caller-supplied is interpolated
// into SQL text. Each mutation runs in its own transaction and is
// rolled back on failure.
type TaskRepository struct {
	db    *db.DB
	table string
	log   zerolog.Logger
}

func NewTaskRepository(database *db.DB, log zerolog.Logger) *TaskRepository {
	return &TaskRepository{db: database, table: "tasks", log: log}
}

// EnsureTable creates the tasks table if it does not exist yet.
func (r *TaskRepository) EnsureTable(ctx context.Context) error {
	return r.db.CreateTable(ctx, r.table, []db.Column{
		{Name: "task_id", Type: "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Name: "title", Type: "TEXT NOT NULL"},
		{Name: "description", Type: "TEXT"},
		{Name: "priority", Type: "INTEGER DEFAULT 3"},
		{Name: "due_date", Type: "DATE"},
		{Name: "is_completed", Type: "BOOLEAN DEFAULT 0"},
		{Name: "attachment", Type: "BLOB"},
		{Name: "created_at", Type: "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		{Name: "last_updated", Type: "TIMESTAMP"},
	})
}

// TableInfo returns the column descriptors of the tasks table.
func (r *TaskRepository) TableInfo(ctx context.Context) ([]db.ColumnInfo, error) {
	return r.db.TableInfo(ctx, r.table)
}

// Insert stores a new task and echoes the assigned identity back into
// the entity. Any identity already set on the entity is stripped first.
func (r *TaskRepository) Insert(ctx context.Context, t *models.Task) (int64, error) {
	fields := t.FieldMap()
	delete(fields, "task_id")

	cols, args := orderedFields(fields)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(cols, ", "), placeholders(len(cols)))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Str("title", t.Title).Msg("failed to insert task")
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.TaskID = &id
	return id, nil
}

// InsertMany stores all tasks in one transaction and returns the number
// of rows the store reports as inserted. Every entity's field map must
// carry the same key set as the first one; a mismatch rejects the whole
// batch before anything is written. Failure mid-batch rolls everything
// back.
func (r *TaskRepository) InsertMany(ctx context.Context, tasks []*models.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	maps := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		m := t.FieldMap()
		delete(m, "task_id")
		maps[i] = m
	}
	for i := 1; i < len(maps); i++ {
		if !sameKeys(maps[0], maps[i]) {
			return 0, fmt.Errorf("batch field sets differ: entity %d does not match entity 0", i)
		}
	}

	cols, _ := orderedFields(maps[0])
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(cols, ", "), placeholders(len(cols)))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	var total int64
	for i, m := range maps {
		args := make([]any, 0, len(cols))
		for _, c := range cols {
			args = append(args, m[c])
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			r.log.Error().Err(err).Int("entity", i).Msg("batch insert failed, rolling back")
			return 0, fmt.Errorf("failed to insert batch entity %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return total, nil
}

// Update rewrites every field except the identity and stamps
// last_updated with the store's current time. Returns false without an
// error when the identity matched no row.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) (bool, error) {
	if t.TaskID == nil {
		return false, fmt.Errorf("cannot update task without an identity")
	}

	fields := t.FieldMap()
	delete(fields, "task_id")
	delete(fields, "last_updated")

	cols, args := orderedFields(fields)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s, last_updated = CURRENT_TIMESTAMP WHERE task_id = ?",
		r.table, strings.Join(sets, ", "))
	args = append(args, *t.TaskID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Int64("task_id", *t.TaskID).Msg("failed to update task")
		return false, fmt.Errorf("failed to update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return n > 0, nil
}

// Delete removes the row with the given identity. Returns false without
// an error when nothing matched.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE task_id = ?", r.table)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Error().Err(err).Int64("task_id", id).Msg("failed to delete task")
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return n > 0, nil
}

// FindByID returns the task with the given identity, or nil if no row
// matches.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	tasks, err := r.queryTasks(ctx, r.selectClause()+" WHERE task_id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// FindAll returns every task in store order.
func (r *TaskRepository) FindAll(ctx context.Context) ([]*models.Task, error) {
	return r.queryTasks(ctx, r.selectClause())
}

// FindByCriteria returns the tasks matching a conjunctive equality
// predicate over the given columns. An empty criteria map behaves like
// FindAll. Column names must belong to the tasks schema.
func (r *TaskRepository) FindByCriteria(ctx context.Context, criteria map[string]any) ([]*models.Task, error) {
	if len(criteria) == 0 {
		return r.FindAll(ctx)
	}

	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		if !knownColumn(k) {
			return nil, fmt.Errorf("unknown criteria column: %s", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, k+" = ?")
		args = append(args, criteria[k])
	}

	query := r.selectClause() + " WHERE " + strings.Join(clauses, " AND ")
	return r.queryTasks(ctx, query, args...)
}

// FindByTitleContains returns tasks whose title contains the substring,
// with the store's native LIKE semantics. The substring is always a
// bound parameter.
func (r *TaskRepository) FindByTitleContains(ctx context.Context, sub string) ([]*models.Task, error) {
	return r.queryTasks(ctx, r.selectClause()+" WHERE title LIKE ?", "%"+sub+"%")
}

func (r *TaskRepository) selectClause() string {
	return "SELECT " + strings.Join(models.Columns, ", ") + " FROM " + r.table
}

// queryTasks executes a query and maps each row into an entity by
// column name.
func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Msg("task query failed")
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var tasks []*models.Task
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		row := make(map[string]any, len(names))
		for i, n := range names {
			row[n] = vals[i]
		}
		tasks = append(tasks, models.TaskFromNamedRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

// orderedFields flattens a field map into parallel column/value slices
// following the table's physical column order, so generated SQL is
// deterministic.
func orderedFields(fields map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, c := range models.Columns {
		if v, ok := fields[c]; ok {
			cols = append(cols, c)
			args = append(args, v)
		}
	}
	return cols, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func sameKeys(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func knownColumn(name string) bool {
	for _, c := range models.Columns {
		if c == name {
			return true
		}
	}
	return false
}
