package models

import (
	"fmt"
	"time"
)

const (
	// DefaultPriority is applied when no priority is given or the given
	// one falls outside the allowed range.
	DefaultPriority = 3
	MinPriority     = 1
	MaxPriority     = 5
)

const timestampLayout = "2006-01-02 15:04:05"

// Columns is the physical column order of the tasks table. Positional
// row mapping and SQL building both rely on it.
var Columns = []string{
	"task_id",
	"title",
	"description",
	"priority",
	"due_date",
	"is_completed",
	"attachment",
	"created_at",
	"last_updated",
}

type Task struct {
	TaskID      *int64  `json:"task_id,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    int     `json:"priority"`
	DueDate     *string `json:"due_date,omitempty"`
	IsCompleted bool    `json:"is_completed"`
	Attachment  []byte  `json:"attachment,omitempty"`
	CreatedAt   string  `json:"created_at"`
	LastUpdated *string `json:"last_updated,omitempty"`
}

// NewTask builds an unsaved task with defaults applied. CreatedAt is
// stamped here exactly once; tasks rebuilt from stored rows keep the
// stored value.
func NewTask(title string) *Task {
	return &Task{
		Title:     title,
		Priority:  DefaultPriority,
		CreatedAt: time.Now().Format(timestampLayout),
	}
}

// FieldMap returns the flat column -> storable value mapping used at
// the persistence boundary. Booleans are coerced to 0/1. task_id is
// omitted entirely when unset: the repository decides identity-column
// handling on key presence, not value.
func (t *Task) FieldMap() map[string]any {
	completed := 0
	if t.IsCompleted {
		completed = 1
	}

	m := map[string]any{
		"title":        t.Title,
		"description":  t.Description,
		"priority":     t.Priority,
		"due_date":     t.DueDate,
		"is_completed": completed,
		"attachment":   t.Attachment,
		"created_at":   t.CreatedAt,
		"last_updated": t.LastUpdated,
	}
	if t.TaskID != nil {
		m["task_id"] = *t.TaskID
	}
	return m
}

// TaskFromNamedRow rebuilds a task from a column-name-keyed row.
// Missing keys keep field defaults; is_completed goes through truthiness
// coercion regardless of how the driver represented it.
func TaskFromNamedRow(row map[string]any) *Task {
	t := &Task{Priority: DefaultPriority}

	if v, ok := row["task_id"]; ok && v != nil {
		if id, ok := asInt64(v); ok {
			t.TaskID = &id
		}
	}
	if v, ok := row["title"]; ok {
		if s, ok := asString(v); ok {
			t.Title = s
		}
	}
	if v, ok := row["description"]; ok {
		if s, ok := asString(v); ok {
			t.Description = &s
		}
	}
	if v, ok := row["priority"]; ok && v != nil {
		if p, ok := asInt64(v); ok {
			t.Priority = int(p)
		}
	}
	if v, ok := row["due_date"]; ok {
		if s, ok := asString(v); ok {
			t.DueDate = &s
		}
	}
	if v, ok := row["is_completed"]; ok {
		t.IsCompleted = truthy(v)
	}
	if v, ok := row["attachment"]; ok && v != nil {
		if b, ok := v.([]byte); ok {
			t.Attachment = b
		}
	}
	if v, ok := row["created_at"]; ok {
		if s, ok := asString(v); ok {
			t.CreatedAt = s
		}
	}
	if v, ok := row["last_updated"]; ok {
		if s, ok := asString(v); ok {
			t.LastUpdated = &s
		}
	}
	return t
}

// TaskFromPositionalRow rebuilds a task from a row in the fixed Columns
// order. A row of the wrong shape is a hard error rather than a
// silently half-empty task.
func TaskFromPositionalRow(row []any) (*Task, error) {
	if len(row) != len(Columns) {
		return nil, fmt.Errorf("positional row has %d values, want %d", len(row), len(Columns))
	}

	t := &Task{Priority: DefaultPriority}

	if row[0] != nil {
		id, ok := asInt64(row[0])
		if !ok {
			return nil, fmt.Errorf("positional row: task_id has type %T", row[0])
		}
		t.TaskID = &id
	}
	if row[1] != nil {
		s, ok := asString(row[1])
		if !ok {
			return nil, fmt.Errorf("positional row: title has type %T", row[1])
		}
		t.Title = s
	}
	if row[2] != nil {
		s, ok := asString(row[2])
		if !ok {
			return nil, fmt.Errorf("positional row: description has type %T", row[2])
		}
		t.Description = &s
	}
	if row[3] != nil {
		p, ok := asInt64(row[3])
		if !ok {
			return nil, fmt.Errorf("positional row: priority has type %T", row[3])
		}
		t.Priority = int(p)
	}
	if row[4] != nil {
		s, ok := asString(row[4])
		if !ok {
			return nil, fmt.Errorf("positional row: due_date has type %T", row[4])
		}
		t.DueDate = &s
	}
	t.IsCompleted = truthy(row[5])
	if row[6] != nil {
		b, ok := row[6].([]byte)
		if !ok {
			return nil, fmt.Errorf("positional row: attachment has type %T", row[6])
		}
		t.Attachment = b
	}
	if row[7] != nil {
		s, ok := asString(row[7])
		if !ok {
			return nil, fmt.Errorf("positional row: created_at has type %T", row[7])
		}
		t.CreatedAt = s
	}
	if row[8] != nil {
		s, ok := asString(row[8])
		if !ok {
			return nil, fmt.Errorf("positional row: last_updated has type %T", row[8])
		}
		t.LastUpdated = &s
	}
	return t, nil
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case int:
		return b != 0
	case int32:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	case string:
		return b != "" && b != "0" && b != "false"
	case []byte:
		return truthy(string(b))
	default:
		return false
	}
}
