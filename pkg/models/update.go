package models

// TaskUpdate is a partial update over the closed set of updatable
// fields. A nil field leaves the loaded value untouched, so unknown
// field names cannot exist at all.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *int
	DueDate     *string
	IsCompleted *bool
	Attachment  []byte
}

// Apply overrides the task's fields with every value present in the
// update.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.IsCompleted != nil {
		t.IsCompleted = *u.IsCompleted
	}
	if u.Attachment != nil {
		t.Attachment = u.Attachment
	}
}
