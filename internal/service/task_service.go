package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ldi/tasklite/internal/dates"
	"github.com/ldi/tasklite/internal/db"
	"github.com/ldi/tasklite/internal/repository"
	"github.com/ldi/tasklite/pkg/models"
)

// TaskService wraps the repository with validation and derived queries.
// The title check is the only hard precondition; priority and due date
// are soft-corrected instead of rejecting the whole operation.
type TaskService struct {
	repo    *repository.TaskRepository
	log     zerolog.Logger
	now     func() time.Time
	Staging *StagingManager
}

func NewTaskService(repo *repository.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{
		repo:    repo,
		log:     log,
		now:     time.Now,
		Staging: NewStagingManager(),
	}
}

// CreateTaskInput carries the fields a caller may set on a new task.
// Priority zero means unset and takes the default.
type CreateTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    int     `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	IsCompleted bool    `json:"is_completed,omitempty"`
	Attachment  []byte  `json:"attachment,omitempty"`
}

// CreateTask validates the input and stores a new task, returning the
// assigned identity. An empty title fails before the repository is
// touched.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (int64, error) {
	t, err := s.buildTask(in)
	if err != nil {
		return 0, err
	}
	return s.repo.Insert(ctx, t)
}

// CreateTasksBatch validates each item independently, skips invalid
// ones with a warning, and inserts the survivors in one batch. Returns
// the number of tasks created.
func (s *TaskService) CreateTasksBatch(ctx context.Context, items []CreateTaskInput) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tasks := make([]*models.Task, 0, len(items))
	for i, in := range items {
		t, err := s.buildTask(in)
		if err != nil {
			s.log.Warn().Int("item", i).Err(err).Msg("skipping invalid batch item")
			continue
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		s.log.Warn().Msg("no valid tasks in batch")
		return 0, nil
	}

	return s.repo.InsertMany(ctx, tasks)
}

// UpdateTask loads the task, applies the given field overrides and
// persists the result. Returns false without an error when the identity
// is unknown.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, upd models.TaskUpdate) (bool, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if t == nil {
		s.log.Warn().Int64("task_id", id).Msg("cannot update: task not found")
		return false, nil
	}

	upd.Apply(t)
	return s.repo.Update(ctx, t)
}

// CompleteTask marks the task as completed.
func (s *TaskService) CompleteTask(ctx context.Context, id int64) (bool, error) {
	done := true
	return s.UpdateTask(ctx, id, models.TaskUpdate{IsCompleted: &done})
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) GetAllTasks(ctx context.Context) ([]*models.Task, error) {
	return s.repo.FindAll(ctx)
}

func (s *TaskService) GetTasksByPriority(ctx context.Context, priority int) ([]*models.Task, error) {
	return s.repo.FindByCriteria(ctx, map[string]any{"priority": priority})
}

// GetIncompleteTasks queries on the completed flag's stored false
// representation.
func (s *TaskService) GetIncompleteTasks(ctx context.Context) ([]*models.Task, error) {
	return s.repo.FindByCriteria(ctx, map[string]any{"is_completed": 0})
}

// GetOverdueTasks loads the full table and filters in memory for tasks
// with a due date before today that are not completed. String
// comparison is valid because due dates are fixed-width ISO dates.
func (s *TaskService) GetOverdueTasks(ctx context.Context) ([]*models.Task, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	today := dates.Today(s.now())
	var overdue []*models.Task
	for _, t := range all {
		if t.DueDate != nil && *t.DueDate < today && !t.IsCompleted {
			overdue = append(overdue, t)
		}
	}
	return overdue, nil
}

// GetTasksDueWithinDays returns tasks due in the inclusive window
// [today, today+days].
func (s *TaskService) GetTasksDueWithinDays(ctx context.Context, days int) ([]*models.Task, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	today := dates.Today(s.now())
	end := dates.Future(s.now(), days)
	var due []*models.Task
	for _, t := range all {
		if t.DueDate != nil && today <= *t.DueDate && *t.DueDate <= end {
			due = append(due, t)
		}
	}
	return due, nil
}

func (s *TaskService) SearchTasksByTitle(ctx context.Context, sub string) ([]*models.Task, error) {
	return s.repo.FindByTitleContains(ctx, sub)
}

// GetTableInfo exposes the tasks table's column descriptors.
func (s *TaskService) GetTableInfo(ctx context.Context) ([]db.ColumnInfo, error) {
	return s.repo.TableInfo(ctx)
}

// Export writes all tasks to a JSONL file at path.
func (s *TaskService) Export(ctx context.Context, path string) error {
	return s.repo.ExportJSONL(ctx, path)
}

// Import loads tasks from a JSONL file and stores them with fresh
// identities. Returns the number of tasks imported.
func (s *TaskService) Import(ctx context.Context, path string) (int64, error) {
	return s.repo.ImportJSONL(ctx, path)
}

// CommitStaged drains a staging session and creates its drafts as one
// batch.
func (s *TaskService) CommitStaged(ctx context.Context, session string) (int64, error) {
	return s.CreateTasksBatch(ctx, s.Staging.GetAndClear(session))
}

// buildTask turns validated input into an entity. Title is the hard
// precondition; out-of-range priorities and unparseable due dates are
// corrected with a warning.
func (s *TaskService) buildTask(in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}

	t := models.NewTask(in.Title)
	t.Description = in.Description
	t.IsCompleted = in.IsCompleted
	t.Attachment = in.Attachment

	switch {
	case in.Priority == 0:
		// unset, keep the default
	case in.Priority < models.MinPriority || in.Priority > models.MaxPriority:
		s.log.Warn().Int("priority", in.Priority).
			Msgf("priority out of range (%d-%d), using default %d",
				models.MinPriority, models.MaxPriority, models.DefaultPriority)
	default:
		t.Priority = in.Priority
	}

	if in.DueDate != nil {
		if dates.Valid(*in.DueDate) {
			t.DueDate = in.DueDate
		} else {
			s.log.Warn().Str("due_date", *in.DueDate).
				Msg("due date is not a valid YYYY-MM-DD date, dropping it")
		}
	}

	return t, nil
}
