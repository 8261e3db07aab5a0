package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ldi/tasklite/internal/service"
	"github.com/ldi/tasklite/pkg/models"
)

// NewServer creates a new MCP server exposing the task service.
func NewServer(svc *service.TaskService) *server.MCPServer {
	s := server.NewMCPServer("Tasklite", "0.1.0")

	// Task CRUD
	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task."),
		mcp.WithString("title", mcp.Description("Task title (must not be empty)"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithNumber("priority", mcp.Description("Priority (1-5, default 3)")),
		mcp.WithString("due_date", mcp.Description("Due date (YYYY-MM-DD)")),
		mcp.WithBoolean("completed", mcp.Description("Whether the task is already completed")),
	), createTaskHandler(svc))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by its id."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), getTaskHandler(svc))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with optional filters."),
		mcp.WithNumber("priority", mcp.Description("Filter by priority")),
		mcp.WithBoolean("incomplete", mcp.Description("Only incomplete tasks")),
	), listTasksHandler(svc))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing task."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithNumber("priority", mcp.Description("New priority")),
		mcp.WithString("due_date", mcp.Description("New due date (YYYY-MM-DD)")),
		mcp.WithBoolean("completed", mcp.Description("New completed state")),
	), updateTaskHandler(svc))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), completeTaskHandler(svc))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(svc))

	// Derived queries
	s.AddTool(mcp.NewTool("search_tasks",
		mcp.WithDescription("Search tasks whose title contains a substring."),
		mcp.WithString("title_contains", mcp.Description("Substring to search for"), mcp.Required()),
	), searchTasksHandler(svc))

	s.AddTool(mcp.NewTool("overdue_tasks",
		mcp.WithDescription("List incomplete tasks whose due date has passed."),
	), overdueTasksHandler(svc))

	s.AddTool(mcp.NewTool("tasks_due_within",
		mcp.WithDescription("List tasks due between today and today plus the given number of days."),
		mcp.WithNumber("days", mcp.Description("Number of days"), mcp.Required()),
	), tasksDueWithinHandler(svc))

	// Staging
	s.AddTool(mcp.NewTool("stage_task",
		mcp.WithDescription("Stage a task draft. Staged drafts must be committed to take effect."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithNumber("priority", mcp.Description("Priority (1-5, default 3)")),
		mcp.WithString("due_date", mcp.Description("Due date (YYYY-MM-DD)")),
		mcp.WithString("session_id", mcp.Description("Session ID for staging (defaults to 'default').")),
	), stageTaskHandler(svc))

	s.AddTool(mcp.NewTool("list_staged_tasks",
		mcp.WithDescription("List the staged drafts of a session. Use this to review a batch before committing."),
		mcp.WithString("session_id", mcp.Description("Session ID (defaults to 'default').")),
	), listStagedTasksHandler(svc))

	s.AddTool(mcp.NewTool("commit_staged_tasks",
		mcp.WithDescription("Create all staged drafts of a session as one batch."),
		mcp.WithString("session_id", mcp.Description("Session ID (defaults to 'default').")),
	), commitStagedTasksHandler(svc))

	// Introspection
	s.AddTool(mcp.NewTool("table_info",
		mcp.WithDescription("Describe the columns of the tasks table."),
	), tableInfoHandler(svc))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func parseInput(request mcp.CallToolRequest) service.CreateTaskInput {
	in := service.CreateTaskInput{
		Title:       mcp.ParseString(request, "title", ""),
		Priority:    mcp.ParseInt(request, "priority", 0),
		IsCompleted: mcp.ParseBoolean(request, "completed", false),
	}
	if d := mcp.ParseString(request, "description", ""); d != "" {
		in.Description = &d
	}
	if d := mcp.ParseString(request, "due_date", ""); d != "" {
		in.DueDate = &d
	}
	return in
}

func createTaskHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := svc.CreateTask(ctx, parseInput(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task created with id %d", id)), nil
	}
}

func getTaskHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseInt(request, "id", 0)
		t, err := svc.GetTask(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultError(fmt.Sprintf("task with id %d not found", id)), nil
		}
		return jsonResult(t)
	}
}

func listTasksHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var (
			tasks []*models.Task
			err   error
		)
		switch {
		case mcp.ParseBoolean(request, "incomplete", false):
			tasks, err = svc.GetIncompleteTasks(ctx)
		case mcp.ParseInt(request, "priority", 0) != 0:
			tasks, err = svc.GetTasksByPriority(ctx, mcp.ParseInt(request, "priority", 0))
		default:
			tasks, err = svc.GetAllTasks(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func updateTaskHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseInt(request, "id", 0)

		var upd models.TaskUpdate
		args, _ := request.Params.Arguments.(map[string]any)
		if title, ok := args["title"].(string); ok {
			upd.Title = &title
		}
		if description, ok := args["description"].(string); ok {
			upd.Description = &description
		}
		if priority, ok := args["priority"].(float64); ok {
			p := int(priority)
			upd.Priority = &p
		}
		if dueDate, ok := args["due_date"].(string); ok {
			upd.DueDate = &dueDate
		}
		if completed, ok := args["completed"].(bool); ok {
			upd.IsCompleted = &completed
		}

		ok, err := svc.UpdateTask(ctx, int64(id), upd)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task with id %d not found", id)), nil
		}
		return mcp.NewToolResultText("Task updated successfully"), nil
	}
}

func completeTaskHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseInt(request, "id", 0)
		ok, err := svc.CompleteTask(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task with id %d not found", id)), nil
		}
		return mcp.NewToolResultText("Task completed successfully"), nil
	}
}

func deleteTaskHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseInt(request, "id", 0)
		ok, err := svc.DeleteTask(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task with id %d not found", id)), nil
		}
		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func searchTasksHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sub := mcp.ParseString(request, "title_contains", "")
		tasks, err := svc.SearchTasksByTitle(ctx, sub)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func overdueTasksHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := svc.GetOverdueTasks(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func tasksDueWithinHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := mcp.ParseInt(request, "days", 0)
		tasks, err := svc.GetTasksDueWithinDays(ctx, days)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func stageTaskHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")
		in := parseInput(request)

		svc.Staging.Add(sessionID, in)
		return mcp.NewToolResultText(fmt.Sprintf(
			"Task '%s' staged for session '%s'. Stage another or call 'commit_staged_tasks' to apply.",
			in.Title, sessionID)), nil
	}
}

func listStagedTasksHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")
		return jsonResult(map[string]any{"staged": svc.Staging.Peek(sessionID)})
	}
}

func commitStagedTasksHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")
		count, err := svc.CommitStaged(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Created %d tasks from session '%s'", count, sessionID)), nil
	}
}

func tableInfoHandler(svc *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cols, err := svc.GetTableInfo(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"columns": cols})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
