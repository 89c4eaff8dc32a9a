// Package mcp exposes the organizer's command and query surface as MCP
// tools over a single store session. The store itself treats invalid ids
// as silent no-ops; this layer looks entities up first so callers get a
// proper error instead of silence.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ldi/taskmaster/internal/store"
	"github.com/ldi/taskmaster/pkg/models"
)

// NewServer creates a new MCP server over the given store.
func NewServer(st *store.Store) *server.MCPServer {
	s := server.NewMCPServer("Taskmaster", "0.1.0")

	// Task management
	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a task."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("status", mcp.Description("Status (todo|inProgress|done), defaults to todo")),
		mcp.WithString("priority", mcp.Description("Priority (low|medium|high), defaults to medium")),
		mcp.WithString("due_date", mcp.Description("Due date (yyyy-MM-dd)")),
	), addTaskHandler(st))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing task. Omitted fields are kept."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status", mcp.Description("New status (todo|inProgress|done)")),
		mcp.WithString("priority", mcp.Description("New priority (low|medium|high)")),
		mcp.WithString("due_date", mcp.Description("New due date (yyyy-MM-dd), empty string clears it")),
	), updateTaskHandler(st))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task and its embedded steps."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(st))

	s.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task to a status column, optionally at a position within it."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("status", mcp.Description("Target status (todo|inProgress|done)"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Position within the target status group; appended when omitted")),
	), moveTaskHandler(st))

	s.AddTool(mcp.NewTool("reorder_tasks",
		mcp.WithDescription("Move a task between positions within one status group. Out-of-range indices are a no-op."),
		mcp.WithString("status", mcp.Description("Status group (todo|inProgress|done)"), mcp.Required()),
		mcp.WithNumber("source_index", mcp.Description("Current position in the group"), mcp.Required()),
		mcp.WithNumber("target_index", mcp.Description("New position in the group"), mcp.Required()),
	), reorderTasksHandler(st))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Filter (todo|inProgress|done)")),
	), listTasksHandler(st))

	// Step management
	s.AddTool(mcp.NewTool("add_step",
		mcp.WithDescription("Append a step to a task."),
		mcp.WithString("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Step text"), mcp.Required()),
	), addStepHandler(st))

	s.AddTool(mcp.NewTool("update_step",
		mcp.WithDescription("Update a step's text or completion."),
		mcp.WithString("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("step_id", mcp.Description("Step id"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text")),
		mcp.WithBoolean("completed", mcp.Description("New completion state")),
	), updateStepHandler(st))

	s.AddTool(mcp.NewTool("delete_step",
		mcp.WithDescription("Delete a step from a task."),
		mcp.WithString("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("step_id", mcp.Description("Step id"), mcp.Required()),
	), deleteStepHandler(st))

	s.AddTool(mcp.NewTool("reorder_steps",
		mcp.WithDescription("Move a step between positions within a task. Out-of-range indices are a no-op."),
		mcp.WithString("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithNumber("source_index", mcp.Description("Current position"), mcp.Required()),
		mcp.WithNumber("target_index", mcp.Description("New position"), mcp.Required()),
	), reorderStepsHandler(st))

	// Task/tag membership
	s.AddTool(mcp.NewTool("tag_task",
		mcp.WithDescription("Add a tag to a task. Adding an already-present tag is a no-op."),
		mcp.WithString("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("tag_id", mcp.Description("Tag id"), mcp.Required()),
	), tagTaskHandler(st))

	s.AddTool(mcp.NewTool("untag_task",
		mcp.WithDescription("Remove a tag from a task."),
		mcp.WithString("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("tag_id", mcp.Description("Tag id"), mcp.Required()),
	), untagTaskHandler(st))

	// Tag management
	s.AddTool(mcp.NewTool("add_tag",
		mcp.WithDescription("Create a tag."),
		mcp.WithString("name", mcp.Description("Tag name"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Hex color, e.g. #3b82f6"), mcp.Required()),
	), addTagHandler(st))

	s.AddTool(mcp.NewTool("update_tag",
		mcp.WithDescription("Update a tag's name or color."),
		mcp.WithString("id", mcp.Description("Tag id"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("color", mcp.Description("New color")),
	), updateTagHandler(st))

	s.AddTool(mcp.NewTool("delete_tag",
		mcp.WithDescription("Delete a tag. Its id is stripped from every task and event in the same undoable step."),
		mcp.WithString("id", mcp.Description("Tag id"), mcp.Required()),
	), deleteTagHandler(st))

	s.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List all tags."),
	), listTagsHandler(st))

	// Event management
	s.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Create a calendar event. An active recurrence generates its instances in the same step."),
		mcp.WithString("title", mcp.Description("Event title"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Start date (yyyy-MM-dd)"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Event description")),
		mcp.WithString("end_date", mcp.Description("End date for multi-day events (yyyy-MM-dd)")),
		mcp.WithString("start_time", mcp.Description("Start time (HH:mm), ignored for all-day events")),
		mcp.WithString("end_time", mcp.Description("End time (HH:mm)")),
		mcp.WithBoolean("is_all_day", mcp.Description("All-day event")),
		mcp.WithBoolean("is_graded", mcp.Description("Graded event")),
		mcp.WithString("grade", mcp.Description("Grade value")),
		mcp.WithString("color", mcp.Description("Custom hex color")),
		mcp.WithString("recurrence_type", mcp.Description("Recurrence (none|daily|weekly|monthly|yearly)")),
		mcp.WithNumber("recurrence_interval", mcp.Description("Every N units, defaults to 1")),
		mcp.WithString("recurrence_end_date", mcp.Description("Last date instances may fall on (yyyy-MM-dd)")),
		mcp.WithNumber("recurrence_occurrences", mcp.Description("Max occurrences including the base, defaults to 10")),
	), addEventHandler(st))

	s.AddTool(mcp.NewTool("update_event",
		mcp.WithDescription("Update an event. Generated instances are regenerated from the patched base; edits made to individual instances are discarded."),
		mcp.WithString("id", mcp.Description("Event id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("date", mcp.Description("New start date (yyyy-MM-dd)")),
		mcp.WithString("end_date", mcp.Description("New end date (yyyy-MM-dd)")),
		mcp.WithString("start_time", mcp.Description("New start time (HH:mm)")),
		mcp.WithString("end_time", mcp.Description("New end time (HH:mm)")),
		mcp.WithBoolean("is_all_day", mcp.Description("All-day event")),
		mcp.WithBoolean("is_graded", mcp.Description("Graded event")),
		mcp.WithString("grade", mcp.Description("Grade value")),
		mcp.WithString("color", mcp.Description("New color")),
		mcp.WithString("recurrence_type", mcp.Description("New recurrence type; 'none' stops recurring")),
		mcp.WithNumber("recurrence_interval", mcp.Description("Every N units")),
		mcp.WithString("recurrence_end_date", mcp.Description("Recurrence end date")),
		mcp.WithNumber("recurrence_occurrences", mcp.Description("Max occurrences")),
	), updateEventHandler(st))

	s.AddTool(mcp.NewTool("delete_event",
		mcp.WithDescription("Delete an event. Deleting a base event removes all its generated instances."),
		mcp.WithString("id", mcp.Description("Event id"), mcp.Required()),
	), deleteEventHandler(st))

	s.AddTool(mcp.NewTool("move_event",
		mcp.WithDescription("Move an event to a new start date, preserving multi-day span length."),
		mcp.WithString("id", mcp.Description("Event id"), mcp.Required()),
		mcp.WithString("date", mcp.Description("New start date (yyyy-MM-dd)"), mcp.Required()),
	), moveEventHandler(st))

	s.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List all events, base and generated instances intermixed."),
	), listEventsHandler(st))

	s.AddTool(mcp.NewTool("events_for_date",
		mcp.WithDescription("Events whose span covers a calendar day."),
		mcp.WithString("date", mcp.Description("Date (yyyy-MM-dd)"), mcp.Required()),
	), eventsForDateHandler(st))

	s.AddTool(mcp.NewTool("events_for_range",
		mcp.WithDescription("Events whose span intersects an inclusive date range."),
		mcp.WithString("start", mcp.Description("Range start (yyyy-MM-dd)"), mcp.Required()),
		mcp.WithString("end", mcp.Description("Range end (yyyy-MM-dd)"), mcp.Required()),
	), eventsForRangeHandler(st))

	// History
	s.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the most recent change."),
	), undoHandler(st))

	s.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the most recently undone change."),
	), redoHandler(st))

	s.AddTool(mcp.NewTool("status",
		mcp.WithDescription("Collection counts and undo/redo availability."),
	), statusHandler(st))

	return s
}

func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func addTaskHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t := models.Task{
			Title:       mcp.ParseString(request, "title", ""),
			Description: mcp.ParseString(request, "description", ""),
			Status:      models.TaskStatus(mcp.ParseString(request, "status", string(models.TaskStatusTodo))),
			Priority:    models.TaskPriority(mcp.ParseString(request, "priority", string(models.TaskPriorityMedium))),
			DueDate:     mcp.ParseString(request, "due_date", ""),
		}
		if t.Title == "" {
			return mcp.NewToolResultError("title is required"), nil
		}

		created := st.AddTask(t)
		return jsonResult(created)
	}
}

func updateTaskHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if findTask(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		patch := store.TaskPatch{
			Title:       optString(args, "title"),
			Description: optString(args, "description"),
			DueDate:     optString(args, "due_date"),
		}
		if v, ok := args["status"].(string); ok {
			status := models.TaskStatus(v)
			patch.Status = &status
		}
		if v, ok := args["priority"].(string); ok {
			priority := models.TaskPriority(v)
			patch.Priority = &priority
		}

		st.UpdateTask(id, patch)
		return mcp.NewToolResultText("Task updated successfully"), nil
	}
}

func deleteTaskHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if findTask(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		st.DeleteTask(id)
		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func moveTaskHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status := models.TaskStatus(mcp.ParseString(request, "status", ""))
		if findTask(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		var targetIndex *int
		if v, ok := args["index"].(float64); ok {
			idx := int(v)
			targetIndex = &idx
		}

		st.MoveTask(id, status, targetIndex)
		return mcp.NewToolResultText("Task moved successfully"), nil
	}
}

func reorderTasksHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := models.TaskStatus(mcp.ParseString(request, "status", ""))
		source := mcp.ParseInt(request, "source_index", -1)
		target := mcp.ParseInt(request, "target_index", -1)

		st.ReorderTasks(status, source, target)
		return mcp.NewToolResultText("Tasks reordered"), nil
	}
}

func listTasksHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks := st.Tasks()
		if status := mcp.ParseString(request, "status", ""); status != "" {
			tasks = st.TasksByStatus(models.TaskStatus(status))
		}
		return jsonResult(map[string]any{"tasks": emptyIfNil(tasks)})
	}
}

func addStepHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		text := mcp.ParseString(request, "text", "")

		step, ok := st.AddStep(taskID, models.TaskStep{Text: text})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", taskID)), nil
		}
		return jsonResult(step)
	}
}

func updateStepHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		stepID := mcp.ParseString(request, "step_id", "")
		if findStep(st, taskID, stepID) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Step with id '%s' not found in task '%s'", stepID, taskID)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		patch := store.StepPatch{Text: optString(args, "text")}
		if v, ok := args["completed"].(bool); ok {
			patch.Completed = &v
		}

		st.UpdateStep(taskID, stepID, patch)
		return mcp.NewToolResultText("Step updated successfully"), nil
	}
}

func deleteStepHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		stepID := mcp.ParseString(request, "step_id", "")
		if findStep(st, taskID, stepID) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Step with id '%s' not found in task '%s'", stepID, taskID)), nil
		}

		st.DeleteStep(taskID, stepID)
		return mcp.NewToolResultText("Step deleted successfully"), nil
	}
}

func reorderStepsHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		if findTask(st, taskID) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", taskID)), nil
		}

		source := mcp.ParseInt(request, "source_index", -1)
		target := mcp.ParseInt(request, "target_index", -1)
		st.ReorderSteps(taskID, source, target)
		return mcp.NewToolResultText("Steps reordered"), nil
	}
}

func tagTaskHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		tagID := mcp.ParseString(request, "tag_id", "")
		if findTask(st, taskID) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", taskID)), nil
		}
		if findTag(st, tagID) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Tag with id '%s' not found", tagID)), nil
		}

		st.AddTagToTask(taskID, tagID)
		return mcp.NewToolResultText("Tag added to task"), nil
	}
}

func untagTaskHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		tagID := mcp.ParseString(request, "tag_id", "")
		if findTask(st, taskID) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", taskID)), nil
		}

		st.RemoveTagFromTask(taskID, tagID)
		return mcp.NewToolResultText("Tag removed from task"), nil
	}
}

func addTagHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")
		if name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		created := st.AddTag(models.Tag{
			Name:  name,
			Color: mcp.ParseString(request, "color", ""),
		})
		return jsonResult(created)
	}
}

func updateTagHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if findTag(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Tag with id '%s' not found", id)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		st.UpdateTag(id, store.TagPatch{
			Name:  optString(args, "name"),
			Color: optString(args, "color"),
		})
		return mcp.NewToolResultText("Tag updated successfully"), nil
	}
}

func deleteTagHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if findTag(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Tag with id '%s' not found", id)), nil
		}

		st.DeleteTag(id)
		return mcp.NewToolResultText("Tag deleted successfully"), nil
	}
}

func listTagsHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]any{"tags": emptyIfNil(st.Tags())})
	}
}

func addEventHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := mcp.ParseString(request, "date", "")
		if _, err := models.ParseDate(date); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid date '%s': expected yyyy-MM-dd", date)), nil
		}

		e := models.Event{
			Title:       mcp.ParseString(request, "title", ""),
			Description: mcp.ParseString(request, "description", ""),
			Date:        date,
			EndDate:     mcp.ParseString(request, "end_date", ""),
			StartTime:   mcp.ParseString(request, "start_time", ""),
			EndTime:     mcp.ParseString(request, "end_time", ""),
			IsAllDay:    mcp.ParseBoolean(request, "is_all_day", false),
			IsGraded:    mcp.ParseBoolean(request, "is_graded", false),
			Grade:       mcp.ParseString(request, "grade", ""),
			Color:       mcp.ParseString(request, "color", ""),
		}
		e.IsMultiDay = e.EndDate != ""
		if e.Title == "" {
			return mcp.NewToolResultError("title is required"), nil
		}
		e.Recurrence = recurrenceFromArgs(request)

		created := st.AddEvent(e)
		return jsonResult(created)
	}
}

func updateEventHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if findEvent(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Event with id '%s' not found", id)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		patch := store.EventPatch{
			Title:       optString(args, "title"),
			Description: optString(args, "description"),
			Date:        optString(args, "date"),
			EndDate:     optString(args, "end_date"),
			StartTime:   optString(args, "start_time"),
			EndTime:     optString(args, "end_time"),
			Grade:       optString(args, "grade"),
			Color:       optString(args, "color"),
			Recurrence:  recurrenceFromArgs(request),
		}
		if v, ok := args["is_all_day"].(bool); ok {
			patch.IsAllDay = &v
		}
		if v, ok := args["is_graded"].(bool); ok {
			patch.IsGraded = &v
		}
		if patch.EndDate != nil {
			multiDay := *patch.EndDate != ""
			patch.IsMultiDay = &multiDay
		}
		if typ, ok := args["recurrence_type"].(string); ok && typ == string(models.RecurrenceNone) {
			patch.Recurrence = &models.EventRecurrence{Type: models.RecurrenceNone}
		}

		st.UpdateEvent(id, patch)
		return mcp.NewToolResultText("Event updated successfully"), nil
	}
}

func deleteEventHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if findEvent(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Event with id '%s' not found", id)), nil
		}

		st.DeleteEvent(id)
		return mcp.NewToolResultText("Event deleted successfully"), nil
	}
}

func moveEventHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		date := mcp.ParseString(request, "date", "")
		if findEvent(st, id) == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Event with id '%s' not found", id)), nil
		}
		if _, err := models.ParseDate(date); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid date '%s': expected yyyy-MM-dd", date)), nil
		}

		st.MoveEvent(id, date)
		return mcp.NewToolResultText("Event moved successfully"), nil
	}
}

func listEventsHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]any{"events": emptyIfNil(st.Events())})
	}
}

func eventsForDateHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := mcp.ParseString(request, "date", "")
		date, err := models.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid date '%s': expected yyyy-MM-dd", raw)), nil
		}
		return jsonResult(map[string]any{"events": emptyIfNil(st.EventsForDate(date))})
	}
}

func eventsForRangeHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawStart := mcp.ParseString(request, "start", "")
		rawEnd := mcp.ParseString(request, "end", "")
		start, err := models.ParseDate(rawStart)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start '%s': expected yyyy-MM-dd", rawStart)), nil
		}
		end, err := models.ParseDate(rawEnd)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end '%s': expected yyyy-MM-dd", rawEnd)), nil
		}
		return jsonResult(map[string]any{"events": emptyIfNil(st.EventsForDateRange(start, end))})
	}
}

func undoHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !st.Undo() {
			return mcp.NewToolResultText("Nothing to undo"), nil
		}
		return mcp.NewToolResultText("Undid last change"), nil
	}
}

func redoHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !st.Redo() {
			return mcp.NewToolResultText("Nothing to redo"), nil
		}
		return mcp.NewToolResultText("Redid last undone change"), nil
	}
}

func statusHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(st.Summarize())
	}
}

// recurrenceFromArgs builds a recurrence descriptor when the request
// carries an active recurrence_type; nil otherwise.
func recurrenceFromArgs(request mcp.CallToolRequest) *models.EventRecurrence {
	typ := mcp.ParseString(request, "recurrence_type", "")
	if typ == "" || typ == string(models.RecurrenceNone) {
		return nil
	}
	return &models.EventRecurrence{
		Type:        models.RecurrenceType(typ),
		Interval:    mcp.ParseInt(request, "recurrence_interval", 1),
		EndDate:     mcp.ParseString(request, "recurrence_end_date", ""),
		Occurrences: mcp.ParseInt(request, "recurrence_occurrences", 0),
	}
}

func optString(args map[string]any, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func findTask(st *store.Store, id string) *models.Task {
	for _, t := range st.Tasks() {
		if t.ID == id {
			return &t
		}
	}
	return nil
}

func findStep(st *store.Store, taskID, stepID string) *models.TaskStep {
	t := findTask(st, taskID)
	if t == nil {
		return nil
	}
	for _, s := range t.Steps {
		if s.ID == stepID {
			return &s
		}
	}
	return nil
}

func findTag(st *store.Store, id string) *models.Tag {
	for _, t := range st.Tags() {
		if t.ID == id {
			return &t
		}
	}
	return nil
}

func findEvent(st *store.Store, id string) *models.Event {
	for _, e := range st.Events() {
		if e.ID == id {
			return &e
		}
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
