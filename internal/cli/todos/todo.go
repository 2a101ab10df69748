package todos

import (
	"fmt"
	"strings"

	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/models"
)

type TodoCmd struct {
	Add     TodoAddCmd     `cmd:"" help:"Add a standalone todo."`
	List    TodoListCmd    `cmd:"" help:"List todos by status."`
	Status  TodoStatusCmd  `cmd:"" help:"Move a todo to another status."`
	Subtask TodoSubtaskCmd `cmd:"" help:"Add or toggle subtasks."`
	Delete  TodoDeleteCmd  `cmd:"" help:"Delete a todo."`
}

type TodoAddCmd struct {
	Task       string   `arg:"" help:"What needs doing."`
	Priority   string   `short:"p" enum:"low,medium,high" default:"medium" help:"Priority (low|medium|high)."`
	Due        string   `short:"d" help:"Due date (YYYY-MM-DD)."`
	Project    string   `help:"Project name, also used as the record tag."`
	Reminder   string   `enum:"none,5m,15m,1h,1d" default:"none" help:"Reminder before the due date (none|5m|15m|1h|1d)."`
	Recurrence string   `enum:"none,daily,weekly,monthly" default:"none" help:"Repeat (none|daily|weekly|monthly)."`
	Subtasks   []string `short:"s" help:"Subtasks to create with the todo."`
}

func (c *TodoAddCmd) Run(ctx *cli.Context) error {
	d := models.TaskDetails{
		Task:       c.Task,
		Priority:   models.Priority(c.Priority),
		Project:    c.Project,
		Reminder:   models.Reminder(c.Reminder),
		Recurrence: models.Recurrence(c.Recurrence),
		Subtasks:   c.Subtasks,
	}
	if c.Due != "" {
		due, err := ctx.ParseDay(c.Due)
		if err != nil {
			return err
		}
		d.DueDate = &due
	}

	rec, err := ctx.Store.AddActionItem(ctx.Ctx, d)
	if err != nil {
		return err
	}
	item := rec.ActionItems[0]
	fmt.Printf("✓ Added todo %s: %s\n", cli.ShortID(item.ID), item.Task)
	return nil
}

type TodoListCmd struct {
	Status string `arg:"" optional:"" help:"Only show this status (todo|inprogress|done)."`
}

func (c *TodoListCmd) Validate() error {
	if c.Status != "" && !models.ActionStatus(c.Status).Valid() {
		return fmt.Errorf("invalid status %q (expected todo, inprogress or done)", c.Status)
	}
	return nil
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	board := ctx.Store.ActionItemsByStatus()
	columns := []struct {
		status models.ActionStatus
		title  string
		items  []models.ActionItem
	}{
		{models.StatusTodo, "To Do", board.Todo},
		{models.StatusInProgress, "In Progress", board.InProgress},
		{models.StatusDone, "Done", board.Done},
	}

	shown := 0
	for _, col := range columns {
		if c.Status != "" && models.ActionStatus(c.Status) != col.status {
			continue
		}
		fmt.Printf("%s (%d)\n", col.title, len(col.items))
		for _, a := range col.items {
			fmt.Printf("  %s\n", formatItem(a))
		}
		shown += len(col.items)
	}
	if shown == 0 {
		fmt.Println("No todos found.")
	}
	return nil
}

func formatItem(a models.ActionItem) string {
	line := fmt.Sprintf("%s  %-6s %s", cli.ShortID(a.ID), a.Priority, a.Task)
	if a.DueDate != nil {
		line += "  due " + a.DueDate.Local().Format(constants.DateFormat)
	}
	if a.Project != "" {
		line += "  [" + a.Project + "]"
	}
	if n := len(a.Subtasks); n > 0 {
		done := 0
		for _, s := range a.Subtasks {
			if s.Completed {
				done++
			}
		}
		line += fmt.Sprintf("  (%d/%d)", done, n)
	}
	return line
}

type TodoStatusCmd struct {
	ID     string `arg:"" help:"Todo id or unique id prefix."`
	Status string `arg:"" enum:"todo,inprogress,done" help:"New status (todo|inprogress|done)."`
}

func (c *TodoStatusCmd) Run(ctx *cli.Context) error {
	item, err := ctx.FindActionItem(c.ID)
	if err != nil {
		return err
	}
	item.Status = models.ActionStatus(c.Status)
	saved, err := ctx.Store.UpdateActionItem(ctx.Ctx, item)
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", saved.Task, saved.Status)
	if saved.Status != item.Status {
		fmt.Println("  (status follows its subtasks)")
	}
	return nil
}

type TodoSubtaskCmd struct {
	ID     string `arg:"" help:"Todo id or unique id prefix."`
	Add    string `short:"a" help:"Subtask text to add."`
	Toggle int    `short:"t" help:"Toggle the subtask at this position (1-based)."`
}

func (c *TodoSubtaskCmd) Validate() error {
	if strings.TrimSpace(c.Add) == "" && c.Toggle == 0 {
		return fmt.Errorf("either --add or --toggle is required")
	}
	return nil
}

func (c *TodoSubtaskCmd) Run(ctx *cli.Context) error {
	item, err := ctx.FindActionItem(c.ID)
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(c.Add); text != "" {
		item.Subtasks = append(item.Subtasks, models.Subtask{ID: models.NewID(), Text: text})
	}
	if c.Toggle != 0 {
		if c.Toggle < 1 || c.Toggle > len(item.Subtasks) {
			return fmt.Errorf("subtask %d does not exist (todo has %d)", c.Toggle, len(item.Subtasks))
		}
		item.Subtasks[c.Toggle-1].Completed = !item.Subtasks[c.Toggle-1].Completed
	}

	saved, err := ctx.Store.UpdateActionItem(ctx.Ctx, item)
	if err != nil {
		return err
	}
	fmt.Printf("%s [%s]\n", saved.Task, saved.Status)
	for i, s := range saved.Subtasks {
		mark := " "
		if s.Completed {
			mark = "x"
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, mark, s.Text)
	}
	return nil
}

type TodoDeleteCmd struct {
	ID string `arg:"" help:"Todo id or unique id prefix."`
}

func (c *TodoDeleteCmd) Run(ctx *cli.Context) error {
	item, err := ctx.FindActionItem(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteActionItem(ctx.Ctx, item); err != nil {
		return err
	}
	fmt.Printf("Deleted todo: %s\n", item.Task)
	return nil
}
