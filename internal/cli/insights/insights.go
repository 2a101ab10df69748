package insights

import (
	"fmt"
	"strings"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/render"
)

type ReviewCmd struct {
	Stats    ReviewStatsCmd    `cmd:"" help:"Show tag cloud, habit completion and todo totals."`
	Calendar ReviewCalendarCmd `cmd:"" help:"Show a month of journaling activity."`
}

type ReviewStatsCmd struct{}

func (c *ReviewStatsCmd) Run(ctx *cli.Context) error {
	records := ctx.Store.Records()
	board := ctx.Store.ActionItemsByStatus()

	fmt.Printf("Records: %d\n", len(records))
	fmt.Printf("Todos:   %d to do, %d in progress, %d done\n\n", len(board.Todo), len(board.InProgress), len(board.Done))
	fmt.Println("Tags")
	fmt.Println(render.TagCloud(ctx.Store.TagCounts()))
	fmt.Println()
	fmt.Println("Habit completion")
	fmt.Println(render.CompletionRates(ctx.Store.HabitCompletionRates()))
	return nil
}

type ReviewCalendarCmd struct {
	Month       string `short:"m" help:"Month in YYYY-MM format (default: this month)."`
	MondayFirst bool   `help:"Start weeks on Monday."`
}

func (c *ReviewCalendarCmd) Run(ctx *cli.Context) error {
	month, err := ctx.ParseMonth(c.Month)
	if err != nil {
		return err
	}
	start := calendar.SundayFirst
	if c.MondayFirst {
		start = calendar.MondayFirst
	}
	counts := ctx.Store.RecordCountsByDate()
	fmt.Println(render.ReviewCalendar(month, start, counts))

	total := 0
	for day, n := range counts {
		if strings.HasPrefix(day, month.Format("2006-01")) {
			total += n
		}
	}
	fmt.Printf("\n%d record(s) in %s\n", total, month.Format("January 2006"))
	return nil
}

type InsightsCmd struct {
	Suggestions InsightsSuggestionsCmd `cmd:"" help:"Show proactive suggestions from recent records."`
	Templates   InsightsTemplatesCmd   `cmd:"" help:"List insight report templates."`
	Report      InsightsReportCmd      `cmd:"" help:"Generate an insight report."`
}

type InsightsSuggestionsCmd struct {
	Create int `help:"Create the habit proposed by the suggestion at this position (1-based)."`
}

func (c *InsightsSuggestionsCmd) Run(ctx *cli.Context) error {
	// Entering the insights view is what starts a suggestion fetch.
	if err := ctx.Store.SetActiveView(datastore.ViewInsights); err != nil {
		return err
	}
	ctx.Store.WaitForSuggestions()
	suggestions := ctx.Store.Suggestions()
	if len(suggestions) == 0 {
		fmt.Println("No suggestions yet. Keep journaling and check back later.")
		return nil
	}

	if c.Create != 0 {
		if c.Create < 1 || c.Create > len(suggestions) {
			return fmt.Errorf("suggestion %d does not exist (%d available)", c.Create, len(suggestions))
		}
		s := suggestions[c.Create-1]
		if s.Action == nil {
			return fmt.Errorf("suggestion %d does not propose a habit", c.Create)
		}
		h, err := ctx.Store.AddHabit(ctx.Ctx, models.Habit{
			Name:  s.Action.Habit.Name,
			Icon:  s.Action.Habit.Icon,
			Color: s.Action.Habit.Color,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added habit: %s\n", h.Name)
		return nil
	}

	for i, s := range suggestions {
		fmt.Printf("%d. %s\n", i+1, s.Title)
		fmt.Printf("   %s\n", s.Description)
		if s.Action != nil {
			fmt.Printf("   → %s: %s %s (lifelog insights suggestions --create %d)\n", s.Action.Label, s.Action.Habit.Icon, s.Action.Habit.Name, i+1)
		}
	}
	return nil
}

type InsightsTemplatesCmd struct{}

func (c *InsightsTemplatesCmd) Run(ctx *cli.Context) error {
	for _, t := range ctx.Store.InsightTemplates() {
		fmt.Printf("%-16s %s %s\n", t.ID, t.Name, t.Description)
	}
	return nil
}

type InsightsReportCmd struct {
	Template string `arg:"" help:"Template id (see 'lifelog insights templates')."`
	Days     int    `help:"Days of records to include (default depends on the template)."`
	Width    int    `default:"80" help:"Wrap width for the rendered report."`
	Raw      bool   `help:"Print the report markdown without rendering."`
}

func (c *InsightsReportCmd) Run(ctx *cli.Context) error {
	tmpl, ok := models.FindTemplate(c.Template)
	if !ok {
		return fmt.Errorf("unknown template %q", c.Template)
	}
	days := c.Days
	if days <= 0 {
		days = tmpl.LookbackDays()
	}

	records := ctx.Store.RecordsInRange(days)
	if len(records) == 0 {
		fmt.Printf("No records in the last %d day(s).\n", days)
		return nil
	}
	report, _ := ctx.Enricher.InsightReport(ctx.Ctx, tmpl, records)
	if c.Raw {
		fmt.Println(report)
		return nil
	}
	fmt.Println(render.Markdown(report, c.Width))
	return nil
}
