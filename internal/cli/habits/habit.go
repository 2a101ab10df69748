package habits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/losebird/lifelog-ai/internal/calendar"
	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/models"
	"github.com/losebird/lifelog-ai/internal/progress"
	"github.com/losebird/lifelog-ai/internal/render"
	"github.com/losebird/lifelog-ai/internal/ring"
	"github.com/losebird/lifelog-ai/internal/tui"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" help:"List habits with today's progress."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	Log      HabitLogCmd      `cmd:"" help:"Log progress for a day."`
	Unlog    HabitUnlogCmd    `cmd:"" help:"Clear a day's log."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit and all of its logs."`
	Progress HabitProgressCmd `cmd:"" help:"Show a habit's progress for a day."`
	Calendar HabitCalendarCmd `cmd:"" help:"Show the month calendar of habit rings."`
	Week     HabitWeekCmd     `cmd:"" help:"Show the week strip around a day."`
}

type HabitAddCmd struct {
	Name      string  `arg:"" optional:"" help:"Habit name. Omit to fill in a form."`
	Icon      string  `short:"i" help:"Emoji icon."`
	Color     string  `short:"c" help:"Ring color (red|orange|amber|green|sky|indigo|purple|pink)."`
	Goal      string  `short:"g" enum:"checkmark,number,note" default:"checkmark" help:"Goal type (checkmark|number|note)."`
	Target    float64 `short:"t" help:"Daily target for number goals."`
	Unit      string  `short:"u" help:"Unit for number goals."`
	Frequency string  `enum:"daily,weekly,monthly" default:"daily" help:"How often (daily|weekly|monthly)."`
	Count     int     `default:"1" help:"Times per period."`
	Reminder  string  `help:"Reminder time (HH:MM)."`
	Quote     string  `help:"Motivational quote."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	var habit models.Habit
	if strings.TrimSpace(c.Name) == "" {
		fm := &tui.HabitFormModel{}
		if err := tui.NewHabitForm(fm).Run(); err != nil {
			return err
		}
		h, err := tui.HabitFromForm(fm)
		if err != nil {
			return err
		}
		habit = h
	} else {
		habit = models.Habit{
			Name:              c.Name,
			Icon:              c.Icon,
			Color:             c.Color,
			Frequency:         models.Frequency(c.Frequency),
			FrequencyCount:    c.Count,
			Goal:              models.Goal{Type: models.GoalType(c.Goal), Target: c.Target, Unit: c.Unit},
			ReminderTime:      c.Reminder,
			MotivationalQuote: c.Quote,
		}
	}
	if habit.Color != "" && !ring.Known(habit.Color) {
		return fmt.Errorf("unknown color %q (expected one of %s)", habit.Color, strings.Join(ring.PaletteKeys, ", "))
	}

	if _, err := ctx.FindHabit(habit.Name); err == nil {
		return fmt.Errorf("habit with name %q already exists", habit.Name)
	}

	saved, err := ctx.Store.AddHabit(ctx.Ctx, habit)
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s)\n", saved.Name, cli.ShortID(saved.ID))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	snap := ctx.Store.Snapshot()
	if len(snap.Habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Today()
	idx := progress.NewIndex(snap.HabitLogs)
	for _, h := range snap.Habits {
		p := idx.Progress(h, calendar.DateKey(today))
		line := fmt.Sprintf("%s  %s %-20s %s %s", cli.ShortID(h.ID), render.Glyph(p), habitLabel(h), render.Percent(p), describeGoal(h))
		if streak := progress.Streak(h, today, snap.HabitLogs); streak > 0 {
			line += fmt.Sprintf("  🔥%d", streak)
		}
		fmt.Println(line)
	}
	return nil
}

func habitLabel(h models.Habit) string {
	if h.Icon == "" {
		return h.Name
	}
	return h.Icon + " " + h.Name
}

func describeGoal(h models.Habit) string {
	switch h.Goal.Type {
	case models.GoalNumber:
		return strings.TrimSpace(fmt.Sprintf("(%s %s)", strconv.FormatFloat(h.Goal.Target, 'f', -1, 64), h.Goal.Unit))
	case models.GoalNote:
		return "(note)"
	}
	return ""
}

type HabitEditCmd struct {
	Habit     string `arg:"" help:"Habit name or id."`
	Name      string `help:"New name."`
	Icon      string `help:"New icon."`
	Color     string `help:"New ring color."`
	Goal      string `help:"New goal type (checkmark|number|note)."`
	Target    string `help:"New daily target."`
	Unit      string `help:"New unit."`
	Frequency string `help:"New frequency (daily|weekly|monthly)."`
	Reminder  string `help:"New reminder time (HH:MM)."`
	Quote     string `help:"New motivational quote."`
}

func (c *HabitEditCmd) Validate() error {
	if c.Goal != "" && !models.GoalType(c.Goal).Valid() {
		return fmt.Errorf("invalid goal %q (expected checkmark, number or note)", c.Goal)
	}
	if c.Frequency != "" && !models.Frequency(c.Frequency).Valid() {
		return fmt.Errorf("invalid frequency %q (expected daily, weekly or monthly)", c.Frequency)
	}
	return nil
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Name != "" {
		h.Name = c.Name
	}
	if c.Icon != "" {
		h.Icon = c.Icon
	}
	if c.Color != "" {
		if !ring.Known(c.Color) {
			return fmt.Errorf("unknown color %q (expected one of %s)", c.Color, strings.Join(ring.PaletteKeys, ", "))
		}
		h.Color = c.Color
	}
	if c.Goal != "" {
		h.Goal.Type = models.GoalType(c.Goal)
	}
	if c.Target != "" {
		t, err := strconv.ParseFloat(c.Target, 64)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", c.Target, err)
		}
		h.Goal.Target = t
	}
	if c.Unit != "" {
		h.Goal.Unit = c.Unit
	}
	if c.Frequency != "" {
		h.Frequency = models.Frequency(c.Frequency)
	}
	if c.Reminder != "" {
		h.ReminderTime = c.Reminder
	}
	if c.Quote != "" {
		h.MotivationalQuote = c.Quote
	}

	saved, err := ctx.Store.UpdateHabit(ctx.Ctx, h)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s\n", saved.Name)
	return nil
}

type HabitLogCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Value string `arg:"" optional:"" help:"Amount for number goals, text for note goals."`
	Date  string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	entry := models.HabitLog{HabitID: h.ID, Date: calendar.DateKey(day), Completed: true}
	switch h.Goal.Type {
	case models.GoalNumber:
		if c.Value == "" {
			return fmt.Errorf("%s tracks a number, pass the amount", h.Name)
		}
		v, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", c.Value, err)
		}
		entry.Value = models.NumberValue(v)
	case models.GoalNote:
		if strings.TrimSpace(c.Value) != "" {
			entry.Value = models.TextValue(c.Value)
		}
	}

	if _, err := ctx.Store.LogHabit(ctx.Ctx, entry); err != nil {
		return err
	}
	p := ctx.Store.HabitProgress(h.ID, entry.Date)
	fmt.Printf("✓ Logged %s for %s: %s %s\n", h.Name, entry.Date, render.Bar(p, 10), render.Percent(p))
	return nil
}

type HabitUnlogCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitUnlogCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	date := calendar.DateKey(day)
	if _, ok := progress.Find(h.ID, date, ctx.Store.HabitLogs()); !ok {
		fmt.Printf("%s has no log for %s\n", h.Name, date)
		return nil
	}
	if _, err := ctx.Store.LogHabit(ctx.Ctx, models.HabitLog{HabitID: h.ID, Date: date}); err != nil {
		return err
	}
	fmt.Printf("Cleared %s for %s\n", h.Name, date)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q and all of its logs?", h.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}
	if err := ctx.Store.DeleteHabit(ctx.Ctx, h.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitProgressCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitProgressCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	date := calendar.DateKey(day)
	logs := ctx.Store.HabitLogs()
	p := progress.Calculate(h, date, logs)

	fmt.Printf("%s on %s\n", habitLabel(h), date)
	fmt.Printf("  %s %s\n", render.Bar(p, 20), render.Percent(p))
	if entry, ok := progress.Find(h.ID, date, logs); ok && entry.Value != nil {
		fmt.Printf("  Logged: %s %s\n", entry.Value.String(), h.Goal.Unit)
	}
	if streak := progress.Streak(h, ctx.Today(), logs); streak > 0 {
		fmt.Printf("  Streak: %d day(s)\n", streak)
	}
	if h.MotivationalQuote != "" {
		fmt.Printf("  \"%s\"\n", h.MotivationalQuote)
	}
	return nil
}

type HabitCalendarCmd struct {
	Month       string `short:"m" help:"Month in YYYY-MM format (default: this month)."`
	SundayFirst bool   `help:"Start weeks on Sunday instead of Monday."`
}

// weekStart is Monday unless the caller opts into Sunday.
func (c *HabitCalendarCmd) weekStart() calendar.WeekStart {
	if c.SundayFirst {
		return calendar.SundayFirst
	}
	return calendar.MondayFirst
}

func (c *HabitCalendarCmd) Run(ctx *cli.Context) error {
	month, err := ctx.ParseMonth(c.Month)
	if err != nil {
		return err
	}
	snap := ctx.Store.Snapshot()
	fmt.Println(render.MonthCalendar(month, ctx.Today(), c.weekStart(), snap.Habits, progress.NewIndex(snap.HabitLogs)))
	return nil
}

type HabitWeekCmd struct {
	Date string `short:"d" help:"Center day in YYYY-MM-DD format (default: today)."`
}

func (c *HabitWeekCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	snap := ctx.Store.Snapshot()
	idx := progress.NewIndex(snap.HabitLogs)
	fmt.Println(render.WeekStrip(day, ctx.Today(), snap.Habits, idx))
	fmt.Println()
	fmt.Println(render.DayRings(snap.Habits, idx, calendar.DateKey(day)))
	return nil
}
