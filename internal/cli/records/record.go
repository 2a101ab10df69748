package records

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/losebird/lifelog-ai/internal/capture"
	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/enrich"
	"github.com/losebird/lifelog-ai/internal/models"
)

type RecordCmd struct {
	Add    RecordAddCmd    `cmd:"" help:"Add a journal record."`
	List   RecordListCmd   `cmd:"" help:"List records, newest first."`
	Show   RecordShowCmd   `cmd:"" help:"Show a record in full."`
	Delete RecordDeleteCmd `cmd:"" help:"Delete a record and its todos."`
	Search RecordSearchCmd `cmd:"" help:"Search records."`
}

type RecordAddCmd struct {
	Content string   `arg:"" optional:"" help:"Text, transcript or notes for the record."`
	Type    string   `short:"t" enum:"text,voice,link,scan,file" default:"text" help:"Record type (text|voice|link|scan|file)."`
	URL     string   `short:"u" help:"Link to save (link records)."`
	Audio   string   `help:"Location of the recording (voice records)."`
	Files   []string `short:"f" type:"existingfile" help:"Page images (scan records) or the document (file records)."`
	Emotion string   `short:"e" help:"Emotion symbol overriding the detected one."`
	Tags    []string `help:"Extra tags."`
}

func (c *RecordAddCmd) Validate() error {
	switch c.Type {
	case "text", "voice":
		if strings.TrimSpace(c.Content) == "" {
			return fmt.Errorf("%s records need content", c.Type)
		}
	case "link":
		if c.URL == "" {
			return fmt.Errorf("link records need --url")
		}
	case "scan", "file":
		if len(c.Files) == 0 {
			return fmt.Errorf("%s records need --files", c.Type)
		}
	}
	return nil
}

func (c *RecordAddCmd) Run(ctx *cli.Context) error {
	b := capture.New(ctx.Enricher).WithClock(ctx.Now, nil)

	var (
		rec models.Record
		err error
	)
	switch models.RecordType(c.Type) {
	case models.RecordText:
		rec, err = b.Text(ctx.Ctx, c.Content, models.Emotion(c.Emotion))
	case models.RecordVoice:
		rec, err = b.Voice(ctx.Ctx, c.Content, c.Audio)
	case models.RecordLink:
		rec, err = b.Link(ctx.Ctx, c.URL, c.Content)
	case models.RecordScan:
		var pages []enrich.Image
		if pages, err = readImages(c.Files); err == nil {
			rec, err = b.Scan(ctx.Ctx, pages, c.Files[0], c.Content)
		}
	case models.RecordFile:
		var data []byte
		if data, err = os.ReadFile(c.Files[0]); err == nil {
			name := filepath.Base(c.Files[0])
			rec, err = b.File(ctx.Ctx, name, detectType(name, data), data)
		}
	}
	if err != nil {
		return err
	}
	if e := models.Emotion(c.Emotion); e.Valid() {
		rec.Emotion = e
	}
	rec.Tags = models.MergeTags(rec.Tags, c.Tags)

	saved, err := ctx.Store.AddRecord(ctx.Ctx, rec)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added %s record %s\n", saved.Type, cli.ShortID(saved.ID))
	if len(saved.Tags) > 0 {
		fmt.Printf("  Tags: %s\n", formatTags(saved.Tags))
	}
	for _, a := range saved.ActionItems {
		fmt.Printf("  Todo: %s [%s]\n", a.Task, a.Priority)
	}
	return nil
}

func readImages(paths []string) ([]enrich.Image, error) {
	pages := make([]enrich.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %s: %w", p, err)
		}
		pages = append(pages, enrich.Image{Data: data, MIMEType: detectType(p, data)})
	}
	return pages, nil
}

// detectType prefers the extension and sniffs the content otherwise.
func detectType(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	t, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return t
}

type RecordListCmd struct {
	Date  string `short:"d" help:"Only records from this day (YYYY-MM-DD)."`
	Tag   string `help:"Only records with this tag."`
	Limit int    `short:"n" default:"20" help:"Maximum number of records to show (0 for all)."`
}

func (c *RecordListCmd) Run(ctx *cli.Context) error {
	var filter datastore.RecordFilter
	if c.Date != "" {
		d, err := ctx.ParseDay(c.Date)
		if err != nil {
			return err
		}
		filter.Date = &d
	}
	filter.Tag = c.Tag

	records := ctx.Store.FilterRecords(filter)
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}
	if c.Limit > 0 && len(records) > c.Limit {
		records = records[:c.Limit]
	}
	printRecords(records)
	return nil
}

func printRecords(records []models.Record) {
	for _, r := range records {
		line := fmt.Sprintf("%s  %s  %-5s %s %s",
			cli.ShortID(r.ID),
			r.Timestamp.Local().Format(constants.DateFormat+" "+constants.TimeFormat),
			r.Type,
			r.Emotion,
			cli.Truncate(summary(r), 50),
		)
		if len(r.Tags) > 0 {
			line += "  " + formatTags(r.Tags)
		}
		fmt.Println(line)
	}
}

func summary(r models.Record) string {
	if r.LinkDetails != nil && r.LinkDetails.Title != "" && strings.TrimSpace(r.Content) == "" {
		return r.LinkDetails.Title
	}
	if r.FileDetails != nil && strings.TrimSpace(r.Content) == "" {
		return r.FileDetails.Name
	}
	return r.Content
}

func formatTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

type RecordShowCmd struct {
	ID string `arg:"" help:"Record id or unique id prefix."`
}

func (c *RecordShowCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRecord(c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", r.ID)
	fmt.Printf("Type:     %s\n", r.Type)
	fmt.Printf("Time:     %s\n", r.Timestamp.Local().Format(constants.DateFormat+" "+constants.TimeFormat))
	if r.Emotion != "" {
		fmt.Printf("Emotion:  %s\n", r.Emotion)
	}
	if len(r.Tags) > 0 {
		fmt.Printf("Tags:     %s\n", formatTags(r.Tags))
	}
	if r.AudioURL != "" {
		fmt.Printf("Audio:    %s\n", r.AudioURL)
	}
	if l := r.LinkDetails; l != nil {
		fmt.Printf("URL:      %s\n", l.URL)
		fmt.Printf("Title:    %s\n", l.Title)
		fmt.Printf("Summary:  %s\n", l.Summary)
	}
	if f := r.FileDetails; f != nil {
		fmt.Printf("File:     %s (%s)\n", f.Name, f.Type)
	}
	if s := r.ScanDetails; s != nil {
		fmt.Printf("Image:    %s\n", s.ImageURL)
	}
	if strings.TrimSpace(r.Content) != "" {
		fmt.Printf("\n%s\n", r.Content)
	}
	if len(r.ActionItems) > 0 {
		fmt.Println("\nTodos:")
		for _, a := range r.ActionItems {
			fmt.Printf("  %s  [%s] %s (%s)\n", cli.ShortID(a.ID), a.Status, a.Task, a.Priority)
		}
	}
	return nil
}

type RecordDeleteCmd struct {
	ID string `arg:"" help:"Record id or unique id prefix."`
}

func (c *RecordDeleteCmd) Run(ctx *cli.Context) error {
	r, err := ctx.FindRecord(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteRecord(ctx.Ctx, r.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted record %s\n", cli.ShortID(r.ID))
	return nil
}

type RecordSearchCmd struct {
	Query string `arg:"" optional:"" help:"Search text. Omit to get suggested searches."`
	AI    bool   `help:"Rank matches with the AI model instead of plain text matching."`
}

func (c *RecordSearchCmd) Run(ctx *cli.Context) error {
	if strings.TrimSpace(c.Query) == "" {
		queries, _ := ctx.Enricher.SearchSuggestions(ctx.Ctx, ctx.Store.Records())
		if len(queries) == 0 {
			fmt.Println("No search suggestions available.")
			return nil
		}
		fmt.Println("Try searching for:")
		for _, q := range queries {
			fmt.Printf("  %s\n", q)
		}
		return nil
	}

	var found []models.Record
	if c.AI && ctx.Enricher.Enabled() {
		ids, _ := ctx.Enricher.Search(ctx.Ctx, c.Query, ctx.Store.Records())
		if ids == nil {
			ids = []string{}
		}
		found = ctx.Store.FilterRecords(datastore.RecordFilter{SearchIDs: ids})
	} else {
		found = ctx.Store.LocalSearch(c.Query)
	}

	if len(found) == 0 {
		fmt.Printf("No records match %q.\n", c.Query)
		return nil
	}
	fmt.Printf("%d record(s) match %q:\n", len(found), c.Query)
	printRecords(found)
	return nil
}
