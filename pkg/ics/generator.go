package ics

import (
	"errors"
	"fmt"
	"html"
	"io"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/noah-isme/calendar-scolar-api/pkg/sanitize"
)

const (
	// DefaultCalendarName is used when the caller passes an empty name.
	DefaultCalendarName = "Calendar Școlar"
	// DefaultDomain is the UID suffix.
	DefaultDomain = "calendarscolar.ro"
	// ContentType is the media type feeds are served with.
	ContentType = "text/calendar; charset=utf-8"

	ProductID       = "-//CalendarȘcolar//Calendar Școlar//RO"
	TimeZone        = "Europe/Bucharest"
	CalendarDesc    = "Calendar școlar oficial pentru România"
	PromoMarker     = "📢 "
	MaxTitleLength  = 200
	MaxNameLength   = 100
	dateLayout      = "20060102"
	timestampLayout = "20060102T150405Z"
)

// ErrInvalidItem marks an item whose required fields are missing or unusable.
var ErrInvalidItem = errors.New("ics: invalid calendar item")

// ItemError describes a rejected item by its input position.
type ItemError struct {
	Index int
	ID    string
	Field string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("ics: item %d (id %q): missing or invalid %s", e.Index, e.ID, e.Field)
}

func (e *ItemError) Unwrap() error { return ErrInvalidItem }

// Validate checks the required fields of every item and returns one error per rejected item.
func Validate(items []CalendarItem) []ItemError {
	var problems []ItemError
	for i, item := range items {
		if field := missingField(item); field != "" {
			problems = append(problems, ItemError{Index: i, ID: item.ID, Field: field})
		}
	}
	return problems
}

func missingField(item CalendarItem) string {
	switch {
	case strings.TrimSpace(item.ID) == "", strings.ContainsFunc(item.ID, unicode.IsControl):
		// the id is written unescaped into UID, so a line break would end the event
		return "id"
	case strings.TrimSpace(item.Title) == "":
		return "title"
	case item.StartDate.IsZero():
		return "startDate"
	}
	return ""
}

// Generator renders calendar items as an iCalendar document. The zero value is not usable;
// construct one with NewGenerator.
type Generator struct {
	domain string
	now    func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithDomain overrides the UID suffix.
func WithDomain(domain string) Option {
	return func(g *Generator) {
		if domain = strings.TrimSpace(domain); domain != "" {
			g.domain = domain
		}
	}
}

// WithClock overrides the DTSTAMP source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator builds a generator. It holds no mutable state and is safe for concurrent use.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{domain: DefaultDomain, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = NewGenerator()

// Generate renders items with the default generator.
func Generate(items []CalendarItem, calendarName string) (string, error) {
	return defaultGenerator.Generate(items, calendarName)
}

// Render streams items to w with the default generator.
func Render(w io.Writer, items []CalendarItem, calendarName string) error {
	return defaultGenerator.Render(w, items, calendarName)
}

// RenderLenient streams the valid items to w with the default generator.
func RenderLenient(w io.Writer, items []CalendarItem, calendarName string) ([]ItemError, error) {
	return defaultGenerator.RenderLenient(w, items, calendarName)
}

// Generate returns the whole document as a string.
func (g *Generator) Generate(items []CalendarItem, calendarName string) (string, error) {
	var b strings.Builder
	if err := g.Render(&b, items, calendarName); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render writes the document to w. Any item missing a required field aborts the call
// before anything is written and is returned as an *ItemError.
func (g *Generator) Render(w io.Writer, items []CalendarItem, calendarName string) error {
	if problems := Validate(items); len(problems) > 0 {
		return &problems[0]
	}
	return g.write(w, items, calendarName)
}

// RenderLenient writes every valid item and reports the skipped ones.
func (g *Generator) RenderLenient(w io.Writer, items []CalendarItem, calendarName string) ([]ItemError, error) {
	problems := Validate(items)
	if len(problems) == 0 {
		return nil, g.write(w, items, calendarName)
	}
	rejected := make(map[int]struct{}, len(problems))
	for _, p := range problems {
		rejected[p.Index] = struct{}{}
	}
	valid := make([]CalendarItem, 0, len(items)-len(problems))
	for i, item := range items {
		if _, skip := rejected[i]; !skip {
			valid = append(valid, item)
		}
	}
	return problems, g.write(w, valid, calendarName)
}

func (g *Generator) write(w io.Writer, items []CalendarItem, calendarName string) error {
	name := strings.TrimSpace(calendarName)
	if name == "" {
		name = DefaultCalendarName
	}
	stamp := g.now().UTC().Format(timestampLayout)

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b CalendarItem) int {
		return a.StartDate.Compare(b.StartDate)
	})

	lw := &lineWriter{w: w}
	lw.line("BEGIN:VCALENDAR")
	lw.line("VERSION:2.0")
	lw.line("PRODID:" + ProductID)
	lw.line("CALSCALE:GREGORIAN")
	lw.line("METHOD:PUBLISH")
	lw.line("X-WR-CALNAME:" + EscapeText(Truncate(name, MaxNameLength)))
	lw.line("X-WR-TIMEZONE:" + TimeZone)
	lw.line("X-WR-CALDESC:" + EscapeText(CalendarDesc))
	for _, item := range sorted {
		g.writeEvent(lw, item, stamp)
	}
	lw.line("END:VCALENDAR")
	return lw.err
}

func (g *Generator) writeEvent(lw *lineWriter, item CalendarItem, stamp string) {
	lw.line("BEGIN:VEVENT")
	lw.line("UID:" + item.ID + "@" + g.domain)

	if IsAllDay(item.Category, item.StartDate, item.EndDate) {
		start := item.StartDate.UTC()
		end := start.AddDate(0, 0, 1)
		if item.EndDate != nil {
			end = item.EndDate.UTC().AddDate(0, 0, 1)
		}
		lw.line("DTSTART;VALUE=DATE:" + start.Format(dateLayout))
		lw.line("DTEND;VALUE=DATE:" + end.Format(dateLayout))
	} else {
		start := item.StartDate.UTC()
		end := start
		if item.EndDate != nil {
			end = item.EndDate.UTC()
		}
		lw.line("DTSTART:" + start.Format(timestampLayout))
		lw.line("DTEND:" + end.Format(timestampLayout))
	}

	title := item.Title
	if item.Category == CategoryPromo {
		title = PromoMarker + title
	}
	lw.line("SUMMARY:" + EscapeText(Truncate(title, MaxTitleLength)))
	lw.line("SEQUENCE:0")

	imageURL, hasImage := sanitize.SanitizeURL(item.ImageURL)
	if desc := description(item, imageURL, hasImage); desc != "" {
		lw.line("DESCRIPTION:" + EscapeText(desc))
	}
	if item.Category == CategoryPromo {
		if link, ok := sanitize.SanitizeURL(item.ExternalLink); ok {
			lw.line("URL:" + link)
		}
	}
	if hasImage {
		lw.line("X-APPLE-CID;VALUE=URI:" + imageURL)
		lw.line("ATTACH;FMTTYPE=image/jpeg:" + imageURL)
	}
	lw.line("DTSTAMP:" + stamp)
	lw.line("END:VEVENT")
}

func description(item CalendarItem, imageURL string, hasImage bool) string {
	text := sanitize.StripHTML(item.Description)
	if !hasImage {
		return text
	}
	hint := fmt.Sprintf(`<img src="%s" alt="%s" style="max-width: 100%%; height: auto;" />`,
		html.EscapeString(imageURL), html.EscapeString(Truncate(item.Title, MaxTitleLength)))
	if text == "" {
		return hint
	}
	return text + "\n\n" + hint
}

// lineWriter folds and terminates content lines, keeping the first write error.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = io.WriteString(lw.w, fold(s)+"\r\n")
}
