package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

type report struct {
	Source   string
	Status   int
	Events   int
	Problems []string
	Error    error
	Duration time.Duration
}

func (r report) ok() bool {
	return r.Error == nil && len(r.Problems) == 0
}

func main() {
	var (
		base    string
		slugs   string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL used when no sources are given")
	flag.StringVar(&slugs, "counties", "cluj,bucuresti,timis", "comma-separated county slugs checked with -base")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	sources := flag.Args()
	if len(sources) == 0 {
		sources = defaultSources(base, slugs)
	}

	client := &http.Client{Timeout: timeout}
	failed := 0
	for _, src := range sources {
		rep := checkSource(client, src)
		printReport(rep)
		if !rep.ok() {
			failed++
		}
	}

	fmt.Printf("Feeds checked: %d, failed: %d\n", len(sources), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func defaultSources(base, slugs string) []string {
	base = strings.TrimRight(base, "/")
	sources := []string{base + "/api/calendar"}
	for _, slug := range strings.Split(slugs, ",") {
		if slug = strings.TrimSpace(slug); slug != "" {
			sources = append(sources, base+"/api/calendar/county/"+slug)
		}
	}
	return sources
}

// checkSource loads a feed from a URL or a local file and validates it.
func checkSource(client *http.Client, src string) report {
	rep := report{Source: src}
	start := time.Now()
	body, status, err := load(client, src)
	rep.Duration = time.Since(start)
	rep.Status = status
	if err != nil {
		rep.Error = err
		return rep
	}
	rep.Events, rep.Problems, rep.Error = inspect(body)
	return rep
}

func load(client *http.Client, src string) ([]byte, int, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		body, err := os.ReadFile(src)
		return body, 0, err
	}
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	resp, err := client.Get(src)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		return nil, resp.StatusCode, fmt.Errorf("unexpected content type %q", ct)
	}
	return body, resp.StatusCode, nil
}

// inspect parses an ICS document and lists VEVENTs missing UID, DTSTART or DTSTAMP.
// Duplicate UIDs and lines longer than 75 octets are reported too.
func inspect(body []byte) (int, []string, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("parse: %w", err)
	}

	var problems []string
	for i, line := range strings.Split(string(body), "\r\n") {
		if len(line) > 75 {
			problems = append(problems, fmt.Sprintf("line %d is %d octets", i+1, len(line)))
		}
	}

	required := []ical.ComponentProperty{ical.ComponentPropertyUniqueId, ical.ComponentPropertyDtStart, ical.ComponentPropertyDtstamp}
	seen := make(map[string]int)
	events := cal.Events()
	for i, ev := range events {
		for _, prop := range required {
			if p := ev.GetProperty(prop); p == nil || strings.TrimSpace(p.Value) == "" {
				problems = append(problems, fmt.Sprintf("event %d: missing %s", i, prop))
			}
		}
		if uid := ev.GetProperty(ical.ComponentPropertyUniqueId); uid != nil && uid.Value != "" {
			if first, dup := seen[uid.Value]; dup {
				problems = append(problems, fmt.Sprintf("event %d: UID %s already used by event %d", i, uid.Value, first))
			} else {
				seen[uid.Value] = i
			}
		}
	}
	return len(events), problems, nil
}

func printReport(rep report) {
	status := "OK"
	if !rep.ok() {
		status = "FAIL"
	}
	fmt.Printf("[%s] %s\n", status, rep.Source)
	if rep.Status != 0 {
		fmt.Printf("  Status: %d (%s)\n", rep.Status, rep.Duration)
	}
	if rep.Error != nil {
		fmt.Printf("  Error: %v\n", rep.Error)
		return
	}
	fmt.Printf("  Events: %d\n", rep.Events)
	for _, p := range rep.Problems {
		fmt.Printf("  - %s\n", p)
	}
}
