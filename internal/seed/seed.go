// Package seed loads the reference calendar (vacation groups, counties, national events)
// from YAML and writes it idempotently.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
)

// eventNamespace derives stable event IDs so re-seeding overwrites instead of duplicating.
var eventNamespace = uuid.MustParse("6f1c1f2e-8a0b-4c55-9d4e-2b7f3a9c0e11")

// File is the seed document.
type File struct {
	SchoolYear string   `yaml:"school_year"`
	Admin      Admin    `yaml:"admin"`
	Settings   Settings `yaml:"settings"`
	Groups     []Group  `yaml:"groups"`
	Events     []Event  `yaml:"events"`
}

// Admin is the bootstrap administrator.
type Admin struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Settings are written only when no settings row exists yet.
type Settings struct {
	CalendarName string `yaml:"calendar_name"`
	AdsEnabled   bool   `yaml:"ads_enabled"`
}

// Group is a vacation group with its counties and group-specific periods.
type Group struct {
	Name      string   `yaml:"name"`
	Color     string   `yaml:"color"`
	Vacations []Period `yaml:"vacations"`
	Counties  []County `yaml:"counties"`
}

type Period struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type County struct {
	Name       string `yaml:"name"`
	Slug       string `yaml:"slug"`
	Capital    string `yaml:"capital"`
	Population int    `yaml:"population"`
}

// Event is a national calendar entry.
type Event struct {
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Description string `yaml:"description"`
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks dates, types and slug uniqueness.
func (f *File) Validate() error {
	if strings.TrimSpace(f.SchoolYear) == "" {
		return errors.New("seed: school_year is required")
	}
	slugs := make(map[string]string)
	for _, g := range f.Groups {
		if g.Name == "" {
			return errors.New("seed: group without name")
		}
		for _, p := range g.Vacations {
			if !models.VacationType(p.Type).Valid() {
				return fmt.Errorf("seed: group %s: unknown vacation type %q", g.Name, p.Type)
			}
			if p.End == "" {
				return fmt.Errorf("seed: group %s: %s: end is required", g.Name, p.Name)
			}
			if _, _, err := parseRange(p.Start, p.End); err != nil {
				return fmt.Errorf("seed: group %s: %s: %w", g.Name, p.Name, err)
			}
		}
		for _, c := range g.Counties {
			if c.Slug == "" || c.Name == "" {
				return fmt.Errorf("seed: group %s: county needs name and slug", g.Name)
			}
			if other, dup := slugs[c.Slug]; dup {
				return fmt.Errorf("seed: county %s listed in %s and %s", c.Slug, other, g.Name)
			}
			slugs[c.Slug] = g.Name
		}
	}
	for _, e := range f.Events {
		if !models.EventType(e.Type).Valid() {
			return fmt.Errorf("seed: event %q: unknown type %q", e.Title, e.Type)
		}
		if _, _, err := parseRange(e.Start, e.End); err != nil {
			return fmt.Errorf("seed: event %q: %w", e.Title, err)
		}
	}
	return nil
}

// CountyCount is the number of counties across all groups.
func (f *File) CountyCount() int {
	return lo.SumBy(f.Groups, func(g Group) int { return len(g.Counties) })
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type groupStore interface {
	UpsertGroup(ctx context.Context, group *models.VacationGroup) error
	DeletePeriodsByYear(ctx context.Context, groupID, schoolYear string) error
	CreatePeriod(ctx context.Context, period *models.VacationPeriod) error
}

type countyStore interface {
	Upsert(ctx context.Context, county *models.County) error
}

type eventStore interface {
	Upsert(ctx context.Context, event *models.Event) error
}

type settingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Upsert(ctx context.Context, settings *models.Settings) error
}

// Stores are the repositories the seeder writes through.
type Stores struct {
	Users    userStore
	Groups   groupStore
	Counties countyStore
	Events   eventStore
	Settings settingsStore
}

// Result counts what was written.
type Result struct {
	AdminCreated    bool
	SettingsCreated bool
	Groups          int
	Periods         int
	Counties        int
	Events          int
}

// Seeder applies a seed File.
type Seeder struct {
	stores Stores
	cost   int
	logger *zap.Logger
}

// NewSeeder builds a seeder. cost is the bcrypt cost for the admin password.
func NewSeeder(stores Stores, cost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Seeder{stores: stores, cost: cost, logger: logger}
}

// Apply writes f. An existing admin or settings row is left untouched. Group periods of the
// seeded school year are replaced.
func (s *Seeder) Apply(ctx context.Context, f *File, adminPassword string) (*Result, error) {
	res := &Result{}

	if f.Admin.Email != "" {
		created, err := s.ensureAdmin(ctx, f.Admin, adminPassword)
		if err != nil {
			return res, err
		}
		res.AdminCreated = created
	}

	created, err := s.ensureSettings(ctx, f)
	if err != nil {
		return res, err
	}
	res.SettingsCreated = created

	for _, g := range f.Groups {
		group := &models.VacationGroup{Name: g.Name, Color: g.Color}
		if err := s.stores.Groups.UpsertGroup(ctx, group); err != nil {
			return res, err
		}
		res.Groups++

		if err := s.stores.Groups.DeletePeriodsByYear(ctx, group.ID, f.SchoolYear); err != nil {
			return res, err
		}
		for _, p := range g.Vacations {
			start, end, _ := parseRange(p.Start, p.End)
			period := &models.VacationPeriod{
				GroupID:    group.ID,
				Name:       p.Name,
				Type:       models.VacationType(p.Type),
				StartDate:  start,
				EndDate:    *end,
				SchoolYear: f.SchoolYear,
			}
			if err := s.stores.Groups.CreatePeriod(ctx, period); err != nil {
				return res, err
			}
			res.Periods++
		}

		for _, c := range g.Counties {
			if err := s.stores.Counties.Upsert(ctx, countyModel(c, group.ID, f.SchoolYear)); err != nil {
				return res, fmt.Errorf("county %s: %w", c.Slug, err)
			}
			res.Counties++
		}
		s.logger.Info("group seeded", zap.String("group", g.Name), zap.Int("counties", len(g.Counties)))
	}

	for _, e := range f.Events {
		if err := s.stores.Events.Upsert(ctx, eventModel(e, f.SchoolYear)); err != nil {
			return res, fmt.Errorf("event %q: %w", e.Title, err)
		}
		res.Events++
	}
	return res, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, admin Admin, password string) (bool, error) {
	existing, err := s.stores.Users.FindByEmail(ctx, admin.Email)
	if err == nil && existing != nil {
		return false, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if password == "" {
		password = admin.Password
	}
	if password == "" {
		return false, errors.New("seed: admin password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	user := &models.User{
		Email:        admin.Email,
		Name:         admin.Name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.stores.Users.Upsert(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) ensureSettings(ctx context.Context, f *File) (bool, error) {
	if _, err := s.stores.Settings.Get(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	name := f.Settings.CalendarName
	if name == "" {
		name = "Calendar Școlar " + f.SchoolYear
	}
	settings := &models.Settings{CalendarName: name, SchoolYear: f.SchoolYear, AdsEnabled: f.Settings.AdsEnabled}
	if err := s.stores.Settings.Upsert(ctx, settings); err != nil {
		return false, err
	}
	return true, nil
}

func countyModel(c County, groupID, schoolYear string) *models.County {
	county := &models.County{
		Name:            c.Name,
		Slug:            c.Slug,
		GroupID:         groupID,
		Active:          true,
		MetaTitle:       lo.ToPtr(fmt.Sprintf("Calendar Școlar %s %s | Vacanțe și Zile Libere", c.Name, schoolYear)),
		MetaDescription: lo.ToPtr(metaDescription(c, schoolYear)),
	}
	if c.Capital != "" {
		county.CapitalCity = lo.ToPtr(c.Capital)
	}
	if c.Population > 0 {
		county.Population = lo.ToPtr(c.Population)
	}
	return county
}

func metaDescription(c County, schoolYear string) string {
	where := c.Name
	if c.Capital != "" {
		where = fmt.Sprintf("%s (%s)", c.Name, c.Capital)
	}
	return fmt.Sprintf("Calendar școlar complet pentru județul %s. Vezi toate vacanțele, zilele libere și structura anului școlar %s.", where, schoolYear)
}

func eventModel(e Event, schoolYear string) *models.Event {
	start, end, _ := parseRange(e.Start, e.End)
	event := &models.Event{
		ID:        EventID(schoolYear, e.Title, start),
		Title:     e.Title,
		Type:      models.EventType(e.Type),
		StartDate: start,
		EndDate:   end,
		Active:    true,
	}
	if e.Description != "" {
		event.Description = lo.ToPtr(e.Description)
	}
	return event
}

// EventID is the stable identifier of a seeded event.
func EventID(schoolYear, title string, start time.Time) string {
	key := schoolYear + "|" + title + "|" + start.Format(time.DateOnly)
	return uuid.NewSHA1(eventNamespace, []byte(key)).String()
}

// parseRange parses a DateOnly start and optional end. A missing end returns nil.
func parseRange(startRaw, endRaw string) (time.Time, *time.Time, error) {
	start, err := time.Parse(time.DateOnly, startRaw)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid start %q", startRaw)
	}
	if endRaw == "" {
		return start, nil, nil
	}
	end, err := time.Parse(time.DateOnly, endRaw)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid end %q", endRaw)
	}
	if end.Before(start) {
		return time.Time{}, nil, fmt.Errorf("end %s precedes start %s", endRaw, startRaw)
	}
	return start, &end, nil
}
