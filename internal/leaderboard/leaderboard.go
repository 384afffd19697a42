// Package leaderboard shares rank entries between machines through a
// directory of JSON files, one per user. The directory is typically synced
// by some other tool (a shared drive, a git repo).
package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/blackwell-systems/clauderank/internal/export"
	"github.com/blackwell-systems/clauderank/internal/ranker"
)

// SchemaVersion is the entry format version this build reads and writes.
const SchemaVersion = 1

// FileSuffix ends every entry file name.
const FileSuffix = ".leaderboard.json"

// ErrNoUsername is returned by Build when no username is configured.
var ErrNoUsername = errors.New("no leaderboard username configured; run: clauderank leaderboard setup --username <name>")

// Entry is one user's published rank.
type Entry struct {
	SchemaVersion     int       `json:"schema_version" validate:"eq=1"`
	Username          string    `json:"username" validate:"required,max=39,excludesall=/\\"`
	Level             int       `json:"level" validate:"gte=1"`
	Tier              string    `json:"tier" validate:"required"`
	TierColor         string    `json:"tier_color"`
	TotalXP           int       `json:"total_xp" validate:"gte=0"`
	CurrentStreak     int       `json:"current_streak" validate:"gte=0"`
	LongestStreak     int       `json:"longest_streak" validate:"gte=0"`
	AchievementsCount int       `json:"achievements_count" validate:"gte=0"`
	PrestigeCount     int       `json:"prestige_count" validate:"gte=0"`
	LastUpdated       time.Time `json:"last_updated"`
	Rank              int       `json:"rank,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks e against the entry schema.
func Validate(e *Entry) error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid leaderboard entry: %s", strings.Join(msgs, ", "))
}

// Build creates the entry username publishes from profile p.
func Build(username string, p ranker.Profile, now time.Time) (Entry, error) {
	if strings.TrimSpace(username) == "" {
		return Entry{}, ErrNoUsername
	}
	return Entry{
		SchemaVersion:     SchemaVersion,
		Username:          username,
		Level:             p.Level,
		Tier:              p.TierName,
		TierColor:         p.TierColor,
		TotalXP:           p.TotalXP,
		CurrentStreak:     p.CurrentStreak,
		LongestStreak:     p.LongestStreak,
		AchievementsCount: p.AchievementsUnlocked,
		PrestigeCount:     p.PrestigeCount,
		LastUpdated:       now.UTC(),
	}, nil
}

// DefaultPath returns dir/<username>.leaderboard.json.
func DefaultPath(dir, username string) string {
	return filepath.Join(dir, username+FileSuffix)
}

// Write validates e and writes it to path atomically.
func Write(path string, e Entry) error {
	e.Rank = 0
	if err := Validate(&e); err != nil {
		return err
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}
	return export.WriteFileAtomic(path, append(data, '\n'))
}

// Read loads and validates one entry file.
func Read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if err := Validate(&e); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &e, nil
}

// LoadAll reads every entry file in dir. Unreadable or invalid files are
// skipped and logged at debug level. A missing directory yields no entries.
func LoadAll(dir string, log *slog.Logger) ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+FileSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var entries []Entry
	for _, path := range matches {
		e, err := Read(path)
		if err != nil {
			if log != nil {
				log.Debug("skipping leaderboard entry", "path", path, "error", err)
			}
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Rank sorts entries by total XP, then longest streak, then achievements,
// all descending, and assigns 1-based ranks. The input is not modified.
func Rank(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalXP != b.TotalXP {
			return a.TotalXP > b.TotalXP
		}
		if a.LongestStreak != b.LongestStreak {
			return a.LongestStreak > b.LongestStreak
		}
		return a.AchievementsCount > b.AchievementsCount
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
