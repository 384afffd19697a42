// Package export writes the derived files other tools read without opening
// the database: rank.json and the SVG badge. Both are rebuilt from the store
// after every write and are never read back as a source of truth.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// File names inside the data directory.
const (
	SnapshotFile = "rank.json"
	BadgeFile    = "badge.svg"
)

// Snapshot is the latest rank state in a form cheap to read.
type Snapshot struct {
	Level                int       `json:"level"`
	TierName             string    `json:"tier_name"`
	TierColor            string    `json:"tier_color"`
	PrestigeCount        int       `json:"prestige_count"`
	TotalXP              int       `json:"total_xp"`
	XPInLevel            int       `json:"xp_in_level"`
	XPForNext            int       `json:"xp_for_next"`
	CurrentStreak        int       `json:"current_streak"`
	LongestStreak        int       `json:"longest_streak"`
	FreezeCount          int       `json:"freeze_count"`
	AchievementsUnlocked int       `json:"achievements_unlocked"`
	EngagementMu         float64   `json:"er_mu"`
	EngagementTier       string    `json:"er_tier"`
	LastSync             string    `json:"last_sync,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// WriteSnapshot writes snap to dir/rank.json atomically.
func WriteSnapshot(dir string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return WriteFileAtomic(filepath.Join(dir, SnapshotFile), append(data, '\n'))
}

// ReadSnapshot reads dir/rank.json. It returns nil and no error when the
// file does not exist.
func ReadSnapshot(dir string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(dir, SnapshotFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", SnapshotFile, err)
	}
	return &snap, nil
}

// Rebuild regenerates rank.json and badge.svg in dir from snap.
func Rebuild(dir string, snap Snapshot) error {
	if err := WriteSnapshot(dir, snap); err != nil {
		return err
	}
	svg, err := BadgeSVG(snap.Level, snap.TierName, snap.TierColor, snap.PrestigeCount, snap.TotalXP)
	if err != nil {
		return err
	}
	return WriteFileAtomic(filepath.Join(dir, BadgeFile), []byte(svg))
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
