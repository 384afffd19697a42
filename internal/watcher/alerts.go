package watcher

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/output"
	"github.com/blackwell-systems/clauderank/internal/ranker"
)

// AlertsFor turns a sync result into alerts: one for a level-up, one more
// when the level-up crosses into a new tier, and one per new achievement.
func AlertsFor(res *ranker.SyncResult, now time.Time) []Alert {
	if res == nil {
		return nil
	}
	var alerts []Alert

	if res.LeveledUp() {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Level up! Level %d", res.Level),
			Message: fmt.Sprintf("Level %d -> %d (%s XP total)", res.PreviousLevel, res.Level, output.FormatNumber(res.TotalXP)),
			Time:    now,
		})
		if prev := engine.TierFromLevel(res.PreviousLevel); prev.Name != res.TierName {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   "Promoted to " + res.TierName,
				Message: fmt.Sprintf("Left %s behind at level %d", prev.Name, res.Level),
				Time:    now,
			})
		}
	}

	for _, a := range res.NewAchievements {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "Achievement unlocked: " + a.Name,
			Message: fmt.Sprintf("%s (%s)", a.Description, a.Rarity),
			Time:    now,
		})
	}
	return alerts
}
