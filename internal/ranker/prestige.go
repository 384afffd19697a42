package ranker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/store"
)

// PrestigeResult is the state after a successful prestige.
type PrestigeResult struct {
	PrestigeCount int    `json:"prestige_count"`
	Level         int    `json:"level"`
	TierName      string `json:"tier_name"`
	Stars         string `json:"stars"`
}

// Prestige starts a new level cycle when total XP has reached the next
// threshold. Otherwise it returns ErrCannotPrestige and changes nothing.
func (s *Service) Prestige(_ context.Context) (*PrestigeResult, error) {
	var res *PrestigeResult
	err := s.db.WithTx(func(tx *store.Tx) error {
		kv, err := tx.AllProfile()
		if err != nil {
			return fmt.Errorf("reading profile: %w", err)
		}
		p := decodeProfile(kv)
		if !engine.CanPrestige(p.TotalXP, p.PrestigeCount) {
			return ErrCannotPrestige
		}

		count := p.PrestigeCount + 1
		lp := engine.Progress(p.TotalXP, count)
		if err := tx.SetProfileValues(map[string]string{
			keyPrestigeCount: strconv.Itoa(count),
			keyLevel:         strconv.Itoa(lp.Level),
			keyTierName:      lp.Tier.Name,
			keyTierColor:     lp.Tier.Color,
		}); err != nil {
			return err
		}
		res = &PrestigeResult{
			PrestigeCount: count,
			Level:         lp.Level,
			TierName:      lp.Tier.Name,
			Stars:         engine.PrestigeStars(count),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Logger.Info("prestiged", "count", res.PrestigeCount)
	return res, s.rebuild()
}
