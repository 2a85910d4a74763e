package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/league-system/models"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(v int) *int {
	return &v
}

// normalizeSlug trims and lower-cases a slug; an empty result means missing.
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// checkSequentialOrders reports whether orders, in any arrival order, are
// exactly 1..len(orders).
func checkSequentialOrders(orders []int) error {
	sorted := append([]int(nil), orders...)
	sort.Ints(sorted)
	for i, order := range sorted {
		if order != i+1 {
			return fmt.Errorf("expected order %d, got %d", i+1, order)
		}
	}
	return nil
}

func phaseIDs(phases []models.LeaguePhase) []int {
	ids := make([]int, 0, len(phases))
	for _, p := range phases {
		ids = append(ids, p.ID)
	}
	return ids
}

func sortPhaseConfigs(phases []models.PhaseConfig) {
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Order < phases[j].Order })
}

func sortTiebreakRules(rules []models.TiebreakRuleConfig) {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Order < rules[j].Order })
}
