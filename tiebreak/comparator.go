// Package tiebreak orders standing rows under an ordered list of criteria.
// Everything here is pure: no persistence, no clock.
package tiebreak

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrNoCriteria       = errors.New("at least one tiebreak criterion is required")
	ErrUnknownCriterion = errors.New("unknown tiebreak criterion")
)

// DefaultCriteria is the simplified ordering used for display and plain recalculation.
var DefaultCriteria = []models.TiebreakCriterion{
	models.CriterionPoints,
	models.CriterionGoalDifference,
	models.CriterionGoalsFor,
}

// ValidateCriteria checks the list is non-empty and every entry is known.
func ValidateCriteria(criteria []models.TiebreakCriterion) error {
	if len(criteria) == 0 {
		return ErrNoCriteria
	}
	for _, c := range criteria {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCriterion, c)
		}
	}
	return nil
}

// Compare returns a negative number when a ranks above b, positive when b ranks
// above a and zero when every criterion ties. Head-to-head criteria look only
// at the meetings of these two teams; use Sort to rank a larger tied group.
func Compare(a, b *models.LeagueStanding, criteria []models.TiebreakCriterion, h2h HeadToHead) int {
	var table map[int]HeadToHeadRecord
	for _, c := range criteria {
		if isHeadToHead(c) {
			if table == nil {
				table = miniTable([]*models.LeagueStanding{a, b}, h2h)
			}
			if d := compareRecords(c, table[a.TeamID], table[b.TeamID]); d != 0 {
				return d
			}
			continue
		}
		if d := compareBy(c, a, b); d != 0 {
			return d
		}
	}
	return 0
}

func isHeadToHead(c models.TiebreakCriterion) bool {
	switch c {
	case models.CriterionHeadToHeadPoints,
		models.CriterionHeadToHeadGoalDifference,
		models.CriterionHeadToHeadGoalsAway:
		return true
	}
	return false
}

func compareBy(c models.TiebreakCriterion, a, b *models.LeagueStanding) int {
	switch c {
	case models.CriterionPoints:
		return desc(a.Points, b.Points)
	case models.CriterionWins:
		return desc(a.Wins, b.Wins)
	case models.CriterionDraws:
		return desc(a.Draws, b.Draws)
	case models.CriterionGoalDifference:
		return desc(a.GoalDifference, b.GoalDifference)
	case models.CriterionGoalsFor:
		return desc(a.GoalsFor, b.GoalsFor)
	case models.CriterionGoalsAgainst:
		return asc(a.GoalsAgainst, b.GoalsAgainst)
	case models.CriterionAwayGoals:
		return desc(a.GoalsAway, b.GoalsAway)
	case models.CriterionHomeGoals:
		return desc(a.GoalsHome, b.GoalsHome)
	case models.CriterionWinsAway:
		return desc(a.WinsAway, b.WinsAway)
	case models.CriterionWinsHome:
		return desc(a.WinsHome, b.WinsHome)
	case models.CriterionRedCards:
		return asc(a.RedCards, b.RedCards)
	case models.CriterionYellowCards:
		return asc(a.YellowCards, b.YellowCards)
	case models.CriterionFairPlay:
		return asc(fairPlayPoints(a), fairPlayPoints(b))
	default:
		// DRAW (lots) and anything unrecognised fall through.
		return 0
	}
}

// miniTable totals, for every team in rows, its results against the other
// teams in rows only. Teams with no such meeting get a zero record.
func miniTable(rows []*models.LeagueStanding, h2h HeadToHead) map[int]HeadToHeadRecord {
	table := make(map[int]HeadToHeadRecord, len(rows))
	for _, row := range rows {
		var total HeadToHeadRecord
		if h2h != nil {
			for _, other := range rows {
				if other.TeamID == row.TeamID {
					continue
				}
				rec, ok := h2h.Between(row.TeamID, other.TeamID)
				if !ok {
					continue
				}
				total.Played += rec.Played
				total.Points += rec.Points
				total.GoalsFor += rec.GoalsFor
				total.GoalsAgainst += rec.GoalsAgainst
				total.AwayGoals += rec.AwayGoals
			}
		}
		table[row.TeamID] = total
	}
	return table
}

func compareRecords(c models.TiebreakCriterion, a, b HeadToHeadRecord) int {
	switch c {
	case models.CriterionHeadToHeadPoints:
		return desc(a.Points, b.Points)
	case models.CriterionHeadToHeadGoalDifference:
		return desc(a.GoalsFor-a.GoalsAgainst, b.GoalsFor-b.GoalsAgainst)
	case models.CriterionHeadToHeadGoalsAway:
		return desc(a.AwayGoals, b.AwayGoals)
	}
	return 0
}

// fairPlayPoints weighs a red card as three yellows; fewer is better.
func fairPlayPoints(s *models.LeagueStanding) int {
	return s.YellowCards + 3*s.RedCards
}

func desc(a, b int) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func asc(a, b int) int {
	return -desc(a, b)
}

// Sort orders rows in place, one criterion at a time. Each criterion only
// reorders rows that tied on every earlier one; a head-to-head criterion
// ranks such a tied group by a table of the matches among its own teams.
// Rows that tie on every criterion keep their arrival order.
func Sort(rows []*models.LeagueStanding, criteria []models.TiebreakCriterion, h2h HeadToHead) {
	if len(rows) < 2 || len(criteria) == 0 {
		return
	}
	c, rest := criteria[0], criteria[1:]

	cmp := func(a, b *models.LeagueStanding) int { return compareBy(c, a, b) }
	if isHeadToHead(c) {
		table := miniTable(rows, h2h)
		cmp = func(a, b *models.LeagueStanding) int {
			return compareRecords(c, table[a.TeamID], table[b.TeamID])
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return cmp(rows[i], rows[j]) < 0
	})

	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || cmp(rows[start], rows[i]) != 0 {
			Sort(rows[start:i], rest, h2h)
			start = i
		}
	}
}

// Rank sorts a copy of rows and returns the 1-based position of every row keyed
// by standing ID, together with the sorted slice.
func Rank(rows []*models.LeagueStanding, criteria []models.TiebreakCriterion, h2h HeadToHead) ([]*models.LeagueStanding, map[int]int) {
	sorted := make([]*models.LeagueStanding, len(rows))
	copy(sorted, rows)
	Sort(sorted, criteria, h2h)

	positions := make(map[int]int, len(sorted))
	for i, row := range sorted {
		positions[row.ID] = i + 1
	}
	return sorted, positions
}
