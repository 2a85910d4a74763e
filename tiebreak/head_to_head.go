package tiebreak

import "github.com/Dosada05/league-system/models"

// HeadToHeadRecord aggregates what one team did against one specific opponent.
type HeadToHeadRecord struct {
	Played       int
	Points       int
	GoalsFor     int
	GoalsAgainst int
	AwayGoals    int
}

// HeadToHead looks up the record of team against opponent. ok is false when
// the two never met, in which case head-to-head criteria tie.
type HeadToHead interface {
	Between(team, opponent int) (record HeadToHeadRecord, ok bool)
}

type pairKey struct {
	team, opponent int
}

// MatchHeadToHead is a HeadToHead built from finished matches.
type MatchHeadToHead struct {
	records map[pairKey]*HeadToHeadRecord
}

// NewMatchHeadToHead indexes every finished match with a recorded score.
// Other matches are ignored.
func NewMatchHeadToHead(matches []models.Match) *MatchHeadToHead {
	h := &MatchHeadToHead{records: make(map[pairKey]*HeadToHeadRecord)}
	for _, m := range matches {
		if m.Status != models.MatchStatusFinished || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}
		home, away := *m.HomeScore, *m.AwayScore

		hr := h.record(m.HomeTeamID, m.AwayTeamID)
		ar := h.record(m.AwayTeamID, m.HomeTeamID)
		hr.Played++
		ar.Played++
		hr.GoalsFor += home
		hr.GoalsAgainst += away
		ar.GoalsFor += away
		ar.GoalsAgainst += home
		ar.AwayGoals += away

		switch {
		case home > away:
			hr.Points += models.PointsPerWin
		case home < away:
			ar.Points += models.PointsPerWin
		default:
			hr.Points += models.PointsPerDraw
			ar.Points += models.PointsPerDraw
		}
	}
	return h
}

func (h *MatchHeadToHead) record(team, opponent int) *HeadToHeadRecord {
	k := pairKey{team, opponent}
	r, ok := h.records[k]
	if !ok {
		r = &HeadToHeadRecord{}
		h.records[k] = r
	}
	return r
}

func (h *MatchHeadToHead) Between(team, opponent int) (HeadToHeadRecord, bool) {
	r, ok := h.records[pairKey{team, opponent}]
	if !ok {
		return HeadToHeadRecord{}, false
	}
	return *r, true
}
