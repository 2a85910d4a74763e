package models

import "time"

const (
	PointsPerWin  = 3
	PointsPerDraw = 1
	PointsPerLoss = 0
)

// LeagueStanding is one team's cumulative row within a phase and optional group.
type LeagueStanding struct {
	ID             int       `json:"id" db:"id"`
	PhaseID        int       `json:"phase_id" db:"phase_id"`
	TeamID         int       `json:"team_id" db:"team_id"`
	GroupID        *int      `json:"group_id,omitempty" db:"group_id"`
	Position       *int      `json:"position,omitempty" db:"position"` // Nullable until recalculated
	Played         int       `json:"played" db:"played"`
	Wins           int       `json:"wins" db:"wins"`
	Draws          int       `json:"draws" db:"draws"`
	Losses         int       `json:"losses" db:"losses"`
	GoalsFor       int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int       `json:"goals_against" db:"goals_against"`
	GoalDifference int       `json:"goal_difference" db:"goal_difference"`
	Points         int       `json:"points" db:"points"`
	WinsHome       int       `json:"wins_home" db:"wins_home"`
	WinsAway       int       `json:"wins_away" db:"wins_away"`
	GoalsHome      int       `json:"goals_home" db:"goals_home"`
	GoalsAway      int       `json:"goals_away" db:"goals_away"`
	YellowCards    int       `json:"yellow_cards" db:"yellow_cards"`
	RedCards       int       `json:"red_cards" db:"red_cards"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// StandingDelta is an additive change applied to a standing row.
// Every field is added to the stored value, never assigned.
type StandingDelta struct {
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	WinsHome       int
	WinsAway       int
	GoalsHome      int
	GoalsAway      int
	YellowCards    int
	RedCards       int
}

// Apply adds the delta to an in-memory row.
func (d StandingDelta) Apply(s *LeagueStanding) {
	s.Played += d.Played
	s.Wins += d.Wins
	s.Draws += d.Draws
	s.Losses += d.Losses
	s.GoalsFor += d.GoalsFor
	s.GoalsAgainst += d.GoalsAgainst
	s.GoalDifference += d.GoalDifference
	s.Points += d.Points
	s.WinsHome += d.WinsHome
	s.WinsAway += d.WinsAway
	s.GoalsHome += d.GoalsHome
	s.GoalsAway += d.GoalsAway
	s.YellowCards += d.YellowCards
	s.RedCards += d.RedCards
}
