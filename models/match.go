package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "SCHEDULED"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusFinished   MatchStatus = "FINISHED"
	MatchStatusCanceled   MatchStatus = "CANCELED"
)

type Match struct {
	ID               int         `json:"id" db:"id"`
	LeagueID         int         `json:"league_id" db:"league_id"`
	PhaseID          int         `json:"phase_id" db:"phase_id"`
	GroupID          *int        `json:"group_id,omitempty" db:"group_id"`
	HomeTeamID       int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID       int         `json:"away_team_id" db:"away_team_id"`
	HomeScore        *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore        *int        `json:"away_score,omitempty" db:"away_score"`
	Status           MatchStatus `json:"status" db:"status"`
	StandingsApplied bool        `json:"standings_applied" db:"standings_applied"`
	MatchTime        *time.Time  `json:"match_time,omitempty" db:"match_time"`
}
