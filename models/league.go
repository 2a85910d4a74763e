package models

import "time"

// League is a concrete running competition.
type League struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Slug      string     `json:"slug" db:"slug"`
	IsPublic  bool       `json:"is_public" db:"is_public"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	FormatID  *int       `json:"format_id,omitempty" db:"format_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	Format *LeagueFormat `json:"format,omitempty" db:"-"`
	Phases []LeaguePhase `json:"phases,omitempty" db:"-"`
}

type PhaseStatus string

const (
	PhaseStatusNotStarted PhaseStatus = "NOT_STARTED"
	PhaseStatusInProgress PhaseStatus = "IN_PROGRESS"
	PhaseStatusFinished   PhaseStatus = "FINISHED"
)

func (s PhaseStatus) Valid() bool {
	switch s {
	case PhaseStatusNotStarted, PhaseStatusInProgress, PhaseStatusFinished:
		return true
	}
	return false
}

// LeaguePhase is one PhaseConfig instantiated inside a League.
type LeaguePhase struct {
	ID            int         `json:"id" db:"id"`
	LeagueID      int         `json:"league_id" db:"league_id"`
	Name          string      `json:"name" db:"name"`
	Order         int         `json:"order" db:"phase_order"`
	Type          PhaseType   `json:"type" db:"type"`
	Status        PhaseStatus `json:"status" db:"status"`
	StartDate     *time.Time  `json:"start_date,omitempty" db:"start_date"`
	EndDate       *time.Time  `json:"end_date,omitempty" db:"end_date"`
	HasHomeAway   bool        `json:"has_home_away" db:"has_home_away"`
	HasExtraTime  bool        `json:"has_extra_time" db:"has_extra_time"`
	HasPenalties  bool        `json:"has_penalties" db:"has_penalties"`
	HasAwayGoal   bool        `json:"has_away_goal" db:"has_away_goal"`
	PhaseConfigID *int        `json:"phase_config_id,omitempty" db:"phase_config_id"`
}

// LeagueGroup is a named subdivision of a phase, e.g. "Group A".
type LeagueGroup struct {
	ID      int    `json:"id" db:"id"`
	PhaseID int    `json:"phase_id" db:"phase_id"`
	Name    string `json:"name" db:"name"`
	TeamIDs []int  `json:"team_ids" db:"-"`
}

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ShortName *string   `json:"short_name,omitempty" db:"short_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
