package models

import "time"

// CompetitionType is the overall shape of a competition format.
type CompetitionType string

const (
	CompetitionRoundRobin  CompetitionType = "ROUND_ROBIN"
	CompetitionKnockout    CompetitionType = "KNOCKOUT"
	CompetitionMixed       CompetitionType = "MIXED"
	CompetitionLeaguePhase CompetitionType = "LEAGUE_PHASE"
	CompetitionCustom      CompetitionType = "CUSTOM"
)

func (t CompetitionType) Valid() bool {
	switch t {
	case CompetitionRoundRobin, CompetitionKnockout, CompetitionMixed, CompetitionLeaguePhase, CompetitionCustom:
		return true
	}
	return false
}

// PhaseType is the kind of a single stage inside a format.
type PhaseType string

const (
	PhaseGroupStage PhaseType = "GROUP_STAGE"
	PhaseKnockout   PhaseType = "KNOCKOUT"
	PhaseLeague     PhaseType = "LEAGUE"
	PhasePlayoff    PhaseType = "PLAYOFF"
)

func (t PhaseType) Valid() bool {
	switch t {
	case PhaseGroupStage, PhaseKnockout, PhaseLeague, PhasePlayoff:
		return true
	}
	return false
}

// LeagueFormat is a reusable competition template.
type LeagueFormat struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	Type        CompetitionType `json:"type" db:"type"`
	Description *string         `json:"description,omitempty" db:"description"`
	IsTemplate  bool            `json:"is_template" db:"is_template"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// Ordered by Order, populated by the repository on reads.
	Phases []PhaseConfig `json:"phases" db:"-"`
}

// PhaseConfig is the static configuration of one stage of a format.
type PhaseConfig struct {
	ID             int       `json:"id" db:"id"`
	FormatID       int       `json:"format_id" db:"format_id"`
	Name           string    `json:"name" db:"name"`
	Order          int       `json:"order" db:"phase_order"`
	Type           PhaseType `json:"type" db:"type"`
	TeamsCount     *int      `json:"teams_count,omitempty" db:"teams_count"`
	GroupsCount    *int      `json:"groups_count,omitempty" db:"groups_count"`
	TeamsPerGroup  *int      `json:"teams_per_group,omitempty" db:"teams_per_group"`
	HasHomeAway    bool      `json:"has_home_away" db:"has_home_away"`
	HasExtraTime   bool      `json:"has_extra_time" db:"has_extra_time"`
	HasPenalties   bool      `json:"has_penalties" db:"has_penalties"`
	HasAwayGoal    bool      `json:"has_away_goal" db:"has_away_goal"`
	AdvancingTeams *int      `json:"advancing_teams,omitempty" db:"advancing_teams"`
	AdvancingFrom  *string   `json:"advancing_from,omitempty" db:"advancing_from"` // e.g. "TOP_2_EACH_GROUP"

	TiebreakRules []TiebreakRuleConfig `json:"tiebreak_rules" db:"-"`
}

// Criteria returns the configured tiebreak criteria in priority order.
func (p *PhaseConfig) Criteria() []TiebreakCriterion {
	criteria := make([]TiebreakCriterion, 0, len(p.TiebreakRules))
	for _, rule := range p.TiebreakRules {
		criteria = append(criteria, rule.Criterion)
	}
	return criteria
}

type TiebreakRuleConfig struct {
	ID            int               `json:"id" db:"id"`
	PhaseConfigID int               `json:"phase_config_id" db:"phase_config_id"`
	Order         int               `json:"order" db:"rule_order"`
	Criterion     TiebreakCriterion `json:"criterion" db:"criterion"`
}
