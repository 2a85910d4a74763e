package models

import "time"

const (
	DefaultYellowCardsForSuspension = 3
	DefaultRedCardMinimumGames      = 1
	DefaultDoubleYellowGames        = 1
)

// DisciplineRule holds the suspension policy of one league.
type DisciplineRule struct {
	ID                          int       `json:"id" db:"id"`
	LeagueID                    int       `json:"league_id" db:"league_id"`
	YellowCardsForSuspension    int       `json:"yellow_cards_for_suspension" db:"yellow_cards_for_suspension"`
	YellowCardsAccumulation     bool      `json:"yellow_cards_accumulation" db:"yellow_cards_accumulation"`
	ResetYellowsAfterPhaseOrder *int      `json:"reset_yellows_after_phase_order,omitempty" db:"reset_yellows_after_phase_order"`
	RedCardMinimumGames         int       `json:"red_card_minimum_games" db:"red_card_minimum_games"`
	DoubleYellowGames           int       `json:"double_yellow_games" db:"double_yellow_games"`
	CreatedAt                   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultDisciplineRule returns a rule populated with the league defaults.
func DefaultDisciplineRule(leagueID int) DisciplineRule {
	return DisciplineRule{
		LeagueID:                 leagueID,
		YellowCardsForSuspension: DefaultYellowCardsForSuspension,
		YellowCardsAccumulation:  true,
		RedCardMinimumGames:      DefaultRedCardMinimumGames,
		DoubleYellowGames:        DefaultDoubleYellowGames,
	}
}

const (
	SuspensionReasonYellowAccumulation = "yellow-card accumulation"
	SuspensionReasonRedCard            = "red card"
)

// SuspensionStatus is the verdict of a suspension check.
type SuspensionStatus struct {
	PlayerID        int    `json:"player_id"`
	LeagueID        int    `json:"league_id"`
	IsSuspended     bool   `json:"is_suspended"`
	Reason          string `json:"reason,omitempty"`
	SuspensionGames int    `json:"suspension_games"`
	YellowCards     int    `json:"yellow_cards"`
	RedCards        int    `json:"red_cards"`
	RulesConfigured bool   `json:"rules_configured"`

	// Orders of the phases whose cards were counted.
	WindowPhaseOrders []int `json:"window_phase_orders,omitempty"`
}

// CardTotals is the sum of cards over a set of standing rows.
type CardTotals struct {
	YellowCards int
	RedCards    int
}
