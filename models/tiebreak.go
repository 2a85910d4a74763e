package models

// TiebreakCriterion is one comparable metric used to order standings.
type TiebreakCriterion string

const (
	CriterionPoints                   TiebreakCriterion = "POINTS"
	CriterionWins                     TiebreakCriterion = "WINS"
	CriterionDraws                    TiebreakCriterion = "DRAWS"
	CriterionGoalDifference           TiebreakCriterion = "GOAL_DIFFERENCE"
	CriterionGoalsFor                 TiebreakCriterion = "GOALS_FOR"
	CriterionGoalsAgainst             TiebreakCriterion = "GOALS_AGAINST"
	CriterionHeadToHeadPoints         TiebreakCriterion = "HEAD_TO_HEAD_POINTS"
	CriterionHeadToHeadGoalDifference TiebreakCriterion = "HEAD_TO_HEAD_GOAL_DIFFERENCE"
	CriterionHeadToHeadGoalsAway      TiebreakCriterion = "HEAD_TO_HEAD_GOALS_AWAY"
	CriterionAwayGoals                TiebreakCriterion = "AWAY_GOALS"
	CriterionHomeGoals                TiebreakCriterion = "HOME_GOALS"
	CriterionWinsAway                 TiebreakCriterion = "WINS_AWAY"
	CriterionWinsHome                 TiebreakCriterion = "WINS_HOME"
	CriterionFairPlay                 TiebreakCriterion = "FAIR_PLAY"
	CriterionRedCards                 TiebreakCriterion = "RED_CARDS"
	CriterionYellowCards              TiebreakCriterion = "YELLOW_CARDS"
	// CriterionDraw is a drawing of lots. It cannot be computed and always ties.
	CriterionDraw TiebreakCriterion = "DRAW"
)

var knownCriteria = map[TiebreakCriterion]struct{}{
	CriterionPoints:                   {},
	CriterionWins:                     {},
	CriterionDraws:                    {},
	CriterionGoalDifference:           {},
	CriterionGoalsFor:                 {},
	CriterionGoalsAgainst:             {},
	CriterionHeadToHeadPoints:         {},
	CriterionHeadToHeadGoalDifference: {},
	CriterionHeadToHeadGoalsAway:      {},
	CriterionAwayGoals:                {},
	CriterionHomeGoals:                {},
	CriterionWinsAway:                 {},
	CriterionWinsHome:                 {},
	CriterionFairPlay:                 {},
	CriterionRedCards:                 {},
	CriterionYellowCards:              {},
	CriterionDraw:                     {},
}

func (c TiebreakCriterion) Valid() bool {
	_, ok := knownCriteria[c]
	return ok
}
