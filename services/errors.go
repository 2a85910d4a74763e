package services

import (
	"errors"
	"fmt"
)

// Error classes. Every service error wraps exactly one of them, so callers
// classify with errors.Is(err, ErrNotFound) and so on.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
)

func notFound(what string) error { return fmt.Errorf("%w: %s", ErrNotFound, what) }
func invalid(what string) error { return fmt.Errorf("%w: %s", ErrValidationFailed, what) }
func conflicting(what string) error { return fmt.Errorf("%w: %s", ErrConflict, what) }

var (
	// Not found
	ErrFormatNotFound         = notFound("format not found")
	ErrPhaseConfigNotFound    = notFound("phase config not found")
	ErrLeagueNotFound         = notFound("league not found")
	ErrPhaseNotFound          = notFound("phase not found")
	ErrGroupNotFound          = notFound("group not found")
	ErrTeamNotFound           = notFound("team not found")
	ErrStandingNotFound       = notFound("standing not found")
	ErrMatchNotFound          = notFound("match not found")
	ErrDisciplineRuleNotFound = notFound("discipline rules not found for league")
	ErrInviteNotFound         = notFound("invite not found")

	// Validation
	ErrFormatNameRequired     = invalid("format name is required")
	ErrFormatSlugRequired     = invalid("format slug is required")
	ErrInvalidCompetitionType = invalid("invalid competition type")
	ErrInvalidPhaseType       = invalid("invalid phase type")
	ErrInvalidPhaseOrder      = invalid("phase orders must be contiguous starting at 1")
	ErrGroupStageIncomplete   = invalid("group stage requires groups count and teams per group")
	ErrInvalidTiebreakRules   = invalid("invalid tiebreak rules")
	ErrLeagueNameRequired     = invalid("league name is required")
	ErrLeagueSlugRequired     = invalid("league slug is required")
	ErrInvalidDateRange       = invalid("end date must be after start date")
	ErrInvalidPhaseStatus     = invalid("invalid phase status")
	ErrGroupNameRequired      = invalid("group name is required")
	ErrInvalidScore           = invalid("scores must be non-negative")
	ErrSameTeam               = invalid("home and away team must differ")
	ErrMatchPhaseMismatch     = invalid("match does not belong to phase")
	ErrMatchTeamsMismatch     = invalid("match teams do not match the result")
	ErrInvalidStandingValue   = invalid("standing counters must be non-negative")
	ErrInvalidDisciplineValue = invalid("discipline thresholds and games must be at least 1")
	ErrInvalidInviteTTL       = invalid("invite lifetime must be positive")
	ErrInviteExpired          = invalid("invite has expired")

	// Conflicts
	ErrFormatSlugConflict     = conflicting("format slug already exists")
	ErrFormatInUse            = conflicting("format cannot be deleted as it is currently in use")
	ErrLeagueAlreadyHasFormat = conflicting("league already has a format or phases")
	ErrLeagueSlugConflict     = conflicting("league slug already exists")
	ErrTeamAlreadyInLeague    = conflicting("team is already linked to the league")
	ErrGroupNameConflict      = conflicting("phase already has a group with this name")
	ErrMatchAlreadyProcessed  = conflicting("match result was already applied to standings")
	ErrDisciplineRuleExists   = conflicting("discipline rules already exist for league")
	ErrInviteAlreadyAccepted  = conflicting("invite was already accepted")

	// ErrExportDisabled is returned when no object storage is configured.
	ErrExportDisabled = errors.New("standings export is not configured")
)

// FormatInUseError reports how many leagues still reference a format.
type FormatInUseError struct {
	FormatID int
	Count    int
}

func (e *FormatInUseError) Error() string {
	return fmt.Sprintf("format %d is used by %d league(s)", e.FormatID, e.Count)
}

func (e *FormatInUseError) Unwrap() error {
	return ErrFormatInUse
}
