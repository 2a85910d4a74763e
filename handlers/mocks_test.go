package handlers

import (
	"context"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
	"github.com/stretchr/testify/mock"
)

// ptrOrNil returns nil when the mocked value is an untyped nil.
func ptrOrNil[T any](v interface{}) *T {
	if v == nil {
		return nil
	}
	return v.(*T)
}

func sliceOrNil[T any](v interface{}) []T {
	if v == nil {
		return nil
	}
	return v.([]T)
}

type mockFormatService struct {
	mock.Mock
}

func (m *mockFormatService) CreateFormat(ctx context.Context, input services.CreateFormatInput) (*models.LeagueFormat, error) {
	args := m.Called(ctx, input)
	return ptrOrNil[models.LeagueFormat](args.Get(0)), args.Error(1)
}

func (m *mockFormatService) GetFormatByID(ctx context.Context, id int) (*models.LeagueFormat, error) {
	args := m.Called(ctx, id)
	return ptrOrNil[models.LeagueFormat](args.Get(0)), args.Error(1)
}

func (m *mockFormatService) GetFormatBySlug(ctx context.Context, slug string) (*models.LeagueFormat, error) {
	args := m.Called(ctx, slug)
	return ptrOrNil[models.LeagueFormat](args.Get(0)), args.Error(1)
}

func (m *mockFormatService) ListFormats(ctx context.Context, templatesOnly bool) ([]models.LeagueFormat, error) {
	args := m.Called(ctx, templatesOnly)
	return sliceOrNil[models.LeagueFormat](args.Get(0)), args.Error(1)
}

func (m *mockFormatService) UpdateFormat(ctx context.Context, id int, input services.UpdateFormatInput) (*models.LeagueFormat, error) {
	args := m.Called(ctx, id, input)
	return ptrOrNil[models.LeagueFormat](args.Get(0)), args.Error(1)
}

func (m *mockFormatService) DeleteFormat(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFormatService) ApplyFormatToLeague(ctx context.Context, leagueID, formatID int) ([]models.LeaguePhase, error) {
	args := m.Called(ctx, leagueID, formatID)
	return sliceOrNil[models.LeaguePhase](args.Get(0)), args.Error(1)
}

type mockStandingService struct {
	mock.Mock
}

func (m *mockStandingService) CreateStandingsForPhase(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	args := m.Called(ctx, phaseID, groupID)
	return sliceOrNil[*models.LeagueStanding](args.Get(0)), args.Error(1)
}

func (m *mockStandingService) GetStandingsByPhase(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	args := m.Called(ctx, phaseID, groupID)
	return sliceOrNil[*models.LeagueStanding](args.Get(0)), args.Error(1)
}

func (m *mockStandingService) ProcessMatchResult(ctx context.Context, phaseID int, input services.MatchResultInput) (*services.ProcessedResult, error) {
	args := m.Called(ctx, phaseID, input)
	return ptrOrNil[services.ProcessedResult](args.Get(0)), args.Error(1)
}

func (m *mockStandingService) RecalculatePositions(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	args := m.Called(ctx, phaseID, groupID)
	return sliceOrNil[*models.LeagueStanding](args.Get(0)), args.Error(1)
}

func (m *mockStandingService) RecalculatePositionsWithRules(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	args := m.Called(ctx, phaseID, groupID)
	return sliceOrNil[*models.LeagueStanding](args.Get(0)), args.Error(1)
}

func (m *mockStandingService) UpdateStanding(ctx context.Context, id int, input services.UpdateStandingInput) (*models.LeagueStanding, error) {
	args := m.Called(ctx, id, input)
	return ptrOrNil[models.LeagueStanding](args.Get(0)), args.Error(1)
}

func (m *mockStandingService) DeleteStandingsByPhase(ctx context.Context, phaseID int) (int64, error) {
	args := m.Called(ctx, phaseID)
	return args.Get(0).(int64), args.Error(1)
}

type mockExportService struct {
	mock.Mock
}

func (m *mockExportService) ExportPhaseStandings(ctx context.Context, phaseID int, groupID *int) (*services.StandingsExport, error) {
	args := m.Called(ctx, phaseID, groupID)
	return ptrOrNil[services.StandingsExport](args.Get(0)), args.Error(1)
}

type mockDisciplineService struct {
	mock.Mock
}

func (m *mockDisciplineService) CreateRules(ctx context.Context, leagueID int, overrides services.RuleOverrides) (*models.DisciplineRule, error) {
	args := m.Called(ctx, leagueID, overrides)
	return ptrOrNil[models.DisciplineRule](args.Get(0)), args.Error(1)
}

func (m *mockDisciplineService) GetRulesByLeagueID(ctx context.Context, leagueID int) (*models.DisciplineRule, error) {
	args := m.Called(ctx, leagueID)
	return ptrOrNil[models.DisciplineRule](args.Get(0)), args.Error(1)
}

func (m *mockDisciplineService) UpdateRules(ctx context.Context, leagueID int, input services.UpdateRulesInput) (*models.DisciplineRule, error) {
	args := m.Called(ctx, leagueID, input)
	return ptrOrNil[models.DisciplineRule](args.Get(0)), args.Error(1)
}

func (m *mockDisciplineService) UpsertRules(ctx context.Context, leagueID int, overrides services.RuleOverrides) (*models.DisciplineRule, error) {
	args := m.Called(ctx, leagueID, overrides)
	return ptrOrNil[models.DisciplineRule](args.Get(0)), args.Error(1)
}

func (m *mockDisciplineService) DeleteRules(ctx context.Context, leagueID int) error {
	return m.Called(ctx, leagueID).Error(0)
}

func (m *mockDisciplineService) CheckPlayerSuspension(ctx context.Context, playerID, leagueID int) (*models.SuspensionStatus, error) {
	args := m.Called(ctx, playerID, leagueID)
	return ptrOrNil[models.SuspensionStatus](args.Get(0)), args.Error(1)
}

func (m *mockDisciplineService) ResetYellowCardsAfterPhase(ctx context.Context, leagueID, phaseOrder int) (int64, error) {
	args := m.Called(ctx, leagueID, phaseOrder)
	return args.Get(0).(int64), args.Error(1)
}

type mockConfigurationService struct {
	mock.Mock
}

func (m *mockConfigurationService) GetConfigurationStatus(ctx context.Context, leagueID int) (*models.ConfigurationStatus, error) {
	args := m.Called(ctx, leagueID)
	return ptrOrNil[models.ConfigurationStatus](args.Get(0)), args.Error(1)
}

type mockLeagueService struct {
	mock.Mock
}

func (m *mockLeagueService) CreateLeague(ctx context.Context, input services.CreateLeagueInput) (*models.League, error) {
	args := m.Called(ctx, input)
	return ptrOrNil[models.League](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) GetLeague(ctx context.Context, id int) (*models.League, error) {
	args := m.Called(ctx, id)
	return ptrOrNil[models.League](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) ListLeagues(ctx context.Context) ([]models.League, error) {
	args := m.Called(ctx)
	return sliceOrNil[models.League](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) CreateTeam(ctx context.Context, input services.CreateTeamInput) (*models.Team, error) {
	args := m.Called(ctx, input)
	return ptrOrNil[models.Team](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) LinkTeam(ctx context.Context, leagueID, teamID int) error {
	return m.Called(ctx, leagueID, teamID).Error(0)
}

func (m *mockLeagueService) ListTeams(ctx context.Context, leagueID int) ([]models.Team, error) {
	args := m.Called(ctx, leagueID)
	return sliceOrNil[models.Team](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) AddPlayerToTeam(ctx context.Context, teamID, playerID int) error {
	return m.Called(ctx, teamID, playerID).Error(0)
}

func (m *mockLeagueService) ListPhases(ctx context.Context, leagueID int) ([]models.LeaguePhase, error) {
	args := m.Called(ctx, leagueID)
	return sliceOrNil[models.LeaguePhase](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) UpdatePhaseStatus(ctx context.Context, phaseID int, status models.PhaseStatus) (*models.LeaguePhase, error) {
	args := m.Called(ctx, phaseID, status)
	return ptrOrNil[models.LeaguePhase](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) CreateGroup(ctx context.Context, phaseID int, input services.CreateGroupInput) (*models.LeagueGroup, error) {
	args := m.Called(ctx, phaseID, input)
	return ptrOrNil[models.LeagueGroup](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) ListGroups(ctx context.Context, phaseID int) ([]models.LeagueGroup, error) {
	args := m.Called(ctx, phaseID)
	return sliceOrNil[models.LeagueGroup](args.Get(0)), args.Error(1)
}

func (m *mockLeagueService) CreateMatch(ctx context.Context, phaseID int, input services.CreateMatchInput) (*models.Match, error) {
	args := m.Called(ctx, phaseID, input)
	return ptrOrNil[models.Match](args.Get(0)), args.Error(1)
}

type mockInviteService struct {
	mock.Mock
}

func (m *mockInviteService) CreateInvite(ctx context.Context, leagueID int, input services.CreateInviteInput) (*services.CreatedInvite, error) {
	args := m.Called(ctx, leagueID, input)
	return ptrOrNil[services.CreatedInvite](args.Get(0)), args.Error(1)
}

func (m *mockInviteService) ListLeagueInvites(ctx context.Context, leagueID int) ([]models.LeagueInvite, error) {
	args := m.Called(ctx, leagueID)
	return sliceOrNil[models.LeagueInvite](args.Get(0)), args.Error(1)
}

func (m *mockInviteService) GetInviteByToken(ctx context.Context, token string) (*models.LeagueInvite, error) {
	args := m.Called(ctx, token)
	return ptrOrNil[models.LeagueInvite](args.Get(0)), args.Error(1)
}

func (m *mockInviteService) AcceptInvite(ctx context.Context, token string, teamID, userID int) (*models.LeagueInvite, error) {
	args := m.Called(ctx, token, teamID, userID)
	return ptrOrNil[models.LeagueInvite](args.Get(0)), args.Error(1)
}

func (m *mockInviteService) DeleteInvite(ctx context.Context, inviteID int) error {
	return m.Called(ctx, inviteID).Error(0)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	m.Called(roomID, message)
}
