package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
)

const exportContentType = "application/json"

type ExportService interface {
	// ExportPhaseStandings uploads the current table of a phase (or one of
	// its groups) as a JSON document.
	ExportPhaseStandings(ctx context.Context, phaseID int, groupID *int) (*StandingsExport, error)
}

// StandingsSnapshot is the uploaded document.
type StandingsSnapshot struct {
	LeagueID    int                      `json:"league_id"`
	PhaseID     int                      `json:"phase_id"`
	PhaseName   string                   `json:"phase_name"`
	GroupID     *int                     `json:"group_id,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
	Standings   []*models.LeagueStanding `json:"standings"`
}

type StandingsExport struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ETag        string    `json:"etag,omitempty"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

type exportService struct {
	standingService StandingService
	phaseRepo       repositories.PhaseRepository
	uploader        storage.Uploader
	clock           clock.Clock
	logger          *slog.Logger
}

func NewExportService(
	standingService StandingService,
	phaseRepo repositories.PhaseRepository,
	uploader storage.Uploader,
	clock clock.Clock,
	logger *slog.Logger,
) ExportService {
	return &exportService{
		standingService: standingService,
		phaseRepo:       phaseRepo,
		uploader:        uploader,
		clock:           clock,
		logger:          logger,
	}
}

func exportKey(leagueID, phaseID int, groupID *int) string {
	if groupID != nil {
		return fmt.Sprintf("standings/league-%d/phase-%d/group-%d/%s.json", leagueID, phaseID, *groupID, uuid.NewString())
	}
	return fmt.Sprintf("standings/league-%d/phase-%d/%s.json", leagueID, phaseID, uuid.NewString())
}

func (s *exportService) ExportPhaseStandings(ctx context.Context, phaseID int, groupID *int) (*StandingsExport, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	standings, err := s.standingService.GetStandingsByPhase(ctx, phaseID, groupID)
	if err != nil {
		return nil, err
	}
	phase, err := s.phaseRepo.GetByID(ctx, nil, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get phase %d for export: %w", phaseID, err)
	}

	snapshot := StandingsSnapshot{
		LeagueID:    phase.LeagueID,
		PhaseID:     phase.ID,
		PhaseName:   phase.Name,
		GroupID:     groupID,
		GeneratedAt: s.clock.Now().UTC(),
		Standings:   standings,
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings snapshot: %w", err)
	}

	key := exportKey(phase.LeagueID, phase.ID, groupID)
	result, err := s.uploader.Upload(ctx, key, exportContentType, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload standings snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "Standings exported",
		slog.Int("phase_id", phaseID), slog.String("key", result.Key), slog.Int("rows", len(standings)))

	return &StandingsExport{
		Key:         result.Key,
		URL:         result.URL,
		ETag:        result.ETag,
		Rows:        len(standings),
		GeneratedAt: snapshot.GeneratedAt,
	}, nil
}
