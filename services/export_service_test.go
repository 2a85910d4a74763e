package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Dosada05/league-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
	body []byte
}

func (m *mockUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.StoredObject, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.body = body
	args := m.Called(ctx, key, contentType)

	var r *storage.StoredObject
	if args.Get(0) != nil {
		r = args.Get(0).(*storage.StoredObject)
	}
	return r, args.Error(1)
}

func (e *testEnv) exportService(uploader storage.Uploader) ExportService {
	return NewExportService(e.standings, memPhaseRepo{e.store}, uploader, e.clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExportPhaseStandings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.setupPhase(t, "export", nil, "A", "B")
	_, err := env.standings.ProcessMatchResult(ctx, f.phase.ID, f.result("B", 1, "A", 0))
	require.NoError(t, err)

	uploader := &mockUploader{}
	isSnapshotKey := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "standings/league-") && strings.HasSuffix(key, ".json")
	})
	uploader.On("Upload", mock.Anything, isSnapshotKey, "application/json").
		Return(&storage.StoredObject{Key: "k", URL: "https://cdn.example.com/k", ETag: "abc"}, nil).
		Once()

	export, err := env.exportService(uploader).ExportPhaseStandings(ctx, f.phase.ID, nil)
	require.NoError(t, err)
	uploader.AssertExpectations(t)

	assert.Equal(t, "https://cdn.example.com/k", export.URL)
	assert.Equal(t, "abc", export.ETag)
	assert.Equal(t, 2, export.Rows)
	assert.Equal(t, env.clock.Now().UTC(), export.GeneratedAt)

	var snapshot StandingsSnapshot
	require.NoError(t, json.Unmarshal(uploader.body, &snapshot))
	assert.Equal(t, f.league.ID, snapshot.LeagueID)
	assert.Equal(t, f.phase.ID, snapshot.PhaseID)
	require.Len(t, snapshot.Standings, 2)
	assert.Equal(t, f.teams["B"], snapshot.Standings[0].TeamID)
}

func TestExportPhaseStandings_KeyIncludesGroup(t *testing.T) {
	key := exportKey(1, 2, intPtr(3))
	assert.True(t, strings.HasPrefix(key, "standings/league-1/phase-2/group-3/"), key)
	assert.NotEqual(t, key, exportKey(1, 2, intPtr(3)), "every export gets its own object")
}

func TestExportPhaseStandings_Disabled(t *testing.T) {
	env := newTestEnv(t)
	f := env.setupPhase(t, "export-off", nil, "A", "B")

	_, err := env.exportService(nil).ExportPhaseStandings(context.Background(), f.phase.ID, nil)
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportPhaseStandings_UploadFails(t *testing.T) {
	env := newTestEnv(t)
	f := env.setupPhase(t, "export-fail", nil, "A", "B")

	uploader := &mockUploader{}
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("bucket not found"))

	_, err := env.exportService(uploader).ExportPhaseStandings(context.Background(), f.phase.ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")

	_, err = env.exportService(uploader).ExportPhaseStandings(context.Background(), 404, nil)
	assert.ErrorIs(t, err, ErrPhaseNotFound)
}
