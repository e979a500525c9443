package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type providerMock struct {
	mock.Mock
}

func (m *providerMock) records(args mock.Arguments) ([]record.Record, error) {
	var out []record.Record
	if v := args.Get(0); v != nil {
		out = v.([]record.Record)
	}
	return out, args.Error(1)
}

func (m *providerMock) FetchRosters(ctx context.Context, years []int) ([]record.Record, error) {
	return m.records(m.Called(ctx, years))
}

func (m *providerMock) FetchWeekly(ctx context.Context, years []int, columns []string) ([]record.Record, error) {
	return m.records(m.Called(ctx, years, columns))
}

func (m *providerMock) FetchSeasonal(ctx context.Context, years []int) ([]record.Record, error) {
	return m.records(m.Called(ctx, years))
}

func (m *providerMock) FetchSchedules(ctx context.Context, years []int) ([]record.Record, error) {
	return m.records(m.Called(ctx, years))
}

func (m *providerMock) FetchInjuries(ctx context.Context, season int) ([]record.Record, error) {
	return m.records(m.Called(ctx, season))
}

func (m *providerMock) FetchTeamDescriptions(ctx context.Context) ([]record.Record, error) {
	return m.records(m.Called(ctx))
}

func (m *providerMock) FetchPlayByPlay(ctx context.Context, years []int, columns []string) ([]record.Record, error) {
	return m.records(m.Called(ctx, years, columns))
}

type uploaderMock struct {
	mock.Mock
}

func (m *uploaderMock) Upload(ctx context.Context, dataType string, records []record.Record) UploadResult {
	return m.Called(ctx, dataType, records).Get(0).(UploadResult)
}

type memoryStore struct {
	files    map[string]any
	failOn   map[string]error
	writeLog []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string]any{}, failOn: map[string]error{}}
}

func (s *memoryStore) WriteRecords(name string, records []record.Record) (string, error) {
	return s.write(name, records)
}

func (s *memoryStore) WriteDocument(name string, doc any) (string, error) {
	return s.write(name, doc)
}

func (s *memoryStore) write(name string, v any) (string, error) {
	if err := s.failOn[name]; err != nil {
		return "", err
	}
	s.files[name] = v
	s.writeLog = append(s.writeLog, name)
	return "mem/" + name, nil
}

func (s *memoryStore) ReadRecords(name string) ([]record.Record, error) {
	v, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: file does not exist", name)
	}
	records, ok := v.([]record.Record)
	if !ok {
		return nil, fmt.Errorf("%s is not a record list", name)
	}
	return records, nil
}

func (s *memoryStore) Dir() string {
	return "mem"
}

func rows(n int, prefix string) []record.Record {
	out := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record.FromPairs("player_id", fmt.Sprintf("%s-%d", prefix, i)))
	}
	return out
}

func newTestPipeline(provider NFLDataProvider, store DatasetStore, uploader RecordUploader, cfg PipelineConfig) *PipelineService {
	svc := NewPipelineService(provider, store, uploader, cfg, nil)
	svc.now = func() time.Time { return time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPipelineService_FetchPlayerStats_SelectsColumnsAndWritesFile(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	store := newMemoryStore()
	svc := newTestPipeline(provider, store, nil, PipelineConfig{CurrentSeason: 2024})

	provider.
		On("FetchWeekly", mock.Anything, []int{2024}, statColumns[StatTypeRushing]).
		Return(rows(3, "rb"), nil).
		Once()

	got := svc.FetchPlayerStats(context.Background(), nil, "Rushing")
	require.NoError(t, got.Err)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "mem/rushing_stats_2024.json", got.Path)
	assert.Contains(t, store.files, "rushing_stats_2024.json")
	provider.AssertExpectations(t)
}

func TestPipelineService_FetchPlayerStats_UnknownTypeKeepsAllColumns(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	svc := newTestPipeline(provider, newMemoryStore(), nil, PipelineConfig{CurrentSeason: 2024})

	provider.
		On("FetchWeekly", mock.Anything, []int{2022, 2023}, []string(nil)).
		Return(rows(1, "k"), nil).
		Once()

	got := svc.FetchPlayerStats(context.Background(), []int{2022, 2023}, "kicking")
	require.NoError(t, got.Err)
	assert.Equal(t, "mem/kicking_stats_2022-2023.json", got.Path)
}

func TestPipelineService_FetchStepFailureWritesNothing(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	store := newMemoryStore()
	svc := newTestPipeline(provider, store, nil, PipelineConfig{CurrentSeason: 2024})

	upstream := errors.New("connection reset")
	provider.On("FetchSchedules", mock.Anything, []int{2024}).Return(nil, upstream).Once()

	got := svc.FetchSchedule(context.Background(), nil)
	require.Error(t, got.Err)
	assert.ErrorIs(t, got.Err, upstream)
	assert.True(t, got.Failed())
	assert.Empty(t, store.files)
}

func TestPipelineService_FetchInjuriesUsesCurrentSeason(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	store := newMemoryStore()
	svc := newTestPipeline(provider, store, nil, PipelineConfig{CurrentSeason: 2023})

	provider.On("FetchInjuries", mock.Anything, 2023).Return(rows(2, "inj"), nil).Once()

	got := svc.FetchInjuries(context.Background())
	require.NoError(t, got.Err)
	assert.Equal(t, "mem/injuries_2023.json", got.Path)
}

func TestPipelineService_CreateProjectionDataset(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	store := newMemoryStore()
	svc := newTestPipeline(provider, store, nil, PipelineConfig{CurrentSeason: 2024, HistoryStartSeason: 2022})
	years := []int{2022, 2023, 2024}

	provider.On("FetchWeekly", mock.Anything, years, []string(nil)).Return(rows(5, "w"), nil).Once()
	provider.On("FetchSeasonal", mock.Anything, years).Return(rows(2, "s"), nil).Once()
	provider.On("FetchPlayByPlay", mock.Anything, years, playByPlayColumns).Return(nil, nil).Once()

	got := svc.CreateProjectionDataset(context.Background(), nil)
	require.NoError(t, got.Err)
	assert.Equal(t, 5, got.Count)

	doc, ok := store.files[projectionDatasetFile].(record.Record)
	require.True(t, ok)
	assert.Equal(t, []string{"weekly_stats", "seasonal_stats", "advanced_metrics", "metadata"}, record.Keys(doc))

	pbp, _ := doc.Get("advanced_metrics")
	assert.NotNil(t, pbp, "empty play-by-play must encode as an empty list")

	meta, _ := doc.Get("metadata")
	metadata := meta.(record.Record)
	createdAt, _ := metadata.Get("created_at")
	assert.Equal(t, "2024-09-10T12:00:00Z", createdAt)
	counts, _ := metadata.Get("records_count")
	weekly, _ := counts.(record.Record).Get("weekly")
	assert.Equal(t, 5, weekly)
}

func TestPipelineService_RunFull_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	store := newMemoryStore()
	svc := newTestPipeline(provider, store, nil, PipelineConfig{CurrentSeason: 2024, HistoryStartSeason: 2024})
	current := []int{2024}

	provider.On("FetchTeamDescriptions", mock.Anything).Return(nil, errors.New("404 not found")).Once()
	provider.On("FetchRosters", mock.Anything, current).Return(rows(4, "r"), nil).Once()
	provider.On("FetchSchedules", mock.Anything, current).Return(rows(2, "g"), nil).Once()
	provider.On("FetchInjuries", mock.Anything, 2024).Return(rows(1, "i"), nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, statColumns[StatTypePassing]).Return(rows(2, "qb"), nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, statColumns[StatTypeRushing]).Return(nil, errors.New("timeout")).Once()
	provider.On("FetchWeekly", mock.Anything, current, statColumns[StatTypeReceiving]).Return(rows(3, "wr"), nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, []string(nil)).Return(rows(9, "all"), nil).Once()
	provider.On("FetchSeasonal", mock.Anything, current).Return(rows(1, "s"), nil).Once()
	provider.On("FetchPlayByPlay", mock.Anything, current, playByPlayColumns).Return(rows(1, "p"), nil).Once()

	report := svc.RunFull(context.Background())
	require.Len(t, report.Steps, 8)
	assert.Equal(t, 2, report.FailedSteps())
	assert.True(t, report.Steps[0].Failed())
	assert.Empty(t, report.Uploads)
	assert.ElementsMatch(t, []string{
		"rosters_2024.json",
		"schedule_2024.json",
		"injuries_2024.json",
		"passing_stats_2024.json",
		"receiving_stats_2024.json",
		projectionDatasetFile,
	}, store.writeLog)
	provider.AssertExpectations(t)
}

func TestPipelineService_RunFull_UploadsRostersAndStats(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	uploader := &uploaderMock{}
	svc := newTestPipeline(provider, newMemoryStore(), uploader, PipelineConfig{
		CurrentSeason:      2024,
		HistoryStartSeason: 2024,
		UploadAfterFetch:   true,
	})
	current := []int{2024}
	rosters := rows(4, "r")
	weekly := rows(3, "pw")

	provider.On("FetchTeamDescriptions", mock.Anything).Return(rows(32, "t"), nil).Once()
	provider.On("FetchRosters", mock.Anything, current).Return(rosters, nil).Once()
	provider.On("FetchSchedules", mock.Anything, current).Return(rows(2, "g"), nil).Once()
	provider.On("FetchInjuries", mock.Anything, 2024).Return(nil, nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, statColumns[StatTypePassing]).Return(weekly, nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, statColumns[StatTypeRushing]).Return(weekly, nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, statColumns[StatTypeReceiving]).Return(weekly, nil).Once()
	// Once for the projection dataset, once for the stats upload.
	provider.On("FetchWeekly", mock.Anything, current, []string(nil)).Return(weekly, nil).Twice()
	provider.On("FetchSeasonal", mock.Anything, current).Return(nil, nil).Once()
	provider.On("FetchPlayByPlay", mock.Anything, current, playByPlayColumns).Return(nil, nil).Once()

	uploader.
		On("Upload", mock.Anything, DataTypePlayers, mock.MatchedBy(func(v []record.Record) bool { return len(v) == 4 })).
		Return(UploadResult{DataType: DataTypePlayers, Success: true, FirstFailureIndex: -1}).
		Once()
	uploader.
		On("Upload", mock.Anything, DataTypeStats, mock.MatchedBy(func(v []record.Record) bool {
			return len(v) == len(weekly) && v[0] == weekly[0] && v[2] == weekly[2]
		})).
		Return(UploadResult{DataType: DataTypeStats, Success: true, FirstFailureIndex: -1}).
		Once()

	report := svc.RunFull(context.Background())
	assert.Equal(t, 0, report.FailedSteps())
	require.Len(t, report.Uploads, 2)
	uploader.AssertExpectations(t)
	uploader.AssertNumberOfCalls(t, "Upload", 2)
	provider.AssertExpectations(t)
}

func TestPipelineService_RunFull_SkipsStatsUploadWhenWeeklyFetchFails(t *testing.T) {
	t.Parallel()

	provider := &providerMock{}
	uploader := &uploaderMock{}
	svc := newTestPipeline(provider, newMemoryStore(), uploader, PipelineConfig{
		CurrentSeason:      2024,
		HistoryStartSeason: 2024,
		UploadAfterFetch:   true,
	})
	current := []int{2024}
	unavailable := errors.New("503 service unavailable")

	provider.On("FetchTeamDescriptions", mock.Anything).Return(rows(32, "t"), nil).Once()
	provider.On("FetchRosters", mock.Anything, current).Return(nil, unavailable).Once()
	provider.On("FetchSchedules", mock.Anything, current).Return(nil, nil).Once()
	provider.On("FetchInjuries", mock.Anything, 2024).Return(nil, nil).Once()
	provider.On("FetchWeekly", mock.Anything, current, mock.Anything).Return(nil, unavailable)
	provider.On("FetchSeasonal", mock.Anything, current).Return(nil, nil)
	provider.On("FetchPlayByPlay", mock.Anything, current, playByPlayColumns).Return(nil, nil)

	report := svc.RunFull(context.Background())
	assert.Empty(t, report.Uploads)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipelineService_RunSample_WritesFiles(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	svc := newTestPipeline(nil, store, nil, PipelineConfig{CurrentSeason: 2024})

	require.NoError(t, svc.RunSample(context.Background()))
	assert.Equal(t, []string{
		"teams.json",
		"rosters_2024.json",
		"passing_stats_2024.json",
		"rushing_stats_2024.json",
		"receiving_stats_2024.json",
		"projection_dataset.json",
	}, store.writeLog)

	rosters, err := store.ReadRecords("rosters_2024.json")
	require.NoError(t, err)
	require.Len(t, rosters, 7)
	id, _ := rosters[0].Get("player_id")
	assert.Equal(t, "mahomes_patrick_01", id)
	assert.Equal(t, []string{
		"player_id", "player_name", "position", "team", "jersey_number",
		"height", "weight", "years_exp", "college", "status",
	}, record.Keys(rosters[0]))

	passing, err := store.ReadRecords("passing_stats_2024.json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"player_id", "player_name", "position", "team", "week", "season",
		"completions", "attempts", "passing_yards", "passing_tds", "interceptions",
	}, record.Keys(passing[0]))

	for _, name := range []string{"rushing_stats_2024.json", "receiving_stats_2024.json"} {
		stats, err := store.ReadRecords(name)
		require.NoError(t, err)
		for _, stat := range stats {
			team, ok := stat.Get("team")
			assert.True(t, ok, name)
			assert.NotEmpty(t, team, name)
			_, ok = stat.Get("recent_team")
			assert.False(t, ok, name)
		}
	}

	teams, err := store.ReadRecords("teams.json")
	require.NoError(t, err)
	assert.Len(t, teams, 32)
}

func TestPipelineService_RunSample_AbortsOnFirstError(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	diskFull := errors.New("no space left on device")
	store.failOn["passing_stats_2024.json"] = diskFull
	svc := newTestPipeline(nil, store, nil, PipelineConfig{CurrentSeason: 2024})

	err := svc.RunSample(context.Background())
	require.ErrorIs(t, err, diskFull)
	assert.Equal(t, []string{"teams.json", "rosters_2024.json"}, store.writeLog)
}

func TestPipelineService_UploadFile(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	uploader := &uploaderMock{}
	svc := newTestPipeline(nil, store, uploader, PipelineConfig{CurrentSeason: 2024})
	store.files["rosters_2024.json"] = rows(3, "r")

	uploader.
		On("Upload", mock.Anything, DataTypePlayers, mock.Anything).
		Return(UploadResult{DataType: DataTypePlayers, Success: true, TotalRecords: 3, FirstFailureIndex: -1}).
		Once()

	got, err := svc.UploadFile(context.Background(), "players", "rosters_2024.json")
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalRecords)
}

func TestPipelineService_UploadFile_Errors(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.files["stats.json"] = rows(1, "s")
	uploader := &uploaderMock{}
	svc := newTestPipeline(nil, store, uploader, PipelineConfig{CurrentSeason: 2024})

	_, err := svc.UploadFile(context.Background(), "", "stats.json")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UploadFile(context.Background(), "stats", "missing.json")
	assert.Error(t, err)

	uploader.
		On("Upload", mock.Anything, DataTypeStats, mock.Anything).
		Return(UploadResult{DataType: DataTypeStats, FirstFailureIndex: 0, Err: errors.New("status 409")}).
		Once()
	_, err = svc.UploadFile(context.Background(), "stats", "stats.json")
	assert.ErrorIs(t, err, ErrUploadFailed)

	noUploader := newTestPipeline(nil, store, nil, PipelineConfig{CurrentSeason: 2024})
	_, err = noUploader.UploadFile(context.Background(), "stats", "stats.json")
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}
