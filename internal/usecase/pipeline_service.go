package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	StatTypePassing   = "passing"
	StatTypeRushing   = "rushing"
	StatTypeReceiving = "receiving"

	StepTeams       = "teams"
	StepRosters     = "rosters"
	StepStats       = "stats"
	StepSchedule    = "schedule"
	StepInjuries    = "injuries"
	StepProjections = "projections"

	teamsFile             = "teams.json"
	projectionDatasetFile = "projection_dataset.json"
)

var statColumns = map[string][]string{
	StatTypePassing: {
		"player_id", "player_name", "position", "recent_team",
		"week", "season", "completions", "attempts",
		"passing_yards", "passing_tds", "interceptions",
		"passing_epa", "passing_first_downs",
	},
	StatTypeRushing: {
		"player_id", "player_name", "position", "recent_team",
		"week", "season", "carries", "rushing_yards",
		"rushing_tds", "rushing_epa", "rushing_first_downs",
	},
	StatTypeReceiving: {
		"player_id", "player_name", "position", "recent_team",
		"week", "season", "targets", "receptions",
		"receiving_yards", "receiving_tds", "receiving_epa",
		"receiving_first_downs",
	},
}

var playByPlayColumns = []string{
	"player_id", "passer_player_name", "rusher_player_name", "receiver_player_name",
	"week", "season", "epa", "cpoe", "air_yards", "yards_after_catch",
}

type PipelineConfig struct {
	CurrentSeason      int
	HistoryStartSeason int
	UploadAfterFetch   bool
}

// StepReport is the outcome of one fetch-then-write step. A failed step carries Err and no records.
type StepReport struct {
	Step     string
	Detail   string
	Path     string
	Count    int
	Records  []record.Record
	Document record.Record
	Err      error
}

func (r StepReport) Failed() bool {
	return r.Err != nil
}

// RunReport collects every step of a full run, in execution order.
type RunReport struct {
	Steps   []StepReport
	Uploads []UploadResult
}

func (r RunReport) FailedSteps() int {
	failed := 0
	for _, step := range r.Steps {
		if step.Failed() {
			failed++
		}
	}
	return failed
}

type PipelineService struct {
	provider NFLDataProvider
	store    DatasetStore
	uploader RecordUploader
	cfg      PipelineConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewPipelineService(
	provider NFLDataProvider,
	store DatasetStore,
	uploader RecordUploader,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CurrentSeason <= 0 {
		cfg.CurrentSeason = time.Now().Year()
	}
	if cfg.HistoryStartSeason <= 0 || cfg.HistoryStartSeason > cfg.CurrentSeason {
		cfg.HistoryStartSeason = cfg.CurrentSeason
	}

	return &PipelineService{
		provider: provider,
		store:    store,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *PipelineService) FetchTeams(ctx context.Context) StepReport {
	return s.runRecordsStep(ctx, StepTeams, "", teamsFile, func(ctx context.Context) ([]record.Record, error) {
		return s.provider.FetchTeamDescriptions(ctx)
	})
}

func (s *PipelineService) FetchRosters(ctx context.Context, years []int) StepReport {
	years = s.seasonsOrCurrent(years)
	return s.runRecordsStep(ctx, StepRosters, "", "rosters_"+joinYears(years)+".json", func(ctx context.Context) ([]record.Record, error) {
		return s.provider.FetchRosters(ctx, years)
	})
}

// FetchPlayerStats fetches weekly stat lines. passing, rushing and receiving select a fixed column
// set; any other stat type keeps every weekly column.
func (s *PipelineService) FetchPlayerStats(ctx context.Context, years []int, statType string) StepReport {
	years = s.seasonsOrCurrent(years)
	statType = strings.ToLower(strings.TrimSpace(statType))
	if statType == "" {
		statType = StatTypePassing
	}
	columns := statColumns[statType]

	fileName := fmt.Sprintf("%s_stats_%s.json", statType, joinYears(years))
	return s.runRecordsStep(ctx, StepStats, statType, fileName, func(ctx context.Context) ([]record.Record, error) {
		return s.provider.FetchWeekly(ctx, years, columns)
	})
}

func (s *PipelineService) FetchSchedule(ctx context.Context, years []int) StepReport {
	years = s.seasonsOrCurrent(years)
	return s.runRecordsStep(ctx, StepSchedule, "", "schedule_"+joinYears(years)+".json", func(ctx context.Context) ([]record.Record, error) {
		return s.provider.FetchSchedules(ctx, years)
	})
}

func (s *PipelineService) FetchInjuries(ctx context.Context) StepReport {
	season := s.cfg.CurrentSeason
	return s.runRecordsStep(ctx, StepInjuries, "", fmt.Sprintf("injuries_%d.json", season), func(ctx context.Context) ([]record.Record, error) {
		return s.provider.FetchInjuries(ctx, season)
	})
}

// CreateProjectionDataset assembles weekly, seasonal and play-by-play history into one nested
// document. Years default to HistoryStartSeason through CurrentSeason.
func (s *PipelineService) CreateProjectionDataset(ctx context.Context, years []int) StepReport {
	if len(years) == 0 {
		years = seasonRange(s.cfg.HistoryStartSeason, s.cfg.CurrentSeason)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.CreateProjectionDataset",
		attribute.String("pipeline.seasons", joinYears(years)),
	)
	report := StepReport{Step: StepProjections}
	defer func() { endSpan(span, report.Err) }()

	s.logger.InfoContext(ctx, "creating projection dataset", "seasons", years)

	weekly, err := s.provider.FetchWeekly(ctx, years, nil)
	if err != nil {
		return s.failStep(ctx, report, crerr.Wrap(err, "fetch historical weekly performance"))
	}
	seasonal, err := s.provider.FetchSeasonal(ctx, years)
	if err != nil {
		return s.failStep(ctx, report, crerr.Wrap(err, "fetch seasonal stats"))
	}
	pbp, err := s.provider.FetchPlayByPlay(ctx, years, playByPlayColumns)
	if err != nil {
		return s.failStep(ctx, report, crerr.Wrap(err, "fetch advanced metrics"))
	}

	dataset := record.FromPairs(
		"weekly_stats", nonNil(weekly),
		"seasonal_stats", nonNil(seasonal),
		"advanced_metrics", nonNil(pbp),
		"metadata", record.FromPairs(
			"created_at", s.now().Format(time.RFC3339),
			"seasons", years,
			"records_count", record.FromPairs(
				"weekly", len(weekly),
				"seasonal", len(seasonal),
				"pbp", len(pbp),
			),
		),
	)

	path, err := s.store.WriteDocument(projectionDatasetFile, dataset)
	if err != nil {
		return s.failStep(ctx, report, crerr.Wrap(err, "save projection dataset"))
	}

	report.Path = path
	report.Count = len(weekly)
	report.Document = dataset
	s.logger.InfoContext(ctx, "created projection dataset", "weekly_records", len(weekly), "path", path)
	return report
}

// RunFull runs every fetch step for the current season. Failed steps are logged and skipped;
// the run itself never fails.
func (s *PipelineService) RunFull(ctx context.Context) RunReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RunFull")
	defer span.End()

	s.logger.InfoContext(ctx, "starting full nfl data pipeline",
		"output_dir", s.store.Dir(),
		"season", s.cfg.CurrentSeason,
	)

	current := []int{s.cfg.CurrentSeason}
	var report RunReport

	report.Steps = append(report.Steps,
		s.FetchTeams(ctx),
		s.FetchRosters(ctx, current),
		s.FetchSchedule(ctx, current),
		s.FetchInjuries(ctx),
	)
	rosterStep := report.Steps[1]

	for _, statType := range []string{StatTypePassing, StatTypeRushing, StatTypeReceiving} {
		report.Steps = append(report.Steps, s.FetchPlayerStats(ctx, current, statType))
	}

	report.Steps = append(report.Steps, s.CreateProjectionDataset(ctx, nil))

	if s.cfg.UploadAfterFetch {
		if !rosterStep.Failed() {
			report.Uploads = append(report.Uploads, s.upload(ctx, DataTypePlayers, rosterStep.Records))
		}
		if result, ok := s.uploadWeeklyStats(ctx, current); ok {
			report.Uploads = append(report.Uploads, result)
		}
	}

	failed := report.FailedSteps()
	if failed > 0 {
		s.logger.WarnContext(ctx, "nfl data pipeline completed with failed steps",
			"failed_steps", failed,
			"total_steps", len(report.Steps),
			"output_dir", s.store.Dir(),
		)
		return report
	}

	s.logger.InfoContext(ctx, "nfl data pipeline completed successfully", "output_dir", s.store.Dir())
	return report
}

// uploadWeeklyStats pushes each player-week row once with every weekly column. The per-type stat
// files are column projections of these same rows.
func (s *PipelineService) uploadWeeklyStats(ctx context.Context, years []int) (UploadResult, bool) {
	weekly, err := s.provider.FetchWeekly(ctx, years, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping weekly stats upload", "seasons", years, "error", err)
		return UploadResult{}, false
	}
	if len(weekly) == 0 {
		return UploadResult{}, false
	}
	return s.upload(ctx, DataTypeStats, weekly), true
}

// UploadFile pushes a previously written dataset file to the remote database.
func (s *PipelineService) UploadFile(ctx context.Context, dataType, fileName string) (UploadResult, error) {
	dataType = strings.TrimSpace(dataType)
	fileName = strings.TrimSpace(fileName)
	if dataType == "" || fileName == "" {
		return UploadResult{}, crerr.Wrap(ErrInvalidInput, "data type and file name are required")
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.UploadFile",
		attribute.String("upload.data_type", dataType),
		attribute.String("upload.file", fileName),
	)
	defer span.End()

	records, err := s.store.ReadRecords(fileName)
	if err != nil {
		return UploadResult{}, crerr.Wrapf(err, "read dataset %s", fileName)
	}

	result := s.upload(ctx, dataType, records)
	if !result.Success {
		if result.Skipped {
			return result, fmt.Errorf("%w: upload credentials are not configured", ErrDependencyUnavailable)
		}
		return result, crerr.WithSecondaryError(ErrUploadFailed, result.Err)
	}
	return result, nil
}

func (s *PipelineService) upload(ctx context.Context, dataType string, records []record.Record) UploadResult {
	if s.uploader == nil {
		s.logger.WarnContext(ctx, "no uploader configured, skipping database update", "data_type", dataType)
		return UploadResult{DataType: dataType, Resource: dataType, Skipped: true, TotalRecords: len(records), FirstFailureIndex: -1}
	}
	return s.uploader.Upload(ctx, dataType, records)
}

func (s *PipelineService) runRecordsStep(
	ctx context.Context,
	step string,
	detail string,
	fileName string,
	fetch func(ctx context.Context) ([]record.Record, error),
) StepReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService."+step,
		attribute.String("pipeline.step", step),
		attribute.String("pipeline.file", fileName),
	)
	report := StepReport{Step: step, Detail: detail}
	defer func() { endSpan(span, report.Err) }()

	s.logger.InfoContext(ctx, "fetching data", "step", step, "detail", detail)

	records, err := fetch(ctx)
	if err != nil {
		return s.failStep(ctx, report, crerr.Wrapf(err, "fetch %s", stepLabel(step, detail)))
	}
	records = nonNil(records)
	s.logger.InfoContext(ctx, "retrieved records", "step", step, "detail", detail, "records", len(records))

	path, err := s.store.WriteRecords(fileName, records)
	if err != nil {
		return s.failStep(ctx, report, crerr.Wrapf(err, "save %s", stepLabel(step, detail)))
	}

	report.Path = path
	report.Count = len(records)
	report.Records = records
	s.logger.InfoContext(ctx, "saved data", "step", step, "detail", detail, "records", len(records), "path", path)
	return report
}

func (s *PipelineService) failStep(ctx context.Context, report StepReport, err error) StepReport {
	report.Err = err
	report.Records = nil
	report.Document = nil
	s.logger.ErrorContext(ctx, "pipeline step failed", "step", report.Step, "detail", report.Detail, "error", err)
	return report
}

func (s *PipelineService) seasonsOrCurrent(years []int) []int {
	if len(years) == 0 {
		return []int{s.cfg.CurrentSeason}
	}
	return years
}

func stepLabel(step, detail string) string {
	if detail == "" {
		return step
	}
	return detail + " " + step
}

func seasonRange(from, to int) []int {
	if from > to {
		from = to
	}
	out := make([]int, 0, to-from+1)
	for year := from; year <= to; year++ {
		out = append(out, year)
	}
	return out
}

func joinYears(years []int) string {
	parts := make([]string, 0, len(years))
	for _, year := range years {
		parts = append(parts, strconv.Itoa(year))
	}
	return strings.Join(parts, "-")
}

func nonNil(records []record.Record) []record.Record {
	if records == nil {
		return []record.Record{}
	}
	return records
}
