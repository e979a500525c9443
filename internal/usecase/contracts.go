package usecase

import (
	"context"

	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
)

// NFLDataProvider is the upstream statistics source.
type NFLDataProvider interface {
	FetchRosters(ctx context.Context, years []int) ([]record.Record, error)
	FetchWeekly(ctx context.Context, years []int, columns []string) ([]record.Record, error)
	FetchSeasonal(ctx context.Context, years []int) ([]record.Record, error)
	FetchSchedules(ctx context.Context, years []int) ([]record.Record, error)
	FetchInjuries(ctx context.Context, season int) ([]record.Record, error)
	FetchTeamDescriptions(ctx context.Context) ([]record.Record, error)
	FetchPlayByPlay(ctx context.Context, years []int, columns []string) ([]record.Record, error)
}

// DatasetStore persists one JSON document per data category.
type DatasetStore interface {
	WriteRecords(name string, records []record.Record) (string, error)
	WriteDocument(name string, doc any) (string, error)
	ReadRecords(name string) ([]record.Record, error)
	Dir() string
}

// Logical data types understood by the remote database.
const (
	DataTypePlayers     = "players"
	DataTypeStats       = "stats"
	DataTypeProjections = "projections"
)

// RecordUploader pushes records for a data type to the remote database.
type RecordUploader interface {
	Upload(ctx context.Context, dataType string, records []record.Record) UploadResult
}

// UploadResult describes how far an upload got. FirstFailureIndex is the zero-based batch index
// that failed, or -1 when no batch failed. Err carries the diagnostic for logs only.
type UploadResult struct {
	DataType          string `json:"data_type"`
	Resource          string `json:"resource"`
	Success           bool   `json:"success"`
	Skipped           bool   `json:"skipped"`
	TotalRecords      int    `json:"total_records"`
	TotalBatches      int    `json:"total_batches"`
	AttemptedBatches  int    `json:"attempted_batches"`
	UploadedRecords   int    `json:"uploaded_records"`
	FirstFailureIndex int    `json:"first_failure_index"`
	Err               error  `json:"-"`
}
