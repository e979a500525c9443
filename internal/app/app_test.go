package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-data-pipeline/internal/config"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
)

func TestNewPipeline_RunSampleWritesToOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nfl")
	cfg := config.Config{
		ServiceName:                 "nfl-data-pipeline",
		ServiceVersion:              "test",
		OutputDir:                   dir,
		CurrentSeason:               2024,
		HistoryStartSeason:          2023,
		NFLVerseBaseURL:             "http://127.0.0.1:0",
		NFLVerseTimeout:             time.Second,
		NFLVerseCircuitFailureCount: 3,
		NFLVerseCircuitOpenTimeout:  time.Second,
		NFLVerseCircuitHalfOpenMax:  1,
		SupabaseTimeout:             time.Second,
		SupabaseBatchSize:           100,
	}

	svc, err := NewPipeline(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if err := svc.RunSample(context.Background()); err != nil {
		t.Fatalf("run sample: %v", err)
	}

	for _, name := range []string{"teams.json", "rosters_2024.json", "projection_dataset.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestNewPipeline_RequiresOutputDir(t *testing.T) {
	if _, err := NewPipeline(config.Config{}, nil); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}
