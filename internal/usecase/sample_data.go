package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/team"
)

const sampleSeason = 2024

type samplePlayer struct {
	id         string
	name       string
	position   string
	team       string
	jersey     int
	height     string
	weight     int
	experience int
	college    string
}

var samplePlayers = []samplePlayer{
	{"mahomes_patrick_01", "Patrick Mahomes", "QB", "KC", 15, "6-3", 225, 7, "Texas Tech"},
	{"allen_josh_01", "Josh Allen", "QB", "BUF", 17, "6-5", 237, 6, "Wyoming"},
	{"jackson_lamar_01", "Lamar Jackson", "QB", "BAL", 8, "6-2", 212, 6, "Louisville"},
	{"mccaffrey_christian_01", "Christian McCaffrey", "RB", "SF", 23, "5-11", 205, 7, "Stanford"},
	{"hill_tyreek_01", "Tyreek Hill", "WR", "MIA", 10, "5-10", 185, 8, "West Alabama"},
	{"kelce_travis_01", "Travis Kelce", "TE", "KC", 87, "6-5", 250, 11, "Cincinnati"},
	{"tucker_justin_01", "Justin Tucker", "K", "BAL", 9, "6-1", 183, 12, "Texas"},
}

func sampleRosters() []record.Record {
	out := make([]record.Record, 0, len(samplePlayers))
	for _, p := range samplePlayers {
		out = append(out, record.FromPairs(
			"player_id", p.id,
			"player_name", p.name,
			"position", p.position,
			"team", p.team,
			"jersey_number", p.jersey,
			"height", p.height,
			"weight", p.weight,
			"years_exp", p.experience,
			"college", p.college,
			"status", "ACT",
		))
	}
	return out
}

func samplePassingStats() []record.Record {
	return []record.Record{
		record.FromPairs(
			"player_id", "mahomes_patrick_01", "player_name", "Patrick Mahomes", "position", "QB",
			"team", "KC", "week", 1, "season", sampleSeason,
			"completions", 28, "attempts", 42, "passing_yards", 378,
			"passing_tds", 4, "interceptions", 1,
		),
		record.FromPairs(
			"player_id", "allen_josh_01", "player_name", "Josh Allen", "position", "QB",
			"team", "BUF", "week", 1, "season", sampleSeason,
			"completions", 22, "attempts", 35, "passing_yards", 295,
			"passing_tds", 2, "interceptions", 0,
		),
	}
}

func sampleRushingStats() []record.Record {
	return []record.Record{
		record.FromPairs(
			"player_id", "mccaffrey_christian_01", "player_name", "Christian McCaffrey", "position", "RB",
			"team", "SF", "week", 1, "season", sampleSeason,
			"carries", 22, "rushing_yards", 147, "rushing_tds", 2,
		),
	}
}

func sampleReceivingStats() []record.Record {
	return []record.Record{
		record.FromPairs(
			"player_id", "hill_tyreek_01", "player_name", "Tyreek Hill", "position", "WR",
			"team", "MIA", "week", 1, "season", sampleSeason,
			"targets", 12, "receptions", 8, "receiving_yards", 156, "receiving_tds", 2,
		),
		record.FromPairs(
			"player_id", "kelce_travis_01", "player_name", "Travis Kelce", "position", "TE",
			"team", "KC", "week", 1, "season", sampleSeason,
			"targets", 10, "receptions", 7, "receiving_yards", 89, "receiving_tds", 1,
		),
	}
}

func (s *PipelineService) sampleProjectionDataset() record.Record {
	weekly := []record.Record{
		record.FromPairs("player_id", "mahomes_patrick_01", "week", 1, "season", sampleSeason, "fantasy_points_half_ppr", 28.5),
		record.FromPairs("player_id", "mahomes_patrick_01", "week", 2, "season", sampleSeason, "fantasy_points_half_ppr", 22.3),
		record.FromPairs("player_id", "mahomes_patrick_01", "week", 3, "season", sampleSeason, "fantasy_points_half_ppr", 31.7),
	}
	seasonal := []record.Record{
		record.FromPairs("player_id", "mahomes_patrick_01", "season", 2023, "passing_yards", 4183, "passing_tds", 27),
		record.FromPairs("player_id", "allen_josh_01", "season", 2023, "passing_yards", 4306, "passing_tds", 29),
	}

	return record.FromPairs(
		"weekly_stats", weekly,
		"seasonal_stats", seasonal,
		"metadata", record.FromPairs(
			"created_at", s.now().Format(time.RFC3339),
			"seasons", []int{2023, sampleSeason},
			"description", "Sample dataset for projection modeling",
		),
	)
}

// RunSample writes a small static dataset without touching the network. The first failing
// write aborts the run.
func (s *PipelineService) RunSample(ctx context.Context) (err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RunSample")
	defer func() { endSpan(span, err) }()

	s.logger.InfoContext(ctx, "creating sample nfl data", "output_dir", s.store.Dir())

	files := []struct {
		name    string
		records []record.Record
	}{
		{name: teamsFile, records: team.Records()},
		{name: fmt.Sprintf("rosters_%d.json", sampleSeason), records: sampleRosters()},
		{name: fmt.Sprintf("%s_stats_%d.json", StatTypePassing, sampleSeason), records: samplePassingStats()},
		{name: fmt.Sprintf("%s_stats_%d.json", StatTypeRushing, sampleSeason), records: sampleRushingStats()},
		{name: fmt.Sprintf("%s_stats_%d.json", StatTypeReceiving, sampleSeason), records: sampleReceivingStats()},
	}

	for _, file := range files {
		path, writeErr := s.store.WriteRecords(file.name, file.records)
		if writeErr != nil {
			s.logger.ErrorContext(ctx, "failed to write sample data", "file", file.name, "error", writeErr)
			return crerr.Wrapf(writeErr, "write sample %s", file.name)
		}
		s.logger.InfoContext(ctx, "saved sample data", "records", len(file.records), "path", path)
	}

	path, err := s.store.WriteDocument(projectionDatasetFile, s.sampleProjectionDataset())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to write sample data", "file", projectionDatasetFile, "error", err)
		return crerr.Wrapf(err, "write sample %s", projectionDatasetFile)
	}
	s.logger.InfoContext(ctx, "saved sample projection dataset", "path", path)

	s.logger.InfoContext(ctx, "sample nfl data created", "output_dir", s.store.Dir())
	return nil
}
