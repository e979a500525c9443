package team

import (
	"fmt"

	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
)

// Team is one NFL franchise.
type Team struct {
	Abbreviation string
	Name         string
	Conference   string
	Division     string
}

func (t Team) Validate() error {
	if t.Abbreviation == "" {
		return fmt.Errorf("team abbreviation is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Conference != ConferenceAFC && t.Conference != ConferenceNFC {
		return fmt.Errorf("team %s has invalid conference %q", t.Abbreviation, t.Conference)
	}

	return nil
}

func (t Team) Record() record.Record {
	return record.FromPairs(
		"abbreviation", t.Abbreviation,
		"name", t.Name,
		"conference", t.Conference,
		"division", t.Division,
	)
}
