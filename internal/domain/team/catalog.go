package team

import "github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"

const (
	ConferenceAFC = "AFC"
	ConferenceNFC = "NFC"
)

var catalog = []Team{
	{Abbreviation: "ARI", Name: "Arizona Cardinals", Conference: ConferenceNFC, Division: "West"},
	{Abbreviation: "ATL", Name: "Atlanta Falcons", Conference: ConferenceNFC, Division: "South"},
	{Abbreviation: "BAL", Name: "Baltimore Ravens", Conference: ConferenceAFC, Division: "North"},
	{Abbreviation: "BUF", Name: "Buffalo Bills", Conference: ConferenceAFC, Division: "East"},
	{Abbreviation: "CAR", Name: "Carolina Panthers", Conference: ConferenceNFC, Division: "South"},
	{Abbreviation: "CHI", Name: "Chicago Bears", Conference: ConferenceNFC, Division: "North"},
	{Abbreviation: "CIN", Name: "Cincinnati Bengals", Conference: ConferenceAFC, Division: "North"},
	{Abbreviation: "CLE", Name: "Cleveland Browns", Conference: ConferenceAFC, Division: "North"},
	{Abbreviation: "DAL", Name: "Dallas Cowboys", Conference: ConferenceNFC, Division: "East"},
	{Abbreviation: "DEN", Name: "Denver Broncos", Conference: ConferenceAFC, Division: "West"},
	{Abbreviation: "DET", Name: "Detroit Lions", Conference: ConferenceNFC, Division: "North"},
	{Abbreviation: "GB", Name: "Green Bay Packers", Conference: ConferenceNFC, Division: "North"},
	{Abbreviation: "HOU", Name: "Houston Texans", Conference: ConferenceAFC, Division: "South"},
	{Abbreviation: "IND", Name: "Indianapolis Colts", Conference: ConferenceAFC, Division: "South"},
	{Abbreviation: "JAX", Name: "Jacksonville Jaguars", Conference: ConferenceAFC, Division: "South"},
	{Abbreviation: "KC", Name: "Kansas City Chiefs", Conference: ConferenceAFC, Division: "West"},
	{Abbreviation: "LV", Name: "Las Vegas Raiders", Conference: ConferenceAFC, Division: "West"},
	{Abbreviation: "LAC", Name: "Los Angeles Chargers", Conference: ConferenceAFC, Division: "West"},
	{Abbreviation: "LAR", Name: "Los Angeles Rams", Conference: ConferenceNFC, Division: "West"},
	{Abbreviation: "MIA", Name: "Miami Dolphins", Conference: ConferenceAFC, Division: "East"},
	{Abbreviation: "MIN", Name: "Minnesota Vikings", Conference: ConferenceNFC, Division: "North"},
	{Abbreviation: "NE", Name: "New England Patriots", Conference: ConferenceAFC, Division: "East"},
	{Abbreviation: "NO", Name: "New Orleans Saints", Conference: ConferenceNFC, Division: "South"},
	{Abbreviation: "NYG", Name: "New York Giants", Conference: ConferenceNFC, Division: "East"},
	{Abbreviation: "NYJ", Name: "New York Jets", Conference: ConferenceAFC, Division: "East"},
	{Abbreviation: "PHI", Name: "Philadelphia Eagles", Conference: ConferenceNFC, Division: "East"},
	{Abbreviation: "PIT", Name: "Pittsburgh Steelers", Conference: ConferenceAFC, Division: "North"},
	{Abbreviation: "SF", Name: "San Francisco 49ers", Conference: ConferenceNFC, Division: "West"},
	{Abbreviation: "SEA", Name: "Seattle Seahawks", Conference: ConferenceNFC, Division: "West"},
	{Abbreviation: "TB", Name: "Tampa Bay Buccaneers", Conference: ConferenceNFC, Division: "South"},
	{Abbreviation: "TEN", Name: "Tennessee Titans", Conference: ConferenceAFC, Division: "South"},
	{Abbreviation: "WAS", Name: "Washington Commanders", Conference: ConferenceNFC, Division: "East"},
}

// Catalog returns a copy of the static league table.
func Catalog() []Team {
	out := make([]Team, len(catalog))
	copy(out, catalog)
	return out
}

func Records() []record.Record {
	out := make([]record.Record, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t.Record())
	}
	return out
}
