package domain

import "time"

// StationMetadata is one ghcnd-inventory row: a station-element combination
// with coordinates, elevation, and the bounds of the station's active record.
type StationMetadata struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64 // metres; -999 is the missing sentinel, NaN if blank
	Element   string  // observed variable code, e.g. "PRCP"
	FirstYear int
	LastYear  int
}

// RecordSpan returns the length of the station's active record in years.
func (s StationMetadata) RecordSpan() int {
	return s.LastYear - s.FirstYear
}

// DailyObservation is one daily reading for a single station.
type DailyObservation struct {
	StationID string
	Date      time.Time
	Prcp      float64 // millimetres; NaN when the reading is missing
}

// JoinedObservation pairs a daily observation with the metadata of the
// station that produced it. Produced by [Join]; carries both sides whole.
type JoinedObservation struct {
	Station     StationMetadata
	Observation DailyObservation
}

// RainfallSummary is one row of the report's output table: the non-zero
// rainfall distribution of a single station.
type RainfallSummary struct {
	Name           string
	MeanRainfall   float64
	MedianRainfall float64
	Days           int // rain days contributing to the summary
}

// RainfallReport bundles the derived tables of a complete run.
type RainfallReport struct {
	Stations    []StationMetadata
	Joined      []JoinedObservation
	Summaries   []RainfallSummary
	GeneratedAt time.Time
}
