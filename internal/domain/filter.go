package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// ElementPrecipitation is the GHCN-D element code for daily precipitation.
	ElementPrecipitation = "PRCP"

	// SentinelElevation marks a missing elevation in ghcnd-inventory rows.
	SentinelElevation = -999

	// MinRecordSpanYears is the minimum record length a station needs to be
	// included in the report.
	MinRecordSpanYears = 110
)

// BoundingBox is a rectangular geographic filter in decimal degrees.
// All four edges are inclusive.
type BoundingBox struct {
	Left   float64 // west longitude
	Bottom float64 // south latitude
	Right  float64 // east longitude
	Top    float64 // north latitude
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lon >= b.Left && lon <= b.Right && lat >= b.Bottom && lat <= b.Top
}

// StudyArea is the station-selection box over south-east Australia.
var StudyArea = BoundingBox{Left: 138, Bottom: -29.5, Right: 155, Top: -26}

// BasemapExtent is the slightly wider box the basemap overlay renders,
// giving the plotted stations a margin of surrounding terrain.
var BasemapExtent = BoundingBox{Left: 138, Bottom: -31, Right: 155, Top: -24.5}

// StationFilter holds the conjunctive selection predicate for metadata rows.
type StationFilter struct {
	Element      string
	MinSpanYears int
	Box          BoundingBox
}

// DefaultStationFilter returns the report's selection criteria: century-long
// precipitation records inside the study area.
func DefaultStationFilter() StationFilter {
	return StationFilter{
		Element:      ElementPrecipitation,
		MinSpanYears: MinRecordSpanYears,
		Box:          StudyArea,
	}
}

// Matches reports whether a metadata row satisfies all four predicates.
func (f StationFilter) Matches(s StationMetadata) bool {
	return s.Element == f.Element &&
		s.RecordSpan() >= f.MinSpanYears &&
		f.Box.Contains(s.Latitude, s.Longitude)
}

// FilterStations returns the metadata rows matching the filter, preserving
// input order. The input slice is never modified.
func FilterStations(stations []StationMetadata, f StationFilter) []StationMetadata {
	var out []StationMetadata
	for _, s := range stations {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// DropSentinelElevations removes rows whose elevation is the -999 missing
// sentinel. The strict threshold (rather than an equality check) also drops
// NaN elevations parsed from blank fields; see the package doc for the
// rationale.
func DropSentinelElevations(stations []StationMetadata) []StationMetadata {
	var out []StationMetadata
	for _, s := range stations {
		if s.Elevation > SentinelElevation {
			out = append(out, s)
		}
	}
	return out
}

// Join inner-joins daily observations against station metadata on station ID.
// Observations without a matching station, and stations without observations,
// are dropped. Output preserves observation order.
func Join(observations []DailyObservation, stations []StationMetadata) []JoinedObservation {
	byID := make(map[string]StationMetadata, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}

	var out []JoinedObservation
	for _, o := range observations {
		s, ok := byID[o.StationID]
		if !ok {
			continue
		}
		out = append(out, JoinedObservation{Station: s, Observation: o})
	}
	return out
}

// GroupPositiveRainfall groups joined observations by station name, keeping
// only readings that are present (non-NaN) and strictly positive. Zero
// readings are "no rain" days and carry no distributional information.
// Names are returned sorted; values[i] belongs to names[i].
func GroupPositiveRainfall(joined []JoinedObservation) (names []string, values [][]float64) {
	byName := make(map[string][]float64)
	for _, j := range joined {
		p := j.Observation.Prcp
		if math.IsNaN(p) || p <= 0 {
			continue
		}
		byName[j.Station.Name] = append(byName[j.Station.Name], p)
	}

	names = make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	values = make([][]float64, len(names))
	for i, name := range names {
		values[i] = byName[name]
	}
	return names, values
}

// Summarize computes the per-station rainfall summary over the zero-excluded
// readings. Output is sorted by station name for reproducible comparison.
func Summarize(joined []JoinedObservation) []RainfallSummary {
	names, values := GroupPositiveRainfall(joined)

	out := make([]RainfallSummary, len(names))
	for i, name := range names {
		out[i] = RainfallSummary{
			Name:           name,
			MeanRainfall:   stat.Mean(values[i], nil),
			MedianRainfall: Median(values[i]),
			Days:           len(values[i]),
		}
	}
	return out
}

// Median returns the median of xs using the midpoint convention: for an even
// count, the average of the two middle values. gonum's stat.Quantile kinds
// implement neither this convention nor tolerate unsorted input, so the
// report computes it directly. Returns NaN for an empty slice; xs is not
// modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
