// Command validate performs integrity checks on a pair of report input CSVs:
// schema presence, filter and sanitizer properties, join containment, and an
// aggregation cross-check against an independent dataframe implementation of
// the same relational operations.
//
// Usage:
//
//	go run ./cmd/validate -meta data/ghcnd_meta_data.csv -obs data/station_data.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/ghcnd-rainfall/internal/adapter/csvfile"
	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	metaPath := flag.String("meta", "", "path to the station metadata CSV")
	obsPath := flag.String("obs", "", "path to the daily observation CSV")
	flag.Parse()

	if *metaPath == "" || *obsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*metaPath, *obsPath); code != 0 {
		os.Exit(code)
	}
}

func run(metaPath, obsPath string) int {
	fmt.Println("=== Rainfall Report Input Validation ===")
	fmt.Println()

	stations, err := csvfile.LoadStations(metaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load metadata: %v\n", err)
		return 1
	}
	observations, err := csvfile.LoadObservations(obsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load observations: %v\n", err)
		return 1
	}

	filter := domain.DefaultStationFilter()
	filtered := domain.FilterStations(stations, filter)
	cleaned := domain.DropSentinelElevations(filtered)
	joined := domain.Join(observations, cleaned)
	summaries := domain.Summarize(joined)

	// ── Run validation phases ──
	phases := []*phase{
		validateFilter(stations, filtered, filter),
		validateSanitizer(filtered, cleaned),
		validateJoin(observations, cleaned, joined),
		validateAggregation(stations, observations, summaries),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d metadata, %d observations, %d filtered, %d cleaned, %d joined, %d summarized\n",
		len(stations), len(observations), len(filtered), len(cleaned), len(joined), len(summaries))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Filter properties ──

func validateFilter(stations, filtered []domain.StationMetadata, filter domain.StationFilter) *phase {
	p := &phase{name: "Phase 1: Filter properties"}

	for i, s := range filtered {
		if s.Element != filter.Element {
			p.errorf("row %d (%s): element %q escaped the filter", i, s.ID, s.Element)
		}
		if s.RecordSpan() < filter.MinSpanYears {
			p.errorf("row %d (%s): span %d below %d", i, s.ID, s.RecordSpan(), filter.MinSpanYears)
		}
		if !filter.Box.Contains(s.Latitude, s.Longitude) {
			p.errorf("row %d (%s): (%g, %g) outside the study area", i, s.ID, s.Latitude, s.Longitude)
		}
	}

	// Idempotence: filtering the output again must be a no-op.
	again := domain.FilterStations(filtered, filter)
	if len(again) != len(filtered) {
		p.errorf("filter is not idempotent: %d rows became %d", len(filtered), len(again))
	}

	if len(filtered) == 0 && len(stations) > 0 {
		p.errorf("filter matched no rows out of %d; criteria likely mismatch the metadata", len(stations))
	}
	return p
}

// ── Phase 2: Sanitizer arithmetic ──

func validateSanitizer(filtered, cleaned []domain.StationMetadata) *phase {
	p := &phase{name: "Phase 2: Sentinel elevation sanitizer"}

	sentinels := 0
	for _, s := range filtered {
		if !(s.Elevation > domain.SentinelElevation) {
			sentinels++
		}
	}
	if len(filtered)-len(cleaned) != sentinels {
		p.errorf("dropped %d rows but input held %d sentinel rows", len(filtered)-len(cleaned), sentinels)
	}
	for i, s := range cleaned {
		if !(s.Elevation > domain.SentinelElevation) {
			p.errorf("row %d (%s): sentinel elevation %g survived", i, s.ID, s.Elevation)
		}
	}
	return p
}

// ── Phase 3: Join containment ──

func validateJoin(observations []domain.DailyObservation, cleaned []domain.StationMetadata, joined []domain.JoinedObservation) *phase {
	p := &phase{name: "Phase 3: Inner-join containment"}

	stationIDs := make(map[string]bool, len(cleaned))
	for _, s := range cleaned {
		stationIDs[s.ID] = true
	}
	obsIDs := make(map[string]bool, len(observations))
	var matchable int
	for _, o := range observations {
		obsIDs[o.StationID] = true
		if stationIDs[o.StationID] {
			matchable++
		}
	}

	for i, j := range joined {
		if !stationIDs[j.Observation.StationID] {
			p.errorf("row %d: ID %q not in the cleaned station table", i, j.Observation.StationID)
		}
		if !obsIDs[j.Station.ID] {
			p.errorf("row %d: ID %q not in the observation table", i, j.Station.ID)
		}
		if j.Station.ID != j.Observation.StationID {
			p.errorf("row %d: join key mismatch %q vs %q", i, j.Station.ID, j.Observation.StationID)
		}
	}

	if len(joined) != matchable {
		p.errorf("joined %d rows, expected %d matchable observations", len(joined), matchable)
	}
	return p
}

// ── Phase 4: Aggregation cross-check ──
// Re-runs the filter, join, and zero-excluded mean with gota dataframes and
// compares against the domain results.

func validateAggregation(stations []domain.StationMetadata, observations []domain.DailyObservation, summaries []domain.RainfallSummary) *phase {
	p := &phase{name: "Phase 4: Aggregation cross-check (dataframe)"}

	metaDF := stationsFrame(stations)
	obsDF := observationsFrame(observations)

	cleanedDF := metaDF.
		Filter(dataframe.F{Colname: "element", Comparator: series.Eq, Comparando: domain.ElementPrecipitation}).
		Filter(dataframe.F{Colname: "span", Comparator: series.GreaterEq, Comparando: domain.MinRecordSpanYears}).
		Filter(dataframe.F{Colname: "longitude", Comparator: series.GreaterEq, Comparando: domain.StudyArea.Left}).
		Filter(dataframe.F{Colname: "longitude", Comparator: series.LessEq, Comparando: domain.StudyArea.Right}).
		Filter(dataframe.F{Colname: "latitude", Comparator: series.GreaterEq, Comparando: domain.StudyArea.Bottom}).
		Filter(dataframe.F{Colname: "latitude", Comparator: series.LessEq, Comparando: domain.StudyArea.Top}).
		Filter(dataframe.F{Colname: "elevation", Comparator: series.Greater, Comparando: float64(domain.SentinelElevation)})
	if cleanedDF.Err != nil {
		p.errorf("dataframe filter: %v", cleanedDF.Err)
		return p
	}

	rainDF := obsDF.
		InnerJoin(cleanedDF, "id").
		Filter(dataframe.F{Colname: "prcp", Comparator: series.Greater, Comparando: 0.0})
	if rainDF.Err != nil {
		p.errorf("dataframe join: %v", rainDF.Err)
		return p
	}

	meansDF := rainDF.
		GroupBy("name").
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{"prcp"})
	if meansDF.Err != nil {
		p.errorf("dataframe aggregation: %v", meansDF.Err)
		return p
	}

	dfMeans, err := frameMeans(meansDF)
	if err != nil {
		p.errorf("read aggregation frame: %v", err)
		return p
	}

	if len(dfMeans) != len(summaries) {
		p.errorf("dataframe found %d stations, domain found %d", len(dfMeans), len(summaries))
	}
	for _, s := range summaries {
		mean, ok := dfMeans[s.Name]
		if !ok {
			p.errorf("station %q missing from dataframe aggregation", s.Name)
			continue
		}
		if math.Abs(mean-s.MeanRainfall) > 1e-9 {
			p.errorf("station %q: dataframe mean %g, domain mean %g", s.Name, mean, s.MeanRainfall)
		}
	}

	checkMedians(p, rainDF, summaries)
	return p
}

func stationsFrame(stations []domain.StationMetadata) dataframe.DataFrame {
	n := len(stations)
	ids := make([]string, n)
	names := make([]string, n)
	lats := make([]float64, n)
	lons := make([]float64, n)
	elevs := make([]float64, n)
	elements := make([]string, n)
	spans := make([]int, n)
	for i, s := range stations {
		ids[i] = s.ID
		names[i] = s.Name
		lats[i] = s.Latitude
		lons[i] = s.Longitude
		elevs[i] = s.Elevation
		elements[i] = s.Element
		spans[i] = s.RecordSpan()
	}
	return dataframe.New(
		series.New(ids, series.String, "id"),
		series.New(names, series.String, "name"),
		series.New(lats, series.Float, "latitude"),
		series.New(lons, series.Float, "longitude"),
		series.New(elevs, series.Float, "elevation"),
		series.New(elements, series.String, "element"),
		series.New(spans, series.Int, "span"),
	)
}

func observationsFrame(observations []domain.DailyObservation) dataframe.DataFrame {
	n := len(observations)
	ids := make([]string, n)
	prcps := make([]float64, n)
	for i, o := range observations {
		ids[i] = o.StationID
		prcps[i] = o.Prcp
	}
	return dataframe.New(
		series.New(ids, series.String, "id"),
		series.New(prcps, series.Float, "prcp"),
	)
}

// frameMeans extracts name → prcp_MEAN from the aggregation frame.
func frameMeans(df dataframe.DataFrame) (map[string]float64, error) {
	records := df.Records()
	if len(records) < 1 {
		return nil, fmt.Errorf("empty aggregation frame")
	}
	nameIdx, meanIdx := -1, -1
	for i, h := range records[0] {
		switch h {
		case "name":
			nameIdx = i
		case "prcp_MEAN":
			meanIdx = i
		}
	}
	if nameIdx < 0 || meanIdx < 0 {
		return nil, fmt.Errorf("aggregation frame missing name/prcp_MEAN columns: %v", records[0])
	}

	out := make(map[string]float64, len(records)-1)
	for _, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[meanIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("mean %q: %w", rec[meanIdx], err)
		}
		out[rec[nameIdx]] = v
	}
	return out, nil
}

// checkMedians recomputes each station's median from the dataframe's
// zero-excluded rows and compares it to the domain summary. The midpoint
// convention is applied directly since aggregation libraries disagree on
// even-count medians.
func checkMedians(p *phase, rainDF dataframe.DataFrame, summaries []domain.RainfallSummary) {
	records := rainDF.Records()
	if len(records) < 1 {
		return
	}
	nameIdx, prcpIdx := -1, -1
	for i, h := range records[0] {
		switch h {
		case "name":
			nameIdx = i
		case "prcp":
			prcpIdx = i
		}
	}
	if nameIdx < 0 || prcpIdx < 0 {
		p.errorf("joined frame missing name/prcp columns: %v", records[0])
		return
	}

	byName := map[string][]float64{}
	for _, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[prcpIdx], 64)
		if err != nil {
			p.errorf("prcp %q: %v", rec[prcpIdx], err)
			return
		}
		byName[rec[nameIdx]] = append(byName[rec[nameIdx]], v)
	}

	for _, s := range summaries {
		vals, ok := byName[s.Name]
		if !ok {
			p.errorf("station %q missing from joined frame", s.Name)
			continue
		}
		sort.Float64s(vals)
		median := domain.Median(vals)
		if math.Abs(median-s.MedianRainfall) > 1e-9 {
			p.errorf("station %q: dataframe median %g, domain median %g", s.Name, median, s.MedianRainfall)
		}
	}
}
