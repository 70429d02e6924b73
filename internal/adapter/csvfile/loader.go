// Package csvfile loads GHCN-D station metadata and daily observation CSVs
// into domain tables. It is the report's only data source.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
)

// Sentinel errors for data-source failures. All are fatal to the run.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNoData        = errors.New("no data rows")
)

// Required headers, bit-for-bit as they appear in the source files.
var (
	stationColumns     = []string{"id", "name", "latitude", "longitude", "elevation", "element", "first_year", "last_year"}
	observationColumns = []string{"id", "date", "prcp"}
)

const dateLayout = "2006-01-02"

// Source reads the two report inputs from disk. It implements the pipeline's
// Loader interface.
type Source struct {
	MetaPath string
	ObsPath  string
}

// NewSource creates a Source over the given metadata and observation CSVs.
func NewSource(metaPath, obsPath string) *Source {
	return &Source{MetaPath: metaPath, ObsPath: obsPath}
}

// Stations loads the station metadata table.
func (s *Source) Stations(_ context.Context) ([]domain.StationMetadata, error) {
	return LoadStations(s.MetaPath)
}

// Observations loads the daily observation table.
func (s *Source) Observations(_ context.Context) ([]domain.DailyObservation, error) {
	return LoadObservations(s.ObsPath)
}

// LoadStations reads a ghcnd-inventory style metadata CSV. Blank elevation
// parses to NaN; any other malformed field is a fatal error naming the line.
func LoadStations(path string) ([]domain.StationMetadata, error) {
	rows, idx, err := readTable(path, stationColumns)
	if err != nil {
		return nil, err
	}

	stations := make([]domain.StationMetadata, 0, len(rows))
	for _, row := range rows {
		lat, err := parseFloat(row.get(idx, "latitude"))
		if err != nil {
			return nil, rowErr(path, row.lineNum, "latitude", err)
		}
		lon, err := parseFloat(row.get(idx, "longitude"))
		if err != nil {
			return nil, rowErr(path, row.lineNum, "longitude", err)
		}
		firstYear, err := strconv.Atoi(row.get(idx, "first_year"))
		if err != nil {
			return nil, rowErr(path, row.lineNum, "first_year", err)
		}
		lastYear, err := strconv.Atoi(row.get(idx, "last_year"))
		if err != nil {
			return nil, rowErr(path, row.lineNum, "last_year", err)
		}

		stations = append(stations, domain.StationMetadata{
			ID:        row.get(idx, "id"),
			Name:      row.get(idx, "name"),
			Latitude:  lat,
			Longitude: lon,
			Elevation: parseFloatOrNaN(row.get(idx, "elevation")),
			Element:   row.get(idx, "element"),
			FirstYear: firstYear,
			LastYear:  lastYear,
		})
	}
	return stations, nil
}

// LoadObservations reads a daily observation CSV. Blank prcp parses to NaN
// (missing reading), never zero.
func LoadObservations(path string) ([]domain.DailyObservation, error) {
	rows, idx, err := readTable(path, observationColumns)
	if err != nil {
		return nil, err
	}

	obs := make([]domain.DailyObservation, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(dateLayout, row.get(idx, "date"))
		if err != nil {
			return nil, rowErr(path, row.lineNum, "date", err)
		}

		obs = append(obs, domain.DailyObservation{
			StationID: row.get(idx, "id"),
			Date:      date,
			Prcp:      parseFloatOrNaN(row.get(idx, "prcp")),
		})
	}
	return obs, nil
}

// tableRow is a raw CSV row with its 1-based source line number.
type tableRow struct {
	lineNum int
	fields  []string
}

func (r tableRow) get(idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// readTable reads the file, verifies the required columns are present, and
// returns the data rows with a header index map.
func readTable(path string, required []string) ([]tableRow, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrNoData)
	}

	idx := make(map[string]int, len(all[0]))
	for i, h := range all[0] {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("%s: %w: %q", path, ErrMissingColumn, col)
		}
	}

	rows := make([]tableRow, 0, len(all)-1)
	for i, fields := range all[1:] {
		rows = append(rows, tableRow{lineNum: i + 2, fields: fields})
	}
	return rows, idx, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseFloatOrNaN parses a string as float64, returning NaN for blank or
// unparseable values. Missing readings stay missing rather than becoming 0.
func parseFloatOrNaN(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func rowErr(path string, line int, col string, err error) error {
	return fmt.Errorf("%s line %d: column %q: %w", path, line, col, err)
}
