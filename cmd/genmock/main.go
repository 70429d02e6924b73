// Command genmock generates synthetic GHCN-D CSV fixtures for the rainfall
// report: a station metadata file and a daily observation file covering every
// branch of the pipeline (passing stations, short records, out-of-box
// coordinates, non-precipitation elements, sentinel elevations, dry days,
// and missing readings). Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data -stations 8 -days 365
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
)

var baseDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Station names in the study area's style. Passing stations draw from the
// front of the list.
var stationNames = []string{
	"YAMBA PILOT STATION",
	"BRISBANE REGIONAL OFFICE",
	"GRAFTON RESEARCH STATION",
	"WARWICK POST OFFICE",
	"TOOWOOMBA",
	"CASINO AIRPORT",
	"TENTERFIELD SHIRE",
	"DALBY POST OFFICE",
	"MOREE COMPARISON",
	"ROMA POST OFFICE",
	"GATTON RESEARCH",
	"STANTHORPE SHIRE",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data", "output directory for the CSV fixtures")
	nStations := flag.Int("stations", 8, "number of stations passing every filter")
	nDays := flag.Int("days", 365, "observation days per station")
	seed := flag.Int64("seed", 1, "RNG seed for reproducible fixtures")
	flag.Parse()

	if *nStations < 1 || *nStations > len(stationNames) {
		return fmt.Errorf("-stations must be between 1 and %d", len(stationNames))
	}

	rng := rand.New(rand.NewSource(*seed))

	stations := buildStations(rng, *nStations)
	if err := writeMetaCSV(filepath.Join(*outDir, "ghcnd_meta_data.csv"), stations); err != nil {
		return fmt.Errorf("writing metadata fixture: %w", err)
	}

	obsRows, err := writeObsCSV(filepath.Join(*outDir, "station_data.csv"), rng, stations, *nDays)
	if err != nil {
		return fmt.Errorf("writing observation fixture: %w", err)
	}

	printStats(stations, obsRows, *nDays)
	return nil
}

func buildStations(rng *rand.Rand, passing int) []domain.StationMetadata {
	var out []domain.StationMetadata

	inBox := func() (lat, lon float64) {
		lat = domain.StudyArea.Bottom + rng.Float64()*(domain.StudyArea.Top-domain.StudyArea.Bottom)
		lon = domain.StudyArea.Left + rng.Float64()*(domain.StudyArea.Right-domain.StudyArea.Left)
		return round4(lat), round4(lon)
	}

	id := 0
	next := func() string {
		id++
		return fmt.Sprintf("ASN%08d", id)
	}

	// Stations that pass every predicate.
	for i := 0; i < passing; i++ {
		lat, lon := inBox()
		out = append(out, domain.StationMetadata{
			ID:        next(),
			Name:      stationNames[i],
			Latitude:  lat,
			Longitude: lon,
			Elevation: round1(rng.Float64() * 600),
			Element:   domain.ElementPrecipitation,
			FirstYear: 1870 + rng.Intn(20), // span comfortably over 110
			LastYear:  2020,
		})
	}

	lat, lon := inBox()

	// Record span just under the threshold.
	out = append(out, domain.StationMetadata{
		ID: next(), Name: "SHORT RECORD", Latitude: lat, Longitude: lon,
		Elevation: 120, Element: domain.ElementPrecipitation, FirstYear: 1950, LastYear: 2020,
	})

	// Outside the bounding box on each axis.
	out = append(out, domain.StationMetadata{
		ID: next(), Name: "WEST OF BOX", Latitude: -27, Longitude: 115.7,
		Elevation: 20, Element: domain.ElementPrecipitation, FirstYear: 1880, LastYear: 2020,
	})
	out = append(out, domain.StationMetadata{
		ID: next(), Name: "SOUTH OF BOX", Latitude: -37.8, Longitude: 145,
		Elevation: 35, Element: domain.ElementPrecipitation, FirstYear: 1880, LastYear: 2020,
	})

	// Right place, wrong element.
	out = append(out, domain.StationMetadata{
		ID: next(), Name: "TEMPERATURE ONLY", Latitude: lat, Longitude: lon,
		Elevation: 90, Element: "TMAX", FirstYear: 1880, LastYear: 2020,
	})

	// Passes the filter but carries the missing-elevation sentinel.
	sentLat, sentLon := inBox()
	out = append(out, domain.StationMetadata{
		ID: next(), Name: "SENTINEL ELEVATION", Latitude: sentLat, Longitude: sentLon,
		Elevation: domain.SentinelElevation, Element: domain.ElementPrecipitation, FirstYear: 1885, LastYear: 2020,
	})

	return out
}

func writeMetaCSV(path string, stations []domain.StationMetadata) error {
	rows := [][]string{{"id", "name", "latitude", "longitude", "elevation", "element", "first_year", "last_year"}}
	for _, s := range stations {
		rows = append(rows, []string{
			s.ID,
			s.Name,
			strconv.FormatFloat(s.Latitude, 'f', -1, 64),
			strconv.FormatFloat(s.Longitude, 'f', -1, 64),
			strconv.FormatFloat(s.Elevation, 'f', -1, 64),
			s.Element,
			strconv.Itoa(s.FirstYear),
			strconv.Itoa(s.LastYear),
		})
	}
	return writeCSV(path, rows)
}

// writeObsCSV emits daily readings for every precipitation station: roughly
// half the days are dry, wet days draw from an exponential distribution, and
// a small fraction of readings are missing (blank prcp).
func writeObsCSV(path string, rng *rand.Rand, stations []domain.StationMetadata, days int) (int, error) {
	rows := [][]string{{"id", "date", "prcp"}}
	for _, s := range stations {
		if s.Element != domain.ElementPrecipitation {
			continue
		}
		for d := 0; d < days; d++ {
			date := baseDate.AddDate(0, 0, d).Format("2006-01-02")

			var prcp string
			switch r := rng.Float64(); {
			case r < 0.02:
				// missing reading
			case r < 0.55:
				prcp = "0"
			default:
				prcp = strconv.FormatFloat(round1(rng.ExpFloat64()*8), 'f', -1, 64)
			}
			rows = append(rows, []string{s.ID, date, prcp})
		}
	}
	return len(rows) - 1, writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func printStats(stations []domain.StationMetadata, obsRows, days int) {
	filtered := domain.FilterStations(stations, domain.DefaultStationFilter())
	cleaned := domain.DropSentinelElevations(filtered)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Metadata rows: %d\n", len(stations))
	fmt.Printf("Observation rows: %d (%d days per station)\n", obsRows, days)
	fmt.Printf("Pass filter: %d\n", len(filtered))
	fmt.Printf("After sentinel drop: %d\n", len(cleaned))
	fmt.Printf("Expected joined rows: %d\n", len(cleaned)*days)
	for _, s := range cleaned {
		fmt.Printf("  %s %-28s lat=%g lon=%g elev=%g span=%d\n",
			s.ID, s.Name, s.Latitude, s.Longitude, s.Elevation, s.RecordSpan())
	}
}

func round4(v float64) float64 { return float64(int(v*1e4)) / 1e4 }
func round1(v float64) float64 { return float64(int(v*10)) / 10 }
