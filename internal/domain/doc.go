// Package domain models GHCN-D (Global Historical Climatology Network – Daily)
// station metadata and daily precipitation observations, and implements the
// relational stages of the rainfall report: station filtering, sentinel
// sanitization, the observation join, and the per-station rainfall summary.
//
// # Data Source
//
// Station metadata follows the NOAA ghcnd-inventory convention: one row per
// station-element combination with the station coordinates, elevation, the
// observed element code, and the first and last year of the station's record.
// Daily observations carry one row per station-date with the precipitation
// amount in millimetres.
//
// # GHCN-D Conventions
//
// Element codes:
//
//	"PRCP" is daily precipitation. Matching is exact and case-sensitive;
//	other codes (TMAX, TMIN, SNOW, ...) are ignored by the report.
//
// Elevation sentinel:
//
//	-999 metres marks a missing elevation. [DropSentinelElevations] removes
//	sentinel rows with a strict `elevation > -999` threshold rather than an
//	equality check: no terrestrial station sits below -999 m, and the
//	threshold also discards NaN elevations parsed from blank fields.
//
// Record span:
//
//	last_year - first_year, in years. The report keeps stations whose span is
//	at least 110 years so that every summarized distribution covers more than
//	a century of observations.
//
// Study area:
//
//	A fixed bounding box over south-east Australia, 138–155°E and
//	26–29.5°S, inclusive on all four edges.
//
// Missing values:
//
//	Missing floats are NaN, never zero. [Summarize] drops NaN readings before
//	the zero-exclusion step, so a missing day contributes to neither the mean
//	nor the median denominator.
package domain
