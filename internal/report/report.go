// Package report composes the pipeline stages into one batch run: load the
// source table, project and clean it, derive temporal features, filter to the
// admissible year range, and compute the summary tables the exporters render.
// The flow is strictly linear and runs once per process.
package report

import (
	"context"
	"log/slog"
	"strconv"

	"crimelens/internal/aggregate"
	"crimelens/internal/config"
	"crimelens/internal/crime"
	"crimelens/internal/dataset"
)

// HomicideType is the primary classification of the per-victim fatality view.
const HomicideType = "HOMICIDE"

// MapPoint is one coordinate pair handed to the map renderer.
type MapPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is the bounding box of a point set, the map reference the renderer
// centers on.
type Bounds struct {
	MinLatitude  float64 `json:"min_latitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

// YearArrestShare is the arrest outcome summary of one year.
type YearArrestShare struct {
	Year    int
	Total   int
	Arrests int
	Share   float64
}

// Report holds every summary table of one run.
type Report struct {
	TotalRecords  int
	DistinctCases int

	ByType        []aggregate.Group
	ByYear        []aggregate.Group
	ByYearMonth   *aggregate.Matrix
	WeekdayHour   *aggregate.Matrix
	TopLocations  []aggregate.Group
	TopBlocks     []aggregate.Group
	ByDistrict    []aggregate.Group
	ArrestsByYear []YearArrestShare

	// Homicide view. Counts are per victim record, not per incident: a
	// multi-victim case contributes one count per victim.
	HomicideByYear    []aggregate.Group
	HomicideTopBlocks []aggregate.Group
	HomicidePoints    []MapPoint
	HomicideBounds    Bounds
}

// Pipeline runs the whole analysis once.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a pipeline over the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes load, clean, derive, filter, and aggregation in order and
// returns the assembled report. Any stage error aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.logger.InfoContext(ctx, "pipeline starting",
		slog.String("input", p.cfg.Paths.InputFile),
		slog.Int("from_year", p.cfg.Analysis.FromYear),
		slog.Int("to_year", p.cfg.Analysis.ToYear))

	table, err := dataset.Load(p.cfg.Paths.InputFile, p.logger)
	if err != nil {
		return nil, err
	}

	cleaned, err := dataset.Project(table, crime.RequiredColumns(), p.logger)
	if err != nil {
		return nil, err
	}

	records, err := crime.Derive(cleaned, p.cfg.Analysis.OnParseError, p.logger)
	if err != nil {
		return nil, err
	}

	filtered, err := crime.FilterYears(records, p.cfg.Analysis.Years(), p.logger)
	if err != nil {
		return nil, err
	}

	report, err := p.summarize(filtered)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "pipeline complete",
		slog.Int("records", report.TotalRecords),
		slog.Int("distinct_cases", report.DistinctCases),
		slog.Int("primary_types", len(report.ByType)))

	return report, nil
}

// summarize computes every summary table from the filtered records.
func (p *Pipeline) summarize(records []crime.Record) (*Report, error) {
	analysis := p.cfg.Analysis

	report := &Report{
		TotalRecords:  len(records),
		DistinctCases: aggregate.DistinctCases(records),
	}

	var err error

	report.ByType, err = aggregate.CountBy(records, []string{crime.ColPrimaryType},
		aggregate.Options{MinCount: analysis.MinTypeCount})
	if err != nil {
		return nil, err
	}

	report.ByYear, err = aggregate.CountBy(records, []string{"Year"}, aggregate.Options{})
	if err != nil {
		return nil, err
	}

	report.ByYearMonth, err = aggregate.CrossTabDense(records, "Year", "Month",
		yearDomain(analysis.Years()), monthDomain())
	if err != nil {
		return nil, err
	}

	report.WeekdayHour, err = aggregate.CrossTabDense(records, "Weekday", "Hour",
		crime.Weekdays(), hourDomain())
	if err != nil {
		return nil, err
	}

	report.TopLocations, err = aggregate.CountBy(records, []string{crime.ColLocationDescription},
		aggregate.Options{TopN: analysis.TopN})
	if err != nil {
		return nil, err
	}

	report.TopBlocks, err = aggregate.CountBy(records, []string{crime.ColBlock},
		aggregate.Options{TopN: analysis.TopN})
	if err != nil {
		return nil, err
	}

	report.ByDistrict, err = aggregate.CountBy(records, []string{crime.ColDistrict}, aggregate.Options{})
	if err != nil {
		return nil, err
	}

	report.ArrestsByYear, err = p.arrestsByYear(records)
	if err != nil {
		return nil, err
	}

	if err := p.homicideView(records, report); err != nil {
		return nil, err
	}

	return report, nil
}

// arrestsByYear pairs the per-year totals with the per-year arrest counts,
// ordered by year ascending.
func (p *Pipeline) arrestsByYear(records []crime.Record) ([]YearArrestShare, error) {
	arrests := make(map[int]int)
	totals := make(map[int]int)
	for _, r := range records {
		totals[r.Year]++
		if r.Arrest {
			arrests[r.Year]++
		}
	}

	shares := make([]YearArrestShare, 0, len(totals))
	for _, year := range p.cfg.Analysis.Years() {
		total, ok := totals[year]
		if !ok {
			continue
		}
		share := YearArrestShare{
			Year:    year,
			Total:   total,
			Arrests: arrests[year],
		}
		share.Share = float64(share.Arrests) / float64(share.Total)
		shares = append(shares, share)
	}

	return shares, nil
}

// homicideView fills the per-victim homicide tables and the map points.
func (p *Pipeline) homicideView(records []crime.Record, report *Report) error {
	homicides := make([]crime.Record, 0)
	for _, r := range records {
		if r.PrimaryType == HomicideType {
			homicides = append(homicides, r)
		}
	}

	var err error
	report.HomicideByYear, err = aggregate.CountBy(homicides, []string{"Year"}, aggregate.Options{})
	if err != nil {
		return err
	}

	report.HomicideTopBlocks, err = aggregate.CountBy(homicides, []string{crime.ColBlock},
		aggregate.Options{TopN: p.cfg.Analysis.TopN})
	if err != nil {
		return err
	}

	report.HomicidePoints = make([]MapPoint, len(homicides))
	for i, r := range homicides {
		report.HomicidePoints[i] = MapPoint{Latitude: r.Latitude, Longitude: r.Longitude}
	}
	report.HomicideBounds = boundsOf(report.HomicidePoints)

	return nil
}

// boundsOf computes the bounding box of a point set. An empty set yields the
// zero Bounds.
func boundsOf(points []MapPoint) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	b := Bounds{
		MinLatitude:  points[0].Latitude,
		MaxLatitude:  points[0].Latitude,
		MinLongitude: points[0].Longitude,
		MaxLongitude: points[0].Longitude,
	}
	for _, pt := range points[1:] {
		if pt.Latitude < b.MinLatitude {
			b.MinLatitude = pt.Latitude
		}
		if pt.Latitude > b.MaxLatitude {
			b.MaxLatitude = pt.Latitude
		}
		if pt.Longitude < b.MinLongitude {
			b.MinLongitude = pt.Longitude
		}
		if pt.Longitude > b.MaxLongitude {
			b.MaxLongitude = pt.Longitude
		}
	}
	return b
}

func yearDomain(years []int) []string {
	domain := make([]string, len(years))
	for i, y := range years {
		domain[i] = strconv.Itoa(y)
	}
	return domain
}

func monthDomain() []string {
	months := make([]string, 12)
	for m := 1; m <= 12; m++ {
		months[m-1] = strconv.Itoa(m)
	}
	return months
}

func hourDomain() []string {
	hours := make([]string, 24)
	for h := 0; h < 24; h++ {
		hours[h] = strconv.Itoa(h)
	}
	return hours
}
