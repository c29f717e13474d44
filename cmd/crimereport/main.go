package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"crimelens/internal/config"
	"crimelens/internal/crime"
	"crimelens/internal/exporter"
	"crimelens/internal/infrastructure"
	"crimelens/internal/report"

	apperrors "crimelens/internal/errors"
)

func main() {
	input := flag.String("input", "", "input CSV file (defaults to paths.input_file from config)")
	out := flag.String("out", "", "output directory for report artifacts (defaults to paths.reports_dir)")
	configFile := flag.String("config", "", "path to config.yaml (defaults to config.yaml in the working directory)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Paths.InputFile = *input
	}
	if *out != "" {
		cfg.Paths.ReportsDir = *out
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	ctx := infrastructure.WithRunID(context.Background(), uuid.NewString())

	logger.InfoContext(ctx, "crimereport starting",
		slog.String("input", cfg.Paths.InputFile),
		slog.String("reports_dir", cfg.Paths.ReportsDir))

	rpt, err := report.New(cfg, logger).Run(ctx)
	if err != nil {
		fail(ctx, logger, err)
	}

	if err := writeArtifacts(cfg, logger, rpt); err != nil {
		fail(ctx, logger, err)
	}

	logger.InfoContext(ctx, "crimereport complete",
		slog.Int("records", rpt.TotalRecords),
		slog.Int("distinct_cases", rpt.DistinctCases))
}

// writeArtifacts renders every summary table of the report.
func writeArtifacts(cfg *config.Config, logger *slog.Logger, rpt *report.Report) error {
	csvWriter := exporter.NewCSVWriter(cfg.Paths.ReportsDir, logger)

	if err := csvWriter.WriteGroups("by_type.csv", []string{crime.ColPrimaryType}, rpt.ByType); err != nil {
		return err
	}
	if err := csvWriter.WriteGroups("by_year.csv", []string{"Year"}, rpt.ByYear); err != nil {
		return err
	}
	if err := csvWriter.WriteGroups("top_locations.csv", []string{crime.ColLocationDescription}, rpt.TopLocations); err != nil {
		return err
	}
	if err := csvWriter.WriteGroups("top_blocks.csv", []string{crime.ColBlock}, rpt.TopBlocks); err != nil {
		return err
	}
	if err := csvWriter.WriteGroups("by_district.csv", []string{crime.ColDistrict}, rpt.ByDistrict); err != nil {
		return err
	}
	if err := csvWriter.WriteGroups("homicide_by_year.csv", []string{"Year"}, rpt.HomicideByYear); err != nil {
		return err
	}
	if err := csvWriter.WriteGroups("homicide_top_blocks.csv", []string{crime.ColBlock}, rpt.HomicideTopBlocks); err != nil {
		return err
	}

	if err := csvWriter.WriteMatrix("year_month.csv", "Year", rpt.ByYearMonth); err != nil {
		return err
	}
	if err := csvWriter.WriteMatrix("weekday_hour.csv", "Weekday", rpt.WeekdayHour); err != nil {
		return err
	}

	if err := writeArrestShares(csvWriter, rpt.ArrestsByYear); err != nil {
		return err
	}

	if err := csvWriter.WritePoints("homicide_points.csv", rpt.HomicidePoints, rpt.HomicideBounds); err != nil {
		return err
	}

	workbook := exporter.NewWorkbookWriter(logger)
	return workbook.Write(cfg.GetReportPath("crime_report.xlsx"), rpt)
}

// writeArrestShares renders the per-year arrest outcome table.
func writeArrestShares(w *exporter.CSVWriter, shares []report.YearArrestShare) error {
	records := make([][]string, len(shares))
	for i, s := range shares {
		records[i] = []string{
			strconv.Itoa(s.Year),
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Arrests),
			strconv.FormatFloat(s.Share, 'f', 4, 64),
		}
	}
	return w.WriteCSV("arrests_by_year.csv", exporter.WriteOptions{
		Headers:   []string{"Year", "Records", "Arrests", "Arrest Share"},
		Records:   records,
		BOMPrefix: true,
	})
}

// fail logs the error with its kind and context, then exits non-zero.
func fail(ctx context.Context, logger *slog.Logger, err error) {
	attrs := []any{slog.String("error", err.Error())}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		attrs = append(attrs, slog.String("kind", string(appErr.Type)))
		for key, value := range appErr.Context {
			attrs = append(attrs, slog.Any(key, value))
		}
	}
	logger.ErrorContext(ctx, "run failed", attrs...)
	os.Exit(1)
}
