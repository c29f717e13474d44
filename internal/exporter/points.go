package exporter

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apperrors "crimelens/internal/errors"
	"crimelens/internal/report"
)

// WritePoints writes a point set as a CSV of (Latitude, Longitude) pairs for
// the map renderer, plus a JSON sidecar next to it holding the bounding box
// the renderer centers on and the point count. Unlike the summary tables this
// file is machine-consumed, not opened in Excel, so no BOM is prepended.
func (w *CSVWriter) WritePoints(name string, points []report.MapPoint, bounds report.Bounds) error {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{
			strconv.FormatFloat(p.Latitude, 'f', -1, 64),
			strconv.FormatFloat(p.Longitude, 'f', -1, 64),
		}
	}

	if err := w.WriteCSV(name, WriteOptions{
		Headers: []string{"Latitude", "Longitude"},
		Records: records,
	}); err != nil {
		return err
	}

	sidecar := map[string]interface{}{
		"points":       len(points),
		"bounds":       bounds,
		"generated_at": time.Now().Format(time.RFC3339),
	}

	sidecarPath := boundsSidecarPath(w.resolvePath(name))
	file, err := os.Create(sidecarPath)
	if err != nil {
		return apperrors.NewStorageError("failed to create bounds sidecar", err).
			WithContext("path", sidecarPath)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(sidecar); err != nil {
		return apperrors.NewStorageError("failed to encode bounds sidecar", err).
			WithContext("path", sidecarPath)
	}

	w.logger.Info("wrote map points",
		slog.String("path", w.resolvePath(name)),
		slog.Int("points", len(points)))

	return nil
}

// boundsSidecarPath swaps the extension for "_bounds.json".
func boundsSidecarPath(csvPath string) string {
	ext := filepath.Ext(csvPath)
	return csvPath[:len(csvPath)-len(ext)] + "_bounds.json"
}
