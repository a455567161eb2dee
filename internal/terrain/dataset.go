package terrain

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ReadXYZ parses whitespace separated "x y z" lines. Blank lines and lines
// starting with '#' are skipped. x and y must be integral.
func ReadXYZ(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields, got %d", line, len(fields))
		}

		x, err := parseCoord(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid x: %w", line, err)
		}
		y, err := parseCoord(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid y: %w", line, err)
		}
		z, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid z: %w", line, err)
		}

		records = append(records, Record{X: x, Y: y, Z: z})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	return records, nil
}

// parseCoord accepts "600000" as well as "600000.0".
func parseCoord(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not integral", s)
	}
	return int(f), nil
}

// LoadXYZ reads an XYZ file and builds a grid. A zero extent is inferred
// from the records with DefaultSpacing.
func LoadXYZ(path string, ext Extent) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := ReadXYZ(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyGrid
	}

	if ext == (Extent{}) {
		ext, err = ExtentFromRecords(records, DefaultSpacing)
		if err != nil {
			return nil, err
		}
	}

	g, err := BuildGrid(records, ext)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded dataset", "path", path, "records", len(records), "width", g.Width(), "height", g.Height())
	return g, nil
}
