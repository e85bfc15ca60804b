// Package converter turns the raw nutrient databank spreadsheet into the
// cleaned JSON document consumed by the mobile application.
package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beanhealth/nutridb-export/converter/entities"
	"github.com/beanhealth/nutridb-export/interfaces"
	"github.com/beanhealth/nutridb-export/logging"
)

// Compile-time check to ensure NutrientConverter implements Converter interface
var _ interfaces.Converter = (*NutrientConverter)(nil)

// Source columns of the databank. food_name is the only textual column; the
// rest are numeric per-100g values.
const (
	colFoodName     = "food_name"
	colEnergyKcal   = "energy_kcal"
	colProteinG     = "protein_g"
	colFatG         = "fat_g"
	colCarbG        = "carb_g"
	colSodiumMg     = "sodium_mg"
	colPotassiumMg  = "potassium_mg"
	colPhosphorusMg = "phosphorus_mg"
)

// requiredColumns lists every column the export needs, in output order.
var requiredColumns = []string{
	colFoodName,
	colEnergyKcal,
	colProteinG,
	colFatG,
	colCarbG,
	colSodiumMg,
	colPotassiumMg,
	colPhosphorusMg,
}

// NutrientConverter implements the Converter interface
type NutrientConverter struct {
	sheetName string
}

// NewNutrientConverter creates a converter that reads the given sheet from
// workbook sources. The sheet name is ignored for CSV sources, which carry a
// single table.
func NewNutrientConverter(sheetName string) *NutrientConverter {
	return &NutrientConverter{sheetName: sheetName}
}

// Convert implements the Converter interface. It loads the source table,
// resolves the required columns, cleans every row into a nutrient record and
// writes the indented JSON array to destPath. The destination file is not
// touched until serialization has succeeded, so a failed run never replaces
// a previous export with a partial one.
func (c *NutrientConverter) Convert(ctx context.Context, sourcePath string, destPath string) ([]entities.Nutrient, *interfaces.ExportStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	table, err := c.loadTable(sourcePath)
	if err != nil {
		return nil, nil, err
	}

	columns, err := resolveColumns(table.header)
	if err != nil {
		return nil, nil, err
	}

	nutrients, stats, err := buildNutrients(table, columns)
	if err != nil {
		return nil, nil, err
	}

	// Log cleaning statistics if any cells or rows needed attention
	if stats.EmptyRowsSkipped > 0 || len(stats.CellsFilled) > 0 || len(stats.CellsUnparseable) > 0 {
		logging.Info("Source table cleaning statistics",
			"source", sourcePath,
			"rows_read", stats.RowsRead,
			"empty_rows", stats.EmptyRowsSkipped,
			"cells_filled", stats.CellsFilled,
			"cells_unparseable", stats.CellsUnparseable,
			"records_built", len(nutrients))
	}

	jsonNutrients, err := json.MarshalIndent(nutrients, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.WriteFile(destPath, jsonNutrients, 0644); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to write %s: %w", ErrWrite, destPath, err)
	}

	return nutrients, stats, nil
}

// loadTable dispatches on the source file extension. The old binary .xls
// format is not supported; the databank is published as .xlsx with a CSV
// mirror.
func (c *NutrientConverter) loadTable(path string) (*sourceTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, c.sheetName)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: unsupported source format %q (want .xlsx, .xlsm or .csv)", ErrLoad, filepath.Ext(path))
	}
}

// resolveColumns maps each required source column to its index in the header
// row. Header cells are trimmed before matching because hand-edited
// spreadsheets often carry stray whitespace. When a header name appears
// twice, the first occurrence wins. All missing columns are reported
// together so one failed run surfaces the whole problem.
func resolveColumns(header []string) (map[string]int, error) {
	seen := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; !dup {
			seen[name] = i
		}
	}

	columns := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		if i, ok := seen[col]; ok {
			columns[col] = i
		} else {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: source table is missing required columns: %s", ErrSchema, strings.Join(missing, ", "))
	}

	return columns, nil
}

// buildNutrients cleans every data row into a nutrient record. Rows are
// never filtered: a row with junk in its numeric cells still yields a record
// with those cells coerced to 0 and counted in the stats. Only rows that are
// blank in every cell are dropped, since those are spreadsheet padding, not
// data.
func buildNutrients(table *sourceTable, columns map[string]int) ([]entities.Nutrient, *interfaces.ExportStats, error) {
	stats := &interfaces.ExportStats{
		RowsRead:         len(table.rows),
		CellsFilled:      make(map[string]int),
		CellsUnparseable: make(map[string]int),
	}

	nutrients := make([]entities.Nutrient, 0, len(table.rows))

	for rowNum, row := range table.rows {
		if rowIsEmpty(row) {
			stats.EmptyRowsSkipped++
			continue
		}

		record := entities.Nutrient{
			Name: strings.TrimSpace(cellAt(row, columns[colFoodName])),
		}

		numeric := []struct {
			column string
			field  *float64
		}{
			{colEnergyKcal, &record.Calories},
			{colProteinG, &record.ProteinG},
			{colFatG, &record.FatG},
			{colCarbG, &record.CarbG},
			{colSodiumMg, &record.SodiumMg},
			{colPotassiumMg, &record.PotassiumMg},
			{colPhosphorusMg, &record.PhosphorusMg},
		}

		for _, n := range numeric {
			value, outcome := parseNumericCell(cellAt(row, columns[n.column]))
			switch outcome {
			case cellFilled:
				stats.CellsFilled[n.column]++
			case cellUnparseable:
				stats.CellsUnparseable[n.column]++
			}
			if math.IsInf(value, 0) {
				// Header is row 1, so data row N sits at sheet row N+1
				return nil, nil, fmt.Errorf("%w: non-finite value in column %s, row %d", ErrSerialization, n.column, rowNum+2)
			}
			*n.field = roundToTenth(value)
		}

		nutrients = append(nutrients, record)
	}

	return nutrients, stats, nil
}

type cellOutcome int

const (
	cellParsed      cellOutcome = iota
	cellFilled                  // blank cell or null marker, coerced to 0
	cellUnparseable             // non-numeric text, coerced to 0
)

// nullMarkers are the spellings of "no value" that spreadsheet and dataframe
// exports commonly write into cells, matched case-insensitively.
var nullMarkers = map[string]bool{
	"na":   true,
	"n/a":  true,
	"#n/a": true,
	"nan":  true,
	"null": true,
	"none": true,
}

// parseNumericCell turns one raw cell into a float64. Absent values become 0
// per the export contract; text that is neither a number nor a null marker
// also becomes 0 but is counted separately so bad source data is visible in
// the logs.
func parseNumericCell(raw string) (float64, cellOutcome) {
	s := strings.TrimSpace(raw)
	if s == "" || nullMarkers[strings.ToLower(s)] {
		return 0, cellFilled
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, cellUnparseable
	}
	if math.IsNaN(v) {
		return 0, cellFilled
	}
	return v, cellParsed
}

// cellAt is bounds-safe: workbook rows omit trailing empty cells, so a short
// row just means those cells are blank.
func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// roundToTenth rounds to one decimal place with ties going away from zero,
// so 2.25 becomes 2.3 and -2.25 becomes -2.3.
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
