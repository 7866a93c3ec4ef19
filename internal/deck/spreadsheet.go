package deck

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetOptions selects where cards live in a spreadsheet: column A holds the
// question and column B the answer.
type SheetOptions struct {
	Sheet      string // empty means the first sheet
	SkipHeader bool
}

// ReadCardsFile reads cards from a .xlsx, .csv or plain text file, picked by
// extension. Plain text uses the "question - answer" line format.
func ReadCardsFile(path string, opts SheetOptions) ([]Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCards(f, filepath.Base(path), opts)
}

// ReadCards is ReadCardsFile for an already open upload; filename only
// selects the format.
func ReadCards(r io.Reader, filename string, opts SheetOptions) ([]Card, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadSpreadsheet(r, opts)
	case ".csv":
		return ReadCSV(r, opts.SkipHeader)
	default:
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		return Parse(string(raw)), nil
	}
}

// ReadSpreadsheet reads question/answer pairs from an Excel workbook.
func ReadSpreadsheet(r io.Reader, opts SheetOptions) ([]Card, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}
	return rowsToCards(rows, opts.SkipHeader), nil
}

// ReadCSV reads question/answer pairs from the first two CSV columns.
func ReadCSV(r io.Reader, skipHeader bool) ([]Card, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rowsToCards(rows, skipHeader), nil
}

func rowsToCards(rows [][]string, skipHeader bool) []Card {
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	pairs := make([]Card, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		c := Card{Question: row[0]}
		if len(row) > 1 {
			c.Answer = row[1]
		}
		pairs = append(pairs, c)
	}
	return normalize(pairs)
}
