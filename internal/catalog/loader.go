package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
	"github.com/kona-labs/study-advisor-go/internal/logger"
)

// Required catalogue columns. Extra columns are ignored.
var requiredColumns = []string{"program", "university_name", "duration", "fees", "ielts", "toefl"}

// Load reads the program catalogue from the given CSV path.
// The read chain mirrors the offline pipeline's export quirks:
//  1. CSV decoded as UTF-8
//  2. CSV decoded as Latin-1 when the bytes are not valid UTF-8
//  3. the .xlsx sibling when the CSV is absent or unparsable
//
// Any failure after the chain is exhausted is a fatal load-time error.
func Load(path string, log *logger.Logger) (*Store, error) {
	records, csvErr := loadCSV(path)
	if csvErr == nil {
		log.WithField("path", path).WithField("records", len(records)).Info("Catalogue loaded")
		return &Store{records: records, path: path}, nil
	}

	xlsxPath := strings.TrimSuffix(path, ".csv") + ".xlsx"
	records, xlsxErr := loadXLSX(xlsxPath)
	if xlsxErr == nil {
		log.WithField("path", xlsxPath).
			WithField("records", len(records)).
			WithError(csvErr).
			Warn("CSV unreadable, catalogue loaded from spreadsheet fallback")
		return &Store{records: records, path: xlsxPath}, nil
	}

	return nil, apperrors.NewLoadError("catalogue", path,
		fmt.Errorf("csv: %w; xlsx fallback (%s): %v", csvErr, xlsxPath, xlsxErr))
}

// loadCSV parses the CSV file, retrying as Latin-1 on invalid UTF-8.
func loadCSV(path string) ([]ProgramRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	// Spreadsheet exports often prepend a UTF-8 BOM; left in place it would
	// glue itself onto the first header name.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if !utf8.Valid(data) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("latin-1 decode: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows, column mapping handles the rest
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return rowsToRecords(rows)
}

// loadXLSX parses the first sheet of the spreadsheet fallback.
func loadXLSX(path string) ([]ProgramRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return rowsToRecords(rows)
}

// rowsToRecords maps a header row plus data rows into ProgramRecords.
// Column order is taken from the header; missing required columns abort.
func rowsToRecords(rows [][]string) ([]ProgramRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalogue is empty")
	}

	colIndex := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	records := make([]ProgramRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, ProgramRecord{
			Program:    ParseNullableString(cell(row, colIndex["program"])),
			University: ParseNullableString(cell(row, colIndex["university_name"])),
			Duration:   ParseNullableString(cell(row, colIndex["duration"])),
			Fees:       ParseNullableFloat(cell(row, colIndex["fees"])),
			IELTS:      ParseNullableFloat(cell(row, colIndex["ielts"])),
			TOEFL:      ParseNullableFloat(cell(row, colIndex["toefl"])),
		})
	}

	return records, nil
}

// cell returns the field at index i, or "" when the row is too short.
// xlsx rows drop trailing empty cells, so short rows are normal.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
