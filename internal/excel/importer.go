package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for documents that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported document format")

const (
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Format is a supported document format
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	WordColumn       string // Column with the word
	DefinitionColumn string // Column with the definition
	SheetName        string // Sheet to import, empty means the first sheet
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:       "A",
		DefinitionColumn: "B",
		StartRow:         1, // Documents have no header row
	}
}

// Row is one word/definition pair read from a document
type Row struct {
	Word       string
	Definition string
}

// ImportResult holds the result of parsing a document
type ImportResult struct {
	Language       string
	Rows           []Row
	TotalProcessed int
	Skipped        int
}

// LanguageFromFileName returns the file name without its extension,
// lowercased: "ENG.csv" is "eng".
func LanguageFromFileName(name string) string {
	base := filepath.Base(name)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// DetectFormat picks the document format from the mime type, falling
// back to the file extension.
func DetectFormat(name, mime string) Format {
	switch strings.ToLower(mime) {
	case mimeCSV, "text/comma-separated-values":
		return FormatCSV
	case mimeXLSX:
		return FormatXLSX
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// ParseTerms reads word/definition rows from a CSV or XLSX document
// with the default configuration.
func ParseTerms(name, mime string, data []byte) (*ImportResult, error) {
	return ParseTermsWithConfig(DefaultImportConfig(), name, mime, data)
}

// ParseTermsWithConfig reads word/definition rows from a CSV or XLSX document
func ParseTermsWithConfig(config ImportConfig, name, mime string, data []byte) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)

	switch DetectFormat(name, mime) {
	case FormatCSV:
		rows, err = readCSV(data)
	case FormatXLSX:
		rows, err = readExcel(data, config.SheetName)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, name, mime)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Language: LanguageFromFileName(name)}
	wordIdx := columnToIndex(config.WordColumn)
	defIdx := columnToIndex(config.DefinitionColumn)

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++

		word := strings.ToLower(cell(row, wordIdx))
		definition := cell(row, defIdx)
		if word == "" || definition == "" {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, Row{Word: word, Definition: definition})
	}

	return result, nil
}

// readCSV reads every record of a CSV document
func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readExcel reads every row of one sheet of an XLSX document
func readExcel(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
