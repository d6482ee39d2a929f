package convenio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Upload is one uploaded spreadsheet.
type Upload struct {
	Filename string
	Content  []byte
}

var (
	// ErrNoFiles is returned when an ingestion receives no uploads.
	ErrNoFiles = errors.New("no files to ingest")
	// ErrEmptySheet is returned when a file has no header row.
	ErrEmptySheet = errors.New("sheet has no header row")
)

// UploadError reports a file that could not be parsed as a table.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("cannot read %q: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// sheet is the raw header and rows of one file.
type sheet struct {
	header []string
	rows   [][]string
}

var zipMagic = []byte("PK\x03\x04")

func readSheet(u Upload) (*sheet, error) {
	var (
		all [][]string
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(u.Filename)); {
	case ext == ".xlsx" || ext == ".xlsm" || ext == ".xltx":
		all, err = readWorkbook(u.Content)
	case ext == ".csv" || ext == ".txt":
		all, err = readDelimited(u.Content)
	case bytes.HasPrefix(u.Content, zipMagic):
		all, err = readWorkbook(u.Content)
	default:
		all, err = readDelimited(u.Content)
	}
	if err != nil {
		return nil, &UploadError{Filename: u.Filename, Err: err}
	}

	for len(all) > 0 && blankRow(all[0]) {
		all = all[1:]
	}
	if len(all) == 0 {
		return nil, &UploadError{Filename: u.Filename, Err: ErrEmptySheet}
	}
	return &sheet{header: all[0], rows: all[1:]}, nil
}

// readWorkbook reads the first worksheet with raw cell values, so number
// formats never reshape identifiers or amounts.
func readWorkbook(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

// readDelimited sniffs the delimiter from the first line and decodes
// non-UTF-8 content as Windows-1252.
func readDelimited(content []byte) ([][]string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(content)
	if !utf8.Valid(content) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	br := bufio.NewReader(src)
	peek, _ := br.Peek(4096)
	first := string(peek)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}

	r := csv.NewReader(br)
	switch {
	case strings.Count(first, ";") > strings.Count(first, ","):
		r.Comma = ';'
	case strings.Contains(first, "\t") && !strings.Contains(first, ","):
		r.Comma = '\t'
	default:
		r.Comma = ','
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
