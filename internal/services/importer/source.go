package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"invoice_recorder/internal/ports"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var ErrEmptyFile = errors.New("file has no header row")

type csvSource struct {
	r      *csv.Reader
	header []string
}

func newCSVSource(r io.Reader) (*csvSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &csvSource{r: cr, header: cleanHeader(header)}, nil
}

func (s *csvSource) Header() []string { return s.header }

func (s *csvSource) Next() (map[string]string, error) {
	rec, err := s.r.Read()
	if err != nil {
		return nil, err
	}
	return toMap(s.header, rec), nil
}

// xlsxSource streams the first sheet of a workbook.
type xlsxSource struct {
	f      *excelize.File
	rows   *excelize.Rows
	header []string
}

func newXLSXSource(r io.Reader) (*xlsxSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &xlsxSource{f: f, rows: rows}
	if !rows.Next() {
		err := rows.Error()
		s.Close()
		if err != nil {
			return nil, err
		}
		return nil, ErrEmptyFile
	}
	header, err := rows.Columns()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.header = cleanHeader(header)
	return s, nil
}

func (s *xlsxSource) Header() []string { return s.header }

// Next skips blank rows the way the csv reader skips empty lines.
func (s *xlsxSource) Next() (map[string]string, error) {
	for s.rows.Next() {
		cols, err := s.rows.Columns()
		if err != nil {
			return nil, err
		}
		if blank(cols) {
			continue
		}
		return toMap(s.header, cols), nil
	}
	if err := s.rows.Error(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *xlsxSource) Close() error {
	s.rows.Close()
	return s.f.Close()
}

// openSource picks the reader by the detected format, sniffing the zip
// signature when neither the name nor the content type tell.
func openSource(r io.Reader, format string) (ports.RowSource, string, error) {
	br := bufio.NewReader(r)
	if format == "" {
		format = FormatCSV
		if sig, _ := br.Peek(4); string(sig) == "PK\x03\x04" {
			format = FormatXLSX
		}
	}

	if format == FormatXLSX {
		src, err := newXLSXSource(br)
		return src, format, err
	}
	src, err := newCSVSource(br)
	return src, format, err
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[key] = strings.TrimSpace(val)
	}
	return m
}

func cleanHeader(h []string) []string {
	out := make([]string, len(h))
	for i, k := range h {
		out[i] = strings.TrimSpace(k)
	}
	return out
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case FormatXLSX:
		return FormatXLSX
	case FormatCSV:
		return FormatCSV
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case "text/csv", "application/csv", "text/plain":
		return FormatCSV
	}
	return ""
}
