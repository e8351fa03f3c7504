package flatfile

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	fieldSep = ','
	listSep  = ";" // inner separator, e.g. the roster inside a course record
)

var ErrArity = errors.New("unexpected number of fields")

// EncodeRecord joins fields into one line. A field holding a comma, double quote or newline
// is wrapped in double quotes and its inner double quotes are doubled.
func EncodeRecord(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(fieldSep)
		}
		if strings.ContainsAny(f, ",\"\r\n") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(f)
		}
	}
	return b.String()
}

// DecodeRecord parses one record and pads it with empty fields up to `columns`.
func DecodeRecord(line string, columns int) ([]string, error) {
	records, bad, err := readRecords(strings.NewReader(line))
	if err != nil {
		return nil, err
	}
	if len(bad) > 0 {
		return nil, bad[0]
	}
	switch len(records) {
	case 0:
		return pad(nil, columns)
	case 1:
		return pad(records[0], columns)
	default:
		return nil, errors.Errorf("expected a single record, got %d", len(records))
	}
}

func pad(fields []string, columns int) ([]string, error) {
	if len(fields) > columns {
		return nil, errors.Wrapf(ErrArity, "got %d, want at most %d", len(fields), columns)
	}
	for len(fields) < columns {
		fields = append(fields, "")
	}
	return fields, nil
}

// readRecords parses every record of `r`. Blank lines are skipped; quoted fields may span lines.
// A malformed record is reported in `bad` and parsing resumes with the next one.
func readRecords(r io.Reader) (records [][]string, bad []error, err error) {
	cr := csv.NewReader(r)
	cr.Comma = fieldSep
	cr.FieldsPerRecord = -1

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return records, bad, nil
		}
		if err != nil {
			var pErr *csv.ParseError
			if errors.As(err, &pErr) {
				bad = append(bad, errors.Wrap(err, "parsing record"))
				continue
			}
			return records, bad, errors.Wrap(err, "reading records")
		}
		records = append(records, rec)
	}
}

func joinList(items []string) string { return strings.Join(items, listSep) }

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var items []string
	for _, it := range strings.Split(s, listSep) {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	return items
}
