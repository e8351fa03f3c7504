package flatfile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/catalog/core"
)

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeID maps an id to a file name: every character outside [A-Za-z0-9._-] becomes '_'.
func SanitizeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "_")
}

// rowCodec converts a T to and from the fields of one record.
type rowCodec[T any] struct {
	columns int
	encode  func(v T) []string
	decode  func(fields []string) (T, error)
}

// Table is a directory holding one file per entity, named after the entity's sanitized id.
type Table[T any] struct {
	dir    string
	ext    string
	codec  rowCodec[T]
	logger core.Logger
}

func newTable[T any](dir, ext string, codec rowCodec[T], logger core.Logger) *Table[T] {
	return &Table[T]{dir: dir, ext: ext, codec: codec, logger: logger}
}

func (t *Table[T]) Dir() string { return t.dir }

func (t *Table[T]) path(id string) string {
	return filepath.Join(t.dir, SanitizeID(id)+t.ext)
}

// files returns the table's file ids (file names without extension). A missing directory holds no file.
func (t *Table[T]) files() ([]string, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.NewStorageError(t.dir, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, t.ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, t.ext))
	}
	return ids, nil
}

func (t *Table[T]) readFile(fileID string) ([][]string, []error, error) {
	path := filepath.Join(t.dir, fileID+t.ext)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, core.NewStorageError(path, err)
	}
	defer f.Close()

	records, bad, err := readRecords(f)
	if err != nil {
		return nil, nil, core.NewStorageError(path, err)
	}
	return records, bad, nil
}

func (t *Table[T]) decode(fields []string) (T, error) {
	fields, err := pad(fields, t.codec.columns)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.codec.decode(fields)
}

func (t *Table[T]) skip(fileID string, err error) {
	t.logger.Warn("skipping bad record in "+filepath.Join(t.dir, fileID+t.ext), err)
}

// List decodes the first record of every file. A file that cannot be read or decoded is skipped
// with a diagnostic. Order is whatever the filesystem returns.
func (t *Table[T]) List() ([]T, error) {
	ids, err := t.files()
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(ids))
	for _, id := range ids {
		records, bad, err := t.readFile(id)
		if err != nil {
			t.skip(id, err)
			continue
		}
		if len(bad) > 0 {
			t.skip(id, bad[0])
			continue
		}
		var fields []string
		if len(records) > 0 {
			fields = records[0]
		}
		if len(records) > 1 {
			t.skip(id, errors.Errorf("expected a single record, got %d", len(records)))
			continue
		}
		item, err := t.decode(fields)
		if err != nil {
			t.skip(id, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ListRows decodes every record of every file, keyed by file id. Bad records are skipped
// with a diagnostic and the rest of the file still loads.
func (t *Table[T]) ListRows() (map[string][]T, error) {
	ids, err := t.files()
	if err != nil {
		return nil, err
	}
	rows := make(map[string][]T, len(ids))
	for _, id := range ids {
		records, bad, err := t.readFile(id)
		if err != nil {
			t.skip(id, err)
			continue
		}
		for _, bErr := range bad {
			t.skip(id, bErr)
		}
		items := make([]T, 0, len(records))
		for _, rec := range records {
			item, err := t.decode(rec)
			if err != nil {
				t.skip(id, err)
				continue
			}
			items = append(items, item)
		}
		rows[id] = items
	}
	return rows, nil
}

// Put overwrites the file of `id` with the single record of `v`.
func (t *Table[T]) Put(id string, v T) error {
	return t.PutRows(id, []T{v})
}

// PutRows overwrites the file of `id` with one record per row. An empty slice leaves an empty file.
func (t *Table[T]) PutRows(id string, rows []T) error {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(EncodeRecord(t.codec.encode(row)))
		buf.WriteByte('\n')
	}
	path := t.path(id)
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return core.NewStorageError(path, err)
	}
	return nil
}

// Delete removes the file of `id`. A missing file is not an error.
func (t *Table[T]) Delete(id string) error {
	path := t.path(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return core.NewStorageError(path, err)
	}
	return nil
}

// writeFileAtomic replaces `path` through a temp file in the same directory.
// The temp handle is closed on every path and the temp file removed unless renamed.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpName := path + ".tmp-" + uuid.New().String()
	tmp, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
