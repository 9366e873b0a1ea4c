package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/primdb/primdb/internal/types"
)

// Store is the persistence boundary the engine talks to. One table maps to
// one document; the set of documents is the whole catalog.
type Store interface {
	Exists(name string) bool
	Load(name string) (*types.Table, error)
	Save(table *types.Table) error
	Delete(name string) error
	List() ([]string, error)
}

// JSONStore keeps each table in its own JSON file, <name>.json, under a
// single data directory. Every mutation rewrites the whole file.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a store rooted at dir, creating the directory if
// needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", types.ErrStorage, err)
	}
	return &JSONStore{dir: dir}, nil
}

// Mirror structs for the on-disk document. Columns are an ordered array so
// declaration order (ID first) survives the round trip.
type jsonTable struct {
	Table   string           `json:"table"`
	Columns []jsonColumn     `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type jsonColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Exists reports whether a table's backing file is present.
func (s *JSONStore) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Load reads and validates a table's document. A missing file is
// ErrTableNotFound; anything unreadable or inconsistent is ErrStorage.
func (s *JSONStore) Load(name string) (*types.Table, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", types.ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("%w: reading table %q: %v", types.ErrStorage, name, err)
	}

	var doc jsonTable
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding table %q: %v", types.ErrStorage, name, err)
	}

	table := &types.Table{
		Name:    doc.Table,
		Columns: make([]types.Column, len(doc.Columns)),
		Rows:    make([]types.Row, len(doc.Rows)),
	}

	for i, col := range doc.Columns {
		ct, err := types.ParseColumnType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: table %q column %q: %v", types.ErrStorage, name, col.Name, err)
		}
		table.Columns[i] = types.Column{Name: col.Name, Type: ct}
	}

	for i, raw := range doc.Rows {
		row, err := decodeRow(table, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: table %q row %d: %v", types.ErrStorage, name, i, err)
		}
		table.Rows[i] = row
	}

	return table, nil
}

// decodeRow checks a stored row against the schema: exactly the declared
// columns, each with a value of its declared type. Integers arrive as
// json.Number and come out as int64.
func decodeRow(table *types.Table, raw map[string]any) (types.Row, error) {
	if len(raw) != len(table.Columns) {
		return nil, fmt.Errorf("has %d values, schema declares %d columns", len(raw), len(table.Columns))
	}

	row := make(types.Row, len(raw))
	for _, col := range table.Columns {
		v, ok := raw[col.Name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col.Name)
		}
		switch col.Type {
		case types.IntType:
			num, ok := v.(json.Number)
			if !ok {
				return nil, fmt.Errorf("column %q: %v is not an integer", col.Name, v)
			}
			n, err := num.Int64()
			if err != nil {
				return nil, fmt.Errorf("column %q: %v is not an integer", col.Name, num)
			}
			row[col.Name] = n
		case types.StrType:
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("column %q: %v is not a string", col.Name, v)
			}
			row[col.Name] = str
		case types.BoolType:
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("column %q: %v is not a boolean", col.Name, v)
			}
			row[col.Name] = b
		}
	}
	return row, nil
}

// Save rewrites a table's document. The write goes to a temp file in the
// same directory and is renamed over the old one, so a crash mid-write
// leaves the previous version intact.
func (s *JSONStore) Save(table *types.Table) error {
	doc := jsonTable{
		Table:   table.Name,
		Columns: make([]jsonColumn, len(table.Columns)),
		Rows:    make([]map[string]any, len(table.Rows)),
	}
	for i, col := range table.Columns {
		doc.Columns[i] = jsonColumn{Name: col.Name, Type: col.Type.String()}
	}
	for i, row := range table.Rows {
		doc.Rows[i] = row
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding table %q: %v", types.ErrStorage, table.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, table.Name+".json.tmp")
	if err != nil {
		return fmt.Errorf("%w: writing table %q: %v", types.ErrStorage, table.Name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing table %q: %v", types.ErrStorage, table.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing table %q: %v", types.ErrStorage, table.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(table.Name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing table %q: %v", types.ErrStorage, table.Name, err)
	}
	return nil
}

// Delete removes a table's backing file.
func (s *JSONStore) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", types.ErrTableNotFound, name)
		}
		return fmt.Errorf("%w: deleting table %q: %v", types.ErrStorage, name, err)
	}
	return nil
}

// List returns the names of all tables in the data directory, sorted.
func (s *JSONStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", types.ErrStorage, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
