// Package engine implements the table operations behind the command
// language: each exported method is one command shape. Every call loads
// the table, validates, mutates in memory and persists before returning;
// no state survives between calls.
package engine

import (
	"fmt"

	"github.com/primdb/primdb/internal/storage"
	"github.com/primdb/primdb/internal/types"
)

// Engine executes commands against a Store.
type Engine struct {
	store storage.Store
}

// New creates an engine on top of the given store.
func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// CreateTable creates and persists a new empty table. The ID:int column is
// prepended to the declared columns.
func (e *Engine) CreateTable(name string, specs []types.ColumnSpec) (*types.Table, error) {
	if e.store.Exists(name) {
		return nil, fmt.Errorf("%w: %q", types.ErrDuplicateTable, name)
	}

	table := &types.Table{
		Name:    name,
		Columns: []types.Column{{Name: types.IDColumn, Type: types.IntType}},
	}

	seen := map[string]bool{types.IDColumn: true}
	for _, spec := range specs {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateColumn, spec.Name)
		}
		seen[spec.Name] = true

		ct, err := types.ParseColumnType(spec.Type)
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, types.Column{Name: spec.Name, Type: ct})
	}

	if err := e.store.Save(table); err != nil {
		return nil, err
	}
	return table, nil
}

// DropTable removes a table and its backing file. Confirmation is the
// caller's business; once invoked, the drop is unconditional.
func (e *Engine) DropTable(name string) error {
	return e.store.Delete(name)
}

// ListTables returns the names of all known tables. An empty database is
// an empty list, not an error.
func (e *Engine) ListTables() ([]string, error) {
	return e.store.List()
}

// Info returns the table with its schema and current rows.
func (e *Engine) Info(name string) (*types.Table, error) {
	return e.store.Load(name)
}

// Insert validates the literals against the non-ID columns in declaration
// order, assigns the next ID and persists the new row. Returns the
// assigned ID.
func (e *Engine) Insert(name string, values []types.Literal) (int64, error) {
	table, err := e.store.Load(name)
	if err != nil {
		return 0, err
	}

	declared := len(table.Columns) - 1
	if len(values) != declared {
		return 0, fmt.Errorf("%w: expected %d values, got %d", types.ErrColumnCountMismatch, declared, len(values))
	}

	id := table.NextID()
	row := types.Row{types.IDColumn: id}
	for i, lit := range values {
		col := table.Columns[i+1]
		v, err := types.Coerce(lit, col.Type)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", col.Name, err)
		}
		row[col.Name] = v
	}

	table.Rows = append(table.Rows, row)
	if err := e.store.Save(table); err != nil {
		return 0, err
	}
	return id, nil
}

// Select returns the rows matching the optional equality filter, in
// storage order. No filter means all rows; no match means an empty set.
func (e *Engine) Select(name string, where *types.Condition) ([]types.Row, error) {
	table, err := e.store.Load(name)
	if err != nil {
		return nil, err
	}

	if where == nil {
		return table.Rows, nil
	}

	match, err := e.compileFilter(table, *where)
	if err != nil {
		return nil, err
	}

	results := []types.Row{}
	for _, row := range table.Rows {
		if match(row) {
			results = append(results, row)
		}
	}
	return results, nil
}

// Update assigns the set column on every row matching the filter and
// persists. Returns the number of rows updated; zero matches is not an
// error. The ID column cannot be assigned.
func (e *Engine) Update(name string, set, where types.Condition) (int, error) {
	table, err := e.store.Load(name)
	if err != nil {
		return 0, err
	}

	if set.Column == types.IDColumn {
		return 0, fmt.Errorf("%w: %q", types.ErrImmutableColumn, types.IDColumn)
	}
	col, ok := table.Column(set.Column)
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrColumnNotFound, set.Column)
	}
	value, err := types.Coerce(set.Value, col.Type)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", col.Name, err)
	}

	match, err := e.compileFilter(table, where)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range table.Rows {
		if match(row) {
			row[set.Column] = value
			count++
		}
	}

	if err := e.store.Save(table); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes every row matching the filter and persists. Returns the
// number of rows deleted; zero matches is not an error.
func (e *Engine) Delete(name string, where types.Condition) (int, error) {
	table, err := e.store.Load(name)
	if err != nil {
		return 0, err
	}

	match, err := e.compileFilter(table, where)
	if err != nil {
		return 0, err
	}

	kept := make([]types.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		if !match(row) {
			kept = append(kept, row)
		}
	}
	count := len(table.Rows) - len(kept)
	table.Rows = kept

	if err := e.store.Save(table); err != nil {
		return 0, err
	}
	return count, nil
}

// Export snapshots a table to a Parquet file at path and returns the
// number of rows written.
func (e *Engine) Export(name, path string) (int, error) {
	table, err := e.store.Load(name)
	if err != nil {
		return 0, err
	}
	if err := storage.ExportParquet(table, path); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}

// compileFilter resolves a condition against the schema and returns the
// row predicate. Equality is exact on both type and value: the literal is
// coerced to the filter column's declared type before comparing, so there
// is never a cross-type match.
func (e *Engine) compileFilter(table *types.Table, where types.Condition) (func(types.Row) bool, error) {
	col, ok := table.Column(where.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrColumnNotFound, where.Column)
	}
	value, err := types.Coerce(where.Value, col.Type)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", col.Name, err)
	}
	return func(row types.Row) bool {
		return row[where.Column] == value
	}, nil
}
