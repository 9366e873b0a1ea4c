package types

import (
	"fmt"
	"strings"
)

// IDColumn is the implicit primary column present in every table.
// It is assigned by the engine and can never be written by the user.
const IDColumn = "ID"

// ColumnType is the closed set of column types a table may declare.
type ColumnType int

const (
	IntType ColumnType = iota
	StrType
	BoolType
)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "int"
	case StrType:
		return "str"
	case BoolType:
		return "bool"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseColumnType maps a type tag from a command or a stored schema to its
// ColumnType. Unknown tags fail with ErrInvalidType.
func ParseColumnType(tag string) (ColumnType, error) {
	switch tag {
	case "int":
		return IntType, nil
	case "str":
		return StrType, nil
	case "bool":
		return BoolType, nil
	default:
		return 0, fmt.Errorf("%w: %q (allowed: int, str, bool)", ErrInvalidType, tag)
	}
}

// Column is one declared column of a table.
type Column struct {
	Name string
	Type ColumnType
}

// ColumnSpec is a raw column declaration from a create_table command. The
// type tag is kept as text so that validation happens in the engine, not
// the parser.
type ColumnSpec struct {
	Name string
	Type string
}

// Row maps column names to stored values. Values are one of int64, string
// or bool, matching the column's declared type.
type Row map[string]any

// Table is a named schema plus its rows. Columns are ordered, ID first.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// Column returns the declared column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// NextID returns the ID the next inserted row receives: one more than the
// current maximum, or 1 for an empty table. IDs freed by deleting the
// highest rows are handed out again.
func (t *Table) NextID() int64 {
	var max int64
	for _, row := range t.Rows {
		if id, ok := row[IDColumn].(int64); ok && id > max {
			max = id
		}
	}
	return max + 1
}

// SchemaString renders the schema as "ID:int, name:str, ..." for info and
// creation messages.
func (t *Table) SchemaString() string {
	parts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		parts[i] = fmt.Sprintf("%s:%s", col.Name, col.Type)
	}
	return strings.Join(parts, ", ")
}
