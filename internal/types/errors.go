package types

import "errors"

// Error kinds surfaced by the core. Every operation either returns its
// payload or fails with exactly one of these; the command loop matches
// them with errors.Is and keeps running.
var (
	// ErrParse indicates a command line that matches no known shape.
	ErrParse = errors.New("parse error")

	// ErrTableNotFound indicates an operation on a table that has no
	// backing file.
	ErrTableNotFound = errors.New("table does not exist")

	// ErrDuplicateTable indicates create_table on an existing table.
	ErrDuplicateTable = errors.New("table already exists")

	// ErrDuplicateColumn indicates a repeated column name or a collision
	// with the reserved ID column.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrInvalidType indicates a type tag outside {int, str, bool}.
	ErrInvalidType = errors.New("invalid column type")

	// ErrColumnCountMismatch indicates an insert whose value count does
	// not match the table's declared columns.
	ErrColumnCountMismatch = errors.New("column count mismatch")

	// ErrColumnNotFound indicates a filter or assignment naming a column
	// absent from the schema.
	ErrColumnNotFound = errors.New("column does not exist")

	// ErrTypeMismatch indicates a literal that does not coerce to its
	// column's declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrImmutableColumn indicates an attempt to update the ID column.
	ErrImmutableColumn = errors.New("column is immutable")

	// ErrStorage indicates an unrecoverable I/O failure in the storage
	// layer (disk full, permissions, corrupt file).
	ErrStorage = errors.New("storage failure")
)
