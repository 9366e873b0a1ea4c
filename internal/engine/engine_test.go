package engine_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primdb/primdb/internal/engine"
	"github.com/primdb/primdb/internal/storage"
	"github.com/primdb/primdb/internal/types"
)

func num(raw string) types.Literal  { return types.Literal{Kind: types.NumberLiteral, Raw: raw} }
func str(raw string) types.Literal  { return types.Literal{Kind: types.StringLiteral, Raw: raw} }
func word(raw string) types.Literal { return types.Literal{Kind: types.WordLiteral, Raw: raw} }

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	store, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)
	return engine.New(store)
}

// newUsers creates the canonical test table: users(ID:int, name:str, age:int).
func newUsers(t *testing.T, e *engine.Engine) {
	t.Helper()
	_, err := e.CreateTable("users", []types.ColumnSpec{
		{Name: "name", Type: "str"},
		{Name: "age", Type: "int"},
	})
	require.NoError(t, err)
}

func TestCreateTable(t *testing.T) {
	e := newEngine(t)

	table, err := e.CreateTable("users", []types.ColumnSpec{
		{Name: "name", Type: "str"},
		{Name: "age", Type: "int"},
	})
	require.NoError(t, err)

	// ID:int always comes first.
	require.Len(t, table.Columns, 3)
	assert.Equal(t, types.Column{Name: "ID", Type: types.IntType}, table.Columns[0])
	assert.Equal(t, types.Column{Name: "name", Type: types.StrType}, table.Columns[1])
	assert.Equal(t, types.Column{Name: "age", Type: types.IntType}, table.Columns[2])
	assert.Empty(t, table.Rows)

	// Info immediately after reflects the same schema.
	info, err := e.Info("users")
	require.NoError(t, err)
	assert.Equal(t, table.Columns, info.Columns)
}

func TestCreateTableDuplicate(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	_, err := e.CreateTable("users", nil)
	assert.ErrorIs(t, err, types.ErrDuplicateTable)
}

func TestCreateTableColumnErrors(t *testing.T) {
	e := newEngine(t)

	_, err := e.CreateTable("t", []types.ColumnSpec{
		{Name: "name", Type: "str"},
		{Name: "name", Type: "int"},
	})
	assert.ErrorIs(t, err, types.ErrDuplicateColumn)

	_, err = e.CreateTable("t", []types.ColumnSpec{{Name: "ID", Type: "int"}})
	assert.ErrorIs(t, err, types.ErrDuplicateColumn)

	_, err = e.CreateTable("t", []types.ColumnSpec{{Name: "name", Type: "text"}})
	assert.ErrorIs(t, err, types.ErrInvalidType)

	// A failed create leaves nothing behind.
	names, err := e.ListTables()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreateTableWithOnlyID(t *testing.T) {
	e := newEngine(t)

	table, err := e.CreateTable("audit", nil)
	require.NoError(t, err)
	assert.Equal(t, []types.Column{{Name: "ID", Type: types.IntType}}, table.Columns)

	id, err := e.Insert("audit", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestDropTable(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	require.NoError(t, e.DropTable("users"))

	_, err := e.Info("users")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	err = e.DropTable("users")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestListTables(t *testing.T) {
	e := newEngine(t)

	names, err := e.ListTables()
	require.NoError(t, err)
	assert.Empty(t, names)

	newUsers(t, e)
	_, err = e.CreateTable("audit", nil)
	require.NoError(t, err)

	names, err = e.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "users"}, names)
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	for i := 1; i <= 5; i++ {
		id, err := e.Insert("users", []types.Literal{str("u"), num("20")})
		require.NoError(t, err)
		assert.Equal(t, int64(i), id)
	}

	rows, err := e.Select("users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, int64(i+1), row["ID"])
	}
}

func TestInsertIDAfterDelete(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	for i := 0; i < 3; i++ {
		_, err := e.Insert("users", []types.Literal{str("u"), num("20")})
		require.NoError(t, err)
	}

	// Deleting the max ID frees it for the next insert.
	count, err := e.Delete("users", types.Condition{Column: "ID", Value: num("3")})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	id, err := e.Insert("users", []types.Literal{str("u"), num("20")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	// Deleting from the middle does not: IDs {1,3} remain, next is 4.
	count, err = e.Delete("users", types.Condition{Column: "ID", Value: num("2")})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	id, err = e.Insert("users", []types.Literal{str("u"), num("20")})
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	// Emptying the table resets the sequence to 1.
	for _, rid := range []string{"1", "3", "4"} {
		_, err = e.Delete("users", types.Condition{Column: "ID", Value: num(rid)})
		require.NoError(t, err)
	}
	id, err = e.Insert("users", []types.Literal{str("u"), num("20")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestInsertColumnCountMismatch(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	// Wrong count fails regardless of whether the literals would coerce.
	for _, values := range [][]types.Literal{
		nil,
		{str("John")},
		{str("John"), num("25"), num("7")},
		{word("garbage")},
	} {
		_, err := e.Insert("users", values)
		assert.ErrorIs(t, err, types.ErrColumnCountMismatch)
	}
}

func TestInsertTypeMismatch(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	tests := []struct {
		name   string
		values []types.Literal
	}{
		{name: "quoted_int", values: []types.Literal{str("John"), str("25")}},
		{name: "bare_word_for_str", values: []types.Literal{word("John"), num("25")}},
		{name: "number_for_str", values: []types.Literal{num("7"), num("25")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Insert("users", tt.values)
			assert.ErrorIs(t, err, types.ErrTypeMismatch)
		})
	}

	// Nothing was persisted by the failed inserts.
	rows, err := e.Select("users", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInsertIntoMissingTable(t *testing.T) {
	e := newEngine(t)
	_, err := e.Insert("ghosts", []types.Literal{num("1")})
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestSelect(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	_, err := e.Insert("users", []types.Literal{str("John"), num("25")})
	require.NoError(t, err)
	_, err = e.Insert("users", []types.Literal{str("Jane"), num("30")})
	require.NoError(t, err)

	// No filter returns everything in storage order.
	rows, err := e.Select("users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "John", rows[0]["name"])
	assert.Equal(t, "Jane", rows[1]["name"])

	// Equality filter.
	rows, err = e.Select("users", &types.Condition{Column: "age", Value: num("25")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.Row{"ID": int64(1), "name": "John", "age": int64(25)}, rows[0])

	// No match is an empty result, not an error.
	rows, err = e.Select("users", &types.Condition{Column: "age", Value: num("99")})
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Filter on ID works like any other column.
	rows, err = e.Select("users", &types.Condition{Column: "ID", Value: num("2")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane", rows[0]["name"])
}

func TestSelectUnknownColumn(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	// Fails on an empty table...
	_, err := e.Select("users", &types.Condition{Column: "ghost", Value: num("1")})
	assert.ErrorIs(t, err, types.ErrColumnNotFound)

	// ...and on a populated one.
	_, err = e.Insert("users", []types.Literal{str("John"), num("25")})
	require.NoError(t, err)
	_, err = e.Select("users", &types.Condition{Column: "ghost", Value: num("1")})
	assert.ErrorIs(t, err, types.ErrColumnNotFound)
}

func TestSelectFilterTypeMismatch(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)
	_, err := e.Insert("users", []types.Literal{str("John"), num("25")})
	require.NoError(t, err)

	// A quoted "25" never matches an int column; the comparison is refused
	// outright instead of silently matching nothing.
	_, err = e.Select("users", &types.Condition{Column: "age", Value: str("25")})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestUpdate(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)
	_, err := e.Insert("users", []types.Literal{str("John"), num("25")})
	require.NoError(t, err)
	_, err = e.Insert("users", []types.Literal{str("Jane"), num("25")})
	require.NoError(t, err)

	// Updates every matching row and persists.
	count, err := e.Update("users",
		types.Condition{Column: "age", Value: num("26")},
		types.Condition{Column: "age", Value: num("25")})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows, err := e.Select("users", &types.Condition{Column: "age", Value: num("26")})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// Zero matches is not an error.
	count, err = e.Update("users",
		types.Condition{Column: "age", Value: num("30")},
		types.Condition{Column: "age", Value: num("99")})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateErrors(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)

	_, err := e.Update("users",
		types.Condition{Column: "ID", Value: num("9")},
		types.Condition{Column: "age", Value: num("25")})
	assert.ErrorIs(t, err, types.ErrImmutableColumn)

	_, err = e.Update("users",
		types.Condition{Column: "ghost", Value: num("9")},
		types.Condition{Column: "age", Value: num("25")})
	assert.ErrorIs(t, err, types.ErrColumnNotFound)

	_, err = e.Update("users",
		types.Condition{Column: "age", Value: num("9")},
		types.Condition{Column: "ghost", Value: num("25")})
	assert.ErrorIs(t, err, types.ErrColumnNotFound)

	_, err = e.Update("users",
		types.Condition{Column: "age", Value: str("old")},
		types.Condition{Column: "age", Value: num("25")})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestDelete(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)
	for _, age := range []string{"25", "25", "40"} {
		_, err := e.Insert("users", []types.Literal{str("u"), num(age)})
		require.NoError(t, err)
	}

	count, err := e.Delete("users", types.Condition{Column: "age", Value: num("25")})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows, err := e.Select("users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(40), rows[0]["age"])

	// Zero matches is not an error.
	count, err = e.Delete("users", types.Condition{Column: "age", Value: num("25")})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = e.Delete("users", types.Condition{Column: "ghost", Value: num("1")})
	assert.ErrorIs(t, err, types.ErrColumnNotFound)
}

func TestExport(t *testing.T) {
	e := newEngine(t)
	newUsers(t, e)
	_, err := e.Insert("users", []types.Literal{str("John"), num("25")})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "users.parquet")
	count, err := e.Export("users", path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, path)

	_, err = e.Export("ghosts", path)
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}
