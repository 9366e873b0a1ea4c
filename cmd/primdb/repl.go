package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/primdb/primdb/internal/engine"
	"github.com/primdb/primdb/internal/parser"
	"github.com/primdb/primdb/internal/types"
)

const prompt = "db> "

// repl is the dispatcher around the core: it reads lines, parses them,
// runs the engine and renders whatever comes back. Errors are printed and
// the loop keeps going; only 'exit' or end of input stops it.
type repl struct {
	eng         *engine.Engine
	log         *types.Logger
	out         io.Writer
	interactive bool
	readLine    func(prompt string) (string, error)

	// select results keyed on (table, filter), cleared by any mutation
	cache map[string][]types.Row
}

func runREPL(eng *engine.Engine, log *types.Logger, historyFile string) error {
	interactive := true
	if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		interactive = false
	}

	r := &repl{
		eng:         eng,
		log:         log,
		out:         os.Stdout,
		interactive: interactive,
		cache:       make(map[string][]types.Row),
	}

	if interactive {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:      prompt,
			HistoryFile: historyFile,
		})
		if err != nil {
			return err
		}
		defer rl.Close()
		r.readLine = func(p string) (string, error) {
			rl.SetPrompt(p)
			defer rl.SetPrompt(prompt)
			return rl.Readline()
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		r.readLine = func(string) (string, error) {
			if scanner.Scan() {
				return scanner.Text(), nil
			}
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
	}

	return r.loop()
}

func (r *repl) loop() error {
	if r.interactive {
		fmt.Fprintln(r.out, "primdb interactive shell")
		r.printHelp()
	}

	for {
		line, err := r.readLine(prompt)
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				if r.interactive {
					fmt.Fprintln(r.out, "Goodbye!")
				}
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		stmt, err := parser.Parse(line)
		if err != nil {
			r.printErr(err)
			continue
		}

		if _, ok := stmt.(*parser.ExitStatement); ok {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}

		r.execute(stmt)
	}
}

// execute runs one parsed statement to completion. A panic below is a bug
// in the core, but it must not take the shell down with it.
func (r *repl) execute(stmt parser.Statement) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("panic executing command: %v", p)
			fmt.Fprintf(r.out, "Error: internal fault: %v\n", p)
		}
	}()

	start := time.Now()
	defer func() {
		r.log.Debug("command executed in %.3fs", time.Since(start).Seconds())
	}()

	switch st := stmt.(type) {
	case *parser.HelpStatement:
		r.printHelp()

	case *parser.CreateTableStatement:
		table, err := r.eng.CreateTable(st.Table, st.Columns)
		if err != nil {
			r.printErr(err)
			return
		}
		r.invalidate()
		fmt.Fprintf(r.out, "Table %q created successfully with columns: %s\n", table.Name, table.SchemaString())

	case *parser.ListTablesStatement:
		names, err := r.eng.ListTables()
		if err != nil {
			r.printErr(err)
			return
		}
		if len(names) == 0 {
			fmt.Fprintln(r.out, "No tables found.")
			return
		}
		for _, name := range names {
			fmt.Fprintf(r.out, "- %s\n", name)
		}

	case *parser.DropTableStatement:
		if !r.confirm("drop table") {
			return
		}
		if err := r.eng.DropTable(st.Table); err != nil {
			r.printErr(err)
			return
		}
		r.invalidate()
		fmt.Fprintf(r.out, "Table %q deleted successfully.\n", st.Table)

	case *parser.InfoStatement:
		table, err := r.eng.Info(st.Table)
		if err != nil {
			r.printErr(err)
			return
		}
		fmt.Fprintf(r.out, "Table: %s\n", table.Name)
		fmt.Fprintf(r.out, "Columns: %s\n", table.SchemaString())
		fmt.Fprintf(r.out, "Record count: %d\n", len(table.Rows))

	case *parser.InsertStatement:
		id, err := r.eng.Insert(st.Table, st.Values)
		if err != nil {
			r.printErr(err)
			return
		}
		r.invalidate()
		fmt.Fprintf(r.out, "Record with ID=%d added to table %q successfully.\n", id, st.Table)

	case *parser.SelectStatement:
		table, err := r.eng.Info(st.Table)
		if err != nil {
			r.printErr(err)
			return
		}
		key := selectKey(st)
		rows, cached := r.cache[key]
		if !cached {
			rows, err = r.eng.Select(st.Table, st.Where)
			if err != nil {
				r.printErr(err)
				return
			}
			r.cache[key] = rows
		} else {
			r.log.Debug("select on %q served from cache", st.Table)
		}
		r.renderRows(table.Columns, rows)

	case *parser.UpdateStatement:
		count, err := r.eng.Update(st.Table, st.Set, st.Where)
		if err != nil {
			r.printErr(err)
			return
		}
		r.invalidate()
		if count == 0 {
			fmt.Fprintln(r.out, "No records matching the condition found.")
			return
		}
		fmt.Fprintf(r.out, "%d record(s) updated in table %q.\n", count, st.Table)

	case *parser.DeleteStatement:
		if !r.confirm("delete record") {
			return
		}
		count, err := r.eng.Delete(st.Table, st.Where)
		if err != nil {
			r.printErr(err)
			return
		}
		r.invalidate()
		if count == 0 {
			fmt.Fprintln(r.out, "No records matching the condition found.")
			return
		}
		fmt.Fprintf(r.out, "%d record(s) deleted from table %q.\n", count, st.Table)

	case *parser.ExportStatement:
		count, err := r.eng.Export(st.Table, st.Path)
		if err != nil {
			r.printErr(err)
			return
		}
		fmt.Fprintf(r.out, "Exported %d record(s) from table %q to %s.\n", count, st.Table, st.Path)

	default:
		fmt.Fprintf(r.out, "Error: unhandled command %T\n", stmt)
	}
}

// confirm asks for a y/n answer before a destructive command. Piped input
// skips the question, as there is nobody to answer it.
func (r *repl) confirm(action string) bool {
	if !r.interactive {
		return true
	}
	answer, err := r.readLine(fmt.Sprintf("Are you sure you want to %s? [y/n]: ", action))
	if err != nil || strings.ToLower(strings.TrimSpace(answer)) != "y" {
		fmt.Fprintln(r.out, "Operation cancelled.")
		return false
	}
	return true
}

func (r *repl) invalidate() {
	r.cache = make(map[string][]types.Row)
}

func selectKey(st *parser.SelectStatement) string {
	if st.Where == nil {
		return st.Table
	}
	return fmt.Sprintf("%s|%s=%s", st.Table, st.Where.Column, st.Where.Value)
}

func (r *repl) printErr(err error) {
	fmt.Fprintf(r.out, "Error: %v\n", err)
}

// renderRows prints rows as an aligned text table in schema column order.
func (r *repl) renderRows(columns []types.Column, rows []types.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No records to display.")
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col.Name)
	}
	for _, row := range rows {
		for i, col := range columns {
			if n := len(types.FormatValue(row[col.Name])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(r.out, " | ")
		}
		fmt.Fprintf(r.out, "%-*s", widths[i], col.Name)
	}
	fmt.Fprintln(r.out)

	for i := range columns {
		if i > 0 {
			fmt.Fprint(r.out, "-+-")
		}
		fmt.Fprint(r.out, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(r.out)

	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(r.out, " | ")
			}
			fmt.Fprintf(r.out, "%-*s", widths[i], types.FormatValue(row[col.Name]))
		}
		fmt.Fprintln(r.out)
	}
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `
Commands:
  create_table <table> <col1:type> ...            - create table (types: int, str, bool)
  list_tables                                     - show all tables
  drop_table <table>                              - delete table
  info <table>                                    - show table schema and record count
  insert into <table> values (<v1>, <v2>, ...)    - insert record
  select from <table> [where <col> = <val>]       - read records
  update <table> set <col> = <val> where <col> = <val> - update records
  delete from <table> where <col> = <val>         - delete records
  export <table> to <file>                        - snapshot table to a Parquet file

General:
  help - show this help
  exit - exit program

`)
}
