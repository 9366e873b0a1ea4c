package parser

import (
	"fmt"
	"strings"

	"github.com/primdb/primdb/internal/lexer"
	"github.com/primdb/primdb/internal/types"
)

// Statement is a fully parsed command, ready for the engine. The parser
// knows no schemas: table and column names and literal values are passed
// through raw and validated during execution.
type Statement interface {
	statement()
}

// CreateTableStatement represents: create_table <name> <col>:<type> ...
type CreateTableStatement struct {
	Table   string
	Columns []types.ColumnSpec
}

// ListTablesStatement represents: list_tables
type ListTablesStatement struct{}

// DropTableStatement represents: drop_table <name>
type DropTableStatement struct {
	Table string
}

// InfoStatement represents: info <name>
type InfoStatement struct {
	Table string
}

// InsertStatement represents: insert into <name> values (<v1>, <v2>, ...)
type InsertStatement struct {
	Table  string
	Values []types.Literal
}

// SelectStatement represents: select from <name> [where <col> = <value>]
type SelectStatement struct {
	Table string
	Where *types.Condition
}

// UpdateStatement represents: update <name> set <col> = <v> where <col> = <v>
type UpdateStatement struct {
	Table string
	Set   types.Condition
	Where types.Condition
}

// DeleteStatement represents: delete from <name> where <col> = <value>
type DeleteStatement struct {
	Table string
	Where types.Condition
}

// ExportStatement represents: export <name> to <path>
type ExportStatement struct {
	Table string
	Path  string
}

// HelpStatement represents: help
type HelpStatement struct{}

// ExitStatement represents: exit
type ExitStatement struct{}

func (*CreateTableStatement) statement() {}
func (*ListTablesStatement) statement()  {}
func (*DropTableStatement) statement()   {}
func (*InfoStatement) statement()        {}
func (*InsertStatement) statement()      {}
func (*SelectStatement) statement()      {}
func (*UpdateStatement) statement()      {}
func (*DeleteStatement) statement()      {}
func (*ExportStatement) statement()      {}
func (*HelpStatement) statement()        {}
func (*ExitStatement) statement()        {}

// Parser consumes tokens from a lexer one statement at a time.
type Parser struct {
	l *lexer.Lexer
}

// New creates a new parser reading from the given lexer.
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Parse parses one command line into a Statement. Any line that matches no
// known command shape fails with types.ErrParse carrying the input.
func Parse(line string) (Statement, error) {
	stmt, err := New(lexer.New(line)).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w (input: %q)", err, line)
	}
	return stmt, nil
}

// Parse reads one statement from the lexer.
func (p *Parser) Parse() (Statement, error) {
	tok := p.l.NextToken()
	if tok.Type == lexer.EOF {
		return nil, parseErr("empty command")
	}
	if tok.Type != lexer.IDENT {
		return nil, parseErr("expected command, got %q", tok.Literal)
	}

	switch strings.ToLower(tok.Literal) {
	case "create_table":
		return p.parseCreateTable()
	case "list_tables":
		return p.parseNoOperands(&ListTablesStatement{})
	case "drop_table":
		return p.parseTableOnly(func(name string) Statement { return &DropTableStatement{Table: name} })
	case "info":
		return p.parseTableOnly(func(name string) Statement { return &InfoStatement{Table: name} })
	case "insert":
		return p.parseInsert()
	case "select":
		return p.parseSelect()
	case "update":
		return p.parseUpdate()
	case "delete":
		return p.parseDelete()
	case "export":
		return p.parseExport()
	case "help":
		return p.parseNoOperands(&HelpStatement{})
	case "exit":
		return p.parseNoOperands(&ExitStatement{})
	default:
		return nil, parseErr("unknown command %q", tok.Literal)
	}
}

func (p *Parser) parseCreateTable() (Statement, error) {
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}

	stmt := &CreateTableStatement{Table: name}

	// Column list may be empty: such a table has only the ID column.
	for {
		tok := p.l.NextToken()
		if tok.Type == lexer.EOF {
			return stmt, nil
		}
		if tok.Type != lexer.IDENT {
			return nil, parseErr("expected column spec, got %q", tok.Literal)
		}
		colName := tok.Literal

		if tok = p.l.NextToken(); tok.Type != lexer.COLON {
			return nil, parseErr("expected ':' after column name %q", colName)
		}

		colType, err := p.expectIdent("column type")
		if err != nil {
			return nil, err
		}

		stmt.Columns = append(stmt.Columns, types.ColumnSpec{Name: colName, Type: colType})
	}
}

func (p *Parser) parseInsert() (Statement, error) {
	if err := p.expectKeyword("into"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("values"); err != nil {
		return nil, err
	}
	if tok := p.l.NextToken(); tok.Type != lexer.LPAREN {
		return nil, parseErr("expected '(', got %q", tok.Literal)
	}

	stmt := &InsertStatement{Table: name}
	for first := true; ; first = false {
		tok := p.l.NextToken()
		if tok.Type == lexer.RPAREN && first {
			break
		}
		lit, err := literalFrom(tok)
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, lit)

		tok = p.l.NextToken()
		if tok.Type == lexer.RPAREN {
			break
		}
		if tok.Type != lexer.COMMA {
			return nil, parseErr("expected ',' or ')', got %q", tok.Literal)
		}
	}

	return stmt, p.expectEOF()
}

func (p *Parser) parseSelect() (Statement, error) {
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}
	stmt := &SelectStatement{Table: name}

	tok := p.l.NextToken()
	if tok.Type == lexer.EOF {
		return stmt, nil
	}
	if tok.Type != lexer.IDENT || !strings.EqualFold(tok.Literal, "where") {
		return nil, parseErr("expected 'where', got %q", tok.Literal)
	}

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	stmt.Where = &cond
	return stmt, p.expectEOF()
}

func (p *Parser) parseUpdate() (Statement, error) {
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("set"); err != nil {
		return nil, err
	}
	set, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("where"); err != nil {
		return nil, err
	}
	where, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	return &UpdateStatement{Table: name, Set: set, Where: where}, p.expectEOF()
}

func (p *Parser) parseDelete() (Statement, error) {
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("where"); err != nil {
		return nil, err
	}
	where, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	return &DeleteStatement{Table: name, Where: where}, p.expectEOF()
}

func (p *Parser) parseExport() (Statement, error) {
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	tok := p.l.NextToken()
	if tok.Type != lexer.STRING && tok.Type != lexer.IDENT {
		return nil, parseErr("expected file path, got %q", tok.Literal)
	}
	return &ExportStatement{Table: name, Path: tok.Literal}, p.expectEOF()
}

// parseCondition parses one "column = literal" pair.
func (p *Parser) parseCondition() (types.Condition, error) {
	col, err := p.expectIdent("column name")
	if err != nil {
		return types.Condition{}, err
	}
	if tok := p.l.NextToken(); tok.Type != lexer.EQUALS {
		return types.Condition{}, parseErr("expected '=', got %q", tok.Literal)
	}
	lit, err := literalFrom(p.l.NextToken())
	if err != nil {
		return types.Condition{}, err
	}
	return types.Condition{Column: col, Value: lit}, nil
}

func (p *Parser) parseNoOperands(stmt Statement) (Statement, error) {
	return stmt, p.expectEOF()
}

func (p *Parser) parseTableOnly(build func(string) Statement) (Statement, error) {
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}
	return build(name), p.expectEOF()
}

func (p *Parser) expectIdent(what string) (string, error) {
	tok := p.l.NextToken()
	if tok.Type != lexer.IDENT {
		return "", parseErr("expected %s, got %q", what, tok.Literal)
	}
	return tok.Literal, nil
}

func (p *Parser) expectKeyword(word string) error {
	tok := p.l.NextToken()
	if tok.Type != lexer.IDENT || !strings.EqualFold(tok.Literal, word) {
		return parseErr("expected %q, got %q", word, tok.Literal)
	}
	return nil
}

func (p *Parser) expectEOF() error {
	if tok := p.l.NextToken(); tok.Type != lexer.EOF {
		return parseErr("unexpected trailing input %q", tok.Literal)
	}
	return nil
}

// literalFrom converts a value-position token into a raw literal. Bare
// words pass through as WordLiteral so that the engine can accept exactly
// true/false for bool columns and reject everything else.
func literalFrom(tok lexer.Token) (types.Literal, error) {
	switch tok.Type {
	case lexer.NUMBER:
		return types.Literal{Kind: types.NumberLiteral, Raw: tok.Literal}, nil
	case lexer.STRING:
		return types.Literal{Kind: types.StringLiteral, Raw: tok.Literal}, nil
	case lexer.IDENT:
		return types.Literal{Kind: types.WordLiteral, Raw: tok.Literal}, nil
	default:
		return types.Literal{}, parseErr("expected value, got %q", tok.Literal)
	}
}

func parseErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrParse, fmt.Sprintf(format, args...))
}
