package types

import (
	"fmt"
	"strconv"
)

// LiteralKind records how a literal was written in the command, which is
// what decides the types it may coerce to: "25" is never an int and a bare
// 25 is never a str.
type LiteralKind int

const (
	// NumberLiteral is a bare base-10 number token, optionally negative.
	NumberLiteral LiteralKind = iota
	// StringLiteral is a quoted token; Raw holds the content without quotes.
	StringLiteral
	// WordLiteral is a bare unquoted word, valid only as a bool literal.
	WordLiteral
)

// Literal is a raw value token passed through from the parser. The parser
// does not know any schema, so coercion against a column type happens in
// the engine via Coerce.
type Literal struct {
	Kind LiteralKind
	Raw  string
}

func (l Literal) String() string {
	if l.Kind == StringLiteral {
		return strconv.Quote(l.Raw)
	}
	return l.Raw
}

// Coerce validates a literal against a column type and produces the stored
// value (int64, string or bool). There is no implicit conversion between
// types; any mismatch fails with ErrTypeMismatch.
func Coerce(lit Literal, ct ColumnType) (any, error) {
	switch ct {
	case IntType:
		if lit.Kind != NumberLiteral {
			return nil, coerceErr(lit, ct)
		}
		n, err := strconv.ParseInt(lit.Raw, 10, 64)
		if err != nil {
			return nil, coerceErr(lit, ct)
		}
		return n, nil
	case StrType:
		if lit.Kind != StringLiteral {
			return nil, coerceErr(lit, ct)
		}
		return lit.Raw, nil
	case BoolType:
		// Case-sensitive on purpose: only the exact JSON spellings.
		if lit.Kind == WordLiteral {
			switch lit.Raw {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, coerceErr(lit, ct)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, ct)
	}
}

func coerceErr(lit Literal, ct ColumnType) error {
	return fmt.Errorf("%w: invalid value %s (expected %s)", ErrTypeMismatch, lit, ct)
}

// Condition is a single "column = literal" pair, used both as the
// equality filter of select/update/delete and as the assignment of update.
type Condition struct {
	Column string
	Value  Literal
}

// FormatValue renders a stored value the way it is written in a command,
// for table output and messages.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
