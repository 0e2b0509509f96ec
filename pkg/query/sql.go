package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ToSQL translates p into a condition over the JSONB column.
// Field paths become "column->>'f'" or "column#>>'{a,b}'" expressions.
func ToSQL(p Predicate, column string) (sq.Sqlizer, error) {
	if !identRe.MatchString(column) || strings.Contains(column, ".") {
		return nil, errors.Join(ErrInvalidField, fmt.Errorf("column %q", column))
	}
	return toSQL(p, column)
}

func toSQL(p Predicate, column string) (sq.Sqlizer, error) {
	switch pred := p.(type) {
	case nil, MatchAll:
		return sq.Expr("TRUE"), nil
	case And:
		if len(pred) == 0 {
			return sq.Expr("TRUE"), nil
		}
		out := make(sq.And, 0, len(pred))
		for _, term := range pred {
			s, err := toSQL(term, column)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case Or:
		if len(pred) == 0 {
			return sq.Expr("FALSE"), nil
		}
		out := make(sq.Or, 0, len(pred))
		for _, term := range pred {
			s, err := toSQL(term, column)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case Eq:
		text, jsonExpr, err := fieldExpr(column, pred.Field)
		if err != nil {
			return nil, err
		}
		value := Stringify(pred.Value)
		arr, _ := json.Marshal([]string{value})
		return sq.Or{
			sq.Eq{text: value},
			sq.Expr(fmt.Sprintf("(jsonb_typeof(%s) = 'array' AND %s @> ?::jsonb)", jsonExpr, jsonExpr), string(arr)),
		}, nil
	case In:
		text, jsonExpr, err := fieldExpr(column, pred.Field)
		if err != nil {
			return nil, err
		}
		if len(pred.Values) == 0 {
			return sq.Expr("FALSE"), nil
		}
		values := make([]string, len(pred.Values))
		for i, v := range pred.Values {
			values[i] = Stringify(v)
		}
		// CASE keeps jsonb_array_elements_text away from scalars, which it rejects.
		return sq.Or{
			sq.Eq{text: values},
			sq.Expr(fmt.Sprintf(
				"(CASE WHEN jsonb_typeof(%s) = 'array' THEN EXISTS (SELECT 1 FROM jsonb_array_elements_text(%s) AS e(v) WHERE e.v = ANY(?::text[])) ELSE FALSE END)",
				jsonExpr, jsonExpr), values),
		}, nil
	case Contains:
		text, _, err := fieldExpr(column, pred.Field)
		if err != nil {
			return nil, err
		}
		return sq.ILike{text: "%" + likeEscaper.Replace(pred.Value) + "%"}, nil
	case Func:
		if pred.SQL == nil {
			return nil, errors.Join(ErrUnsupportedPredicate, fmt.Errorf("func %q has no SQL form", pred.Name))
		}
		return pred.SQL, nil
	default:
		return nil, errors.Join(ErrUnsupportedPredicate, fmt.Errorf("%T", p))
	}
}

// FieldExpr returns the text expression for a field stored in column.
// It is used for ORDER BY clauses.
func FieldExpr(column, field string) (string, error) {
	text, _, err := fieldExpr(column, field)
	return text, err
}

func fieldExpr(column, field string) (text, jsonb string, err error) {
	if !identRe.MatchString(field) {
		return "", "", errors.Join(ErrInvalidField, fmt.Errorf("field %q", field))
	}
	if !strings.Contains(field, ".") {
		return fmt.Sprintf("%s->>'%s'", column, field), fmt.Sprintf("%s->'%s'", column, field), nil
	}
	path := "{" + strings.ReplaceAll(field, ".", ",") + "}"
	return fmt.Sprintf("%s#>>'%s'", column, path), fmt.Sprintf("%s#>'%s'", column, path), nil
}
