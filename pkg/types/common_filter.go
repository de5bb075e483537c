package types

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

type CommonFilterOperator string

const (
	CommonFilterOperatorEq        CommonFilterOperator = "eq"
	CommonFilterOperatorNotEq     CommonFilterOperator = "not_eq"
	CommonFilterOperatorLt        CommonFilterOperator = "lt"
	CommonFilterOperatorLte       CommonFilterOperator = "lte"
	CommonFilterOperatorGt        CommonFilterOperator = "gt"
	CommonFilterOperatorGte       CommonFilterOperator = "gte"
	CommonFilterOperatorDateRange CommonFilterOperator = "date_range"
	CommonFilterOperatorRange     CommonFilterOperator = "range"
	CommonFilterOperatorIn        CommonFilterOperator = "in"
)

type CommonFilter struct {
	Field    string               `json:"field"`
	Operator CommonFilterOperator `json:"operator"`
	Values   []any                `json:"values"`
}

// Validate checks the filter against the columns a caller may filter on.
// Field names end up in SQL as identifiers, so anything outside allowed is rejected.
func (f *CommonFilter) Validate(allowed map[string]struct{}) error {
	if f == nil {
		return fmt.Errorf("nil filter")
	}
	if _, ok := allowed[f.Field]; !ok {
		return fmt.Errorf("filter field not allowed: %q", f.Field)
	}
	switch f.Operator {
	case CommonFilterOperatorEq, CommonFilterOperatorNotEq, CommonFilterOperatorLt, CommonFilterOperatorLte,
		CommonFilterOperatorGt, CommonFilterOperatorGte, CommonFilterOperatorIn:
		if len(f.Values) == 0 {
			return fmt.Errorf("filter %q: missing value", f.Field)
		}
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return fmt.Errorf("filter %q: range needs two values", f.Field)
		}
	case CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return fmt.Errorf("filter %q: date_range needs two values", f.Field)
		}
		for _, v := range f.Values[:2] {
			if _, err := parseDate(v); err != nil {
				return fmt.Errorf("filter %q: %w", f.Field, err)
			}
		}
	default:
		return fmt.Errorf("filter %q: unsupported operator %q", f.Field, f.Operator)
	}
	return nil
}

// Build constructs a GORM expression.
func (f *CommonFilter) Build(builder clause.Builder) {
	if len(f.Values) == 0 {
		return
	}

	value := f.Values[0]

	switch f.Operator {
	case CommonFilterOperatorEq:
		clause.Eq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorNotEq:
		clause.Neq{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLt:
		clause.Lt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorLte:
		clause.Lte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGt:
		clause.Gt{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorGte:
		clause.Gte{Column: f.Field, Value: value}.Build(builder)
	case CommonFilterOperatorRange:
		if len(f.Values) < 2 {
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: f.Values[0]}, clause.Lte{Column: f.Field, Value: f.Values[1]}).Build(builder)
	case CommonFilterOperatorDateRange:
		if len(f.Values) < 2 {
			return
		}
		from, err1 := ParseDateBound(f.Values[0], false)
		to, err2 := ParseDateBound(f.Values[1], true)
		if err1 != nil || err2 != nil {
			return
		}
		clause.And(clause.Gte{Column: f.Field, Value: from}, clause.Lte{Column: f.Field, Value: to}).Build(builder)
	case CommonFilterOperatorIn:
		clause.IN{Column: f.Field, Values: f.Values}.Build(builder)
	default:
		return
	}
}

// parseDate accepts RFC3339 strings, plain dates (2006-01-02) and unix seconds.
func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, nil
		}
		if ts, err := time.Parse(time.DateOnly, t); err == nil {
			return ts, nil
		}
		return time.Time{}, fmt.Errorf("invalid date %q", t)
	case float64:
		return time.Unix(int64(t), 0), nil
	case int64:
		return time.Unix(t, 0), nil
	case int:
		return time.Unix(int64(t), 0), nil
	default:
		return time.Time{}, fmt.Errorf("invalid date value %v", v)
	}
}

// ParseDateBound parses v like a date_range value. A plain date used as an
// upper bound covers that whole day.
func ParseDateBound(v any, upper bool) (time.Time, error) {
	t, err := parseDate(v)
	if err != nil {
		return t, err
	}
	if s, ok := v.(string); ok && upper {
		if _, err := time.Parse(time.DateOnly, s); err == nil {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return t, nil
}

// FiltersAnd combines multiple CommonFilter into a single clause.Expression.
type FiltersAnd []*CommonFilter

func (w FiltersAnd) Build(builder clause.Builder) {
	if len(w) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w))
	for _, f := range w {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}
