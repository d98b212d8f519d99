package lazo

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// ValueToGo converts a Value into plain Go data suitable for encoding/json or a
// database driver. Symbols become their names; Exprs and functions have no
// data form.
func ValueToGo(v Value) (any, error) {
	switch v.Kind {
	case ValNumber:
		return v.Num, nil
	case ValString:
		return v.Str, nil
	case ValBool:
		return v.Bool, nil
	case ValSymbol:
		return v.Str, nil
	case ValNull:
		return nil, nil
	case ValList:
		arr := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			j, err := ValueToGo(e)
			if err != nil {
				return nil, err
			}
			arr[i] = j
		}
		return arr, nil
	case ValExpr:
		return nil, fmt.Errorf("cannot convert expression %s to data", v.String())
	case ValFn:
		return nil, fmt.Errorf("cannot convert %s to data", v.String())
	default:
		return nil, fmt.Errorf("unknown value kind")
	}
}

// GoToValue converts Go data back into a Value. Unknown types become null.
func GoToValue(v any) Value {
	switch val := v.(type) {
	case nil:
		return NullVal()
	case bool:
		return BoolVal(val)
	case float64:
		return NumberVal(val)
	case float32:
		return NumberVal(float64(val))
	case int:
		return NumberVal(float64(val))
	case int32:
		return NumberVal(float64(val))
	case int64:
		return NumberVal(float64(val))
	case string:
		return StringVal(val)
	case []byte:
		return StringVal(string(val))
	case time.Time:
		return StringVal(val.Format(time.RFC3339))
	case []any:
		elems := make([]Value, len(val))
		for i, e := range val {
			elems[i] = GoToValue(e)
		}
		return ListVal(elems)
	case map[string]any:
		// Lazo has no map type; an object becomes a list of [key value] pairs.
		pairs := make([]Value, 0, len(val))
		for _, k := range slices.Sorted(maps.Keys(val)) {
			pairs = append(pairs, ListVal([]Value{StringVal(k), GoToValue(val[k])}))
		}
		return ListVal(pairs)
	default:
		return NullVal()
	}
}
