package lazo

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValueToGo(t *testing.T) {
	v, err := Parse(`[1 "two" true null [x 'y]]`)
	require.NoError(t, err)
	got, err := ValueToGo(v)
	require.NoError(t, err)
	want := []any{1.0, "two", true, nil, []any{"x", "y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ValueToGo mismatch (-want +got):\n%s", diff)
	}

	b, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, `[1, "two", true, null, ["x", "y"]]`, string(b))
}

func TestValueToGoRejectsCode(t *testing.T) {
	_, err := ValueToGo(ExprVal([]Value{SymbolVal("f")}))
	require.Error(t, err)
	_, err = ValueToGo(ListVal([]Value{BuiltinVal("car", builtinCar)}))
	require.Error(t, err)
}

func TestGoToValue(t *testing.T) {
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`{"b": [1, 2.5], "a": "x", "c": null}`), &decoded))
	got := GoToValue(decoded)
	want := ListVal([]Value{
		ListVal([]Value{StringVal("a"), StringVal("x")}),
		ListVal([]Value{StringVal("b"), nums(1, 2.5)}),
		ListVal([]Value{StringVal("c"), NullVal()}),
	})
	require.True(t, ValuesEqual(want, got), "got %s", got)

	require.True(t, ValuesEqual(NumberVal(3), GoToValue(int64(3))))
	require.True(t, ValuesEqual(StringVal("raw"), GoToValue([]byte("raw"))))
	require.True(t, ValuesEqual(NullVal(), GoToValue(struct{}{})))
}
