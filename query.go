package ticktree

import "reflect"

// Query value keywords. Any other Value is matched by strict equality
// with the stored value.
const (
	// ValueSet matches a present, non-nil key.
	ValueSet = "set"
	// ValueUnset matches an absent or nil key.
	ValueUnset = "unset"
	// ValueTrue matches a truthy stored value.
	ValueTrue = "true"
	// ValueFalse matches a falsy stored value.
	ValueFalse = "false"
)

// queryMatch applies the Query comparison rules for key against want on
// the resolved board.
func queryMatch(board *Blackboard, key string, want any) bool {
	if s, ok := want.(string); ok {
		switch s {
		case ValueSet:
			return board.Get(key) != nil
		case ValueUnset:
			return board.Get(key) == nil
		case ValueTrue:
			return truthy(board.Get(key))
		case ValueFalse:
			return !truthy(board.Get(key))
		}
	}
	// DeepEqual rather than == keeps uncomparable stored values (maps,
	// slices) from panicking inside Run.
	return reflect.DeepEqual(board.Get(key), want)
}

// truthy boolean-coerces a stored value: nil, false, numeric zero and
// the empty string are false, everything else is true.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}
