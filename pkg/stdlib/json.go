package stdlib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

func registerJSON(r vm.Registry, _ Options) {
	r.Add("json", "get", jsonGet)
	r.Add("json", "encode", jsonEncode)
}

// @json:get doc key extracts a top-level field of a JSON object.
func jsonGet(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	doc, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	key, err := stringArg(args, 1)
	if err != nil {
		return value.Void, err
	}

	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return value.Void, fmt.Errorf("json unmarshal failed: %v", err)
	}
	v, ok := data[key]
	if !ok {
		return value.Void, fmt.Errorf("json: key %q not found", key)
	}
	return fromJSON(v)
}

// fromJSON converts a decoded JSON value. Whole numbers become ints, nested
// objects stay JSON-encoded strings, null becomes "".
func fromJSON(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.NewString(""), nil
	case string:
		return value.NewString(x), nil
	case bool:
		return value.NewBool(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return value.NewInt(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return value.Void, err
		}
		return value.NewFloat(f), nil
	case []any:
		items := make([]value.Value, len(x))
		for i, el := range x {
			conv, err := fromJSON(el)
			if err != nil {
				return value.Void, err
			}
			items[i] = conv
		}
		return value.NewArray(value.NewArrayOf(items...)), nil
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return value.Void, err
		}
		return value.NewString(string(raw)), nil
	}
}

// @json:encode v renders v as JSON.
func jsonEncode(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	native, err := toJSON(args[0], 0)
	if err != nil {
		return value.Void, err
	}
	raw, err := json.Marshal(native)
	if err != nil {
		return value.Void, err
	}
	return value.NewString(string(raw)), nil
}

func toJSON(v value.Value, depth int) (any, error) {
	switch v.Type {
	case value.TypeInt:
		return v.Int(), nil
	case value.TypeFloat:
		f := v.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("json: cannot encode %v", f)
		}
		return f, nil
	case value.TypeString:
		return v.Str(), nil
	case value.TypeBool:
		return v.Bool(), nil
	case value.TypeArray:
		if depth > 64 {
			return nil, fmt.Errorf("json: array nesting too deep")
		}
		items := v.Array().Items()
		out := make([]any, len(items))
		for i, el := range items {
			conv, err := toJSON(el, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}
	return nil, nil
}
