package stdlib

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

func registerString(r vm.Registry, _ Options) {
	r.Add("string", "split", stringSplit)
	r.Add("string", "join", stringJoin)
	r.Add("string", "notempty", stringNotEmpty)
	r.Add("string", "len", stringLen)
	r.Add("string", "concat", stringConcat)
	r.Add("string", "upper", stringMap(strings.ToUpper))
	r.Add("string", "lower", stringMap(strings.ToLower))
	r.Add("string", "trim", stringMap(strings.TrimSpace))
	r.Add("string", "contains", stringContains)
	r.Add("string", "fmtnum", stringFormatNumber)
}

// @string:split s sep returns a fresh array of strings.
func stringSplit(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	sep, err := stringArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	parts := strings.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.NewString(p)
	}
	return value.NewArray(value.NewArrayOf(out...)), nil
}

// @string:join a sep joins an array of strings.
func stringJoin(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	sep, err := stringArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	parts := make([]string, a.Len())
	for i, el := range a.Items() {
		if el.Type != value.TypeString {
			return value.Void, fmt.Errorf("expected string in array, got %s", el.TypeName())
		}
		parts[i] = el.Str()
	}
	return value.NewString(strings.Join(parts, sep)), nil
}

func stringNotEmpty(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewBool(s != ""), nil
}

// @string:len s counts bytes.
func stringLen(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewInt(int64(len(s))), nil
}

// @string:concat v... renders and joins every argument.
func stringConcat(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.String())
	}
	return value.NewString(b.String()), nil
}

func stringMap(fn func(string) string) vm.NativeFunc {
	return func(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Void, err
		}
		s, err := stringArg(args, 0)
		if err != nil {
			return value.Void, err
		}
		return value.NewString(fn(s)), nil
	}
}

func stringContains(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	sub, err := stringArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	return value.NewBool(strings.Contains(s, sub)), nil
}

// @string:fmtnum n [locale] formats a number with the locale's grouping and
// decimal separators. The locale defaults to "en".
func stringFormatNumber(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return value.Void, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
	}
	n, err := numberArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	locale := "en"
	if len(args) == 2 {
		if locale, err = stringArg(args, 1); err != nil {
			return value.Void, err
		}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return value.Void, fmt.Errorf("invalid locale %q", locale)
	}

	p := message.NewPrinter(tag)
	if n.Type == value.TypeInt {
		return value.NewString(p.Sprintf("%v", number.Decimal(n.Int()))), nil
	}
	return value.NewString(p.Sprintf("%v", number.Decimal(n.Float()))), nil
}
