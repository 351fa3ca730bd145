package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

func registerConvert(r vm.Registry, _ Options) {
	r.Add("convert", "atoi", convertAtoi)
	r.Add("convert", "itoa", convertItoa)
	r.Add("convert", "atof", convertAtof)
	r.Add("convert", "ftoa", convertFtoa)
	r.Add("convert", "type", convertType)
}

func convertAtoi(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return value.Void, fmt.Errorf("failed to parse int: %q", s)
	}
	return value.NewInt(i), nil
}

func convertItoa(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	i, err := intArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewString(strconv.FormatInt(i, 10)), nil
}

func convertAtof(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return value.Void, fmt.Errorf("failed to parse float: %q", s)
	}
	return value.NewFloat(f), nil
}

func convertFtoa(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	if args[0].Type != value.TypeFloat {
		return value.Void, mismatch("float", args[0])
	}
	return value.NewString(args[0].String()), nil
}

// @convert:type v returns the kind name: int, float, string, bool or array.
func convertType(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	return value.NewString(args[0].TypeName()), nil
}
