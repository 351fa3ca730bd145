package vm

import (
	"fmt"

	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/core/value"
)

func (m *Machine) exec(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.AssignLiteral:
		v, err := m.resolve(s.Value)
		if err != nil {
			return err
		}
		m.Set(s.Name, v)

	case *ast.AssignBinOp:
		v, err := m.binop(s.Op, s.LHS, s.RHS)
		if err != nil {
			return err
		}
		m.Set(s.Name, v)

	case *ast.AssignCall:
		v, err := m.callTarget(s.Target, s.Args)
		if err != nil {
			return err
		}
		if v.IsVoid() {
			return fmt.Errorf("%w: %s", ErrNoReturnValue, s.Target)
		}
		m.Set(s.Name, v)

	case *ast.Call:
		_, err := m.callTarget(s.Target, s.Args)
		return err

	case *ast.GotoDef:

	case *ast.Goto:
		return m.Jump(s.Label)

	case *ast.GotoIf:
		jump, err := m.compare(s.Cond)
		if err != nil {
			return err
		}
		if jump {
			return m.Jump(s.Label)
		}

	case *ast.CallLabel:
		if _, ok := m.Labels[s.Label]; !ok {
			return fmt.Errorf("%w: %s", ErrLabelNotFound, s.Label)
		}
		m.CallStack = append(m.CallStack, m.PC)
		m.Logger.Trace().Int("depth", len(m.CallStack)).Str("label", s.Label).Msg("call")
		return m.Jump(s.Label)

	case *ast.Ret:
		n := len(m.CallStack)
		if n == 0 {
			return ErrEmptyCallStack
		}
		m.PC = m.CallStack[n-1]
		m.CallStack = m.CallStack[:n-1]
		m.Logger.Trace().Int("depth", n-1).Int("return", m.PC+1).Msg("ret")

	default:
		return fmt.Errorf("vm: unknown statement %T", stmt)
	}
	return nil
}

// resolve turns a parse-time operand into a runtime value.
func (m *Machine) resolve(v ast.Value) (value.Value, error) {
	switch n := v.(type) {
	case *ast.Identifier:
		val, ok := m.Variables[n.Name]
		if !ok {
			return value.Void, fmt.Errorf("%w: %s", ErrVariableNotFound, n.Name)
		}
		return val, nil
	case *ast.IntLiteral:
		return value.NewInt(n.Value), nil
	case *ast.FloatLiteral:
		return value.NewFloat(n.Value), nil
	case *ast.StringLiteral:
		return value.NewString(n.Value), nil
	case *ast.BoolLiteral:
		return value.NewBool(n.Value), nil
	}
	return value.Void, fmt.Errorf("vm: unknown operand %T", v)
}

func (m *Machine) binop(op ast.Operator, lhs, rhs ast.Value) (value.Value, error) {
	a, err := m.resolve(lhs)
	if err != nil {
		return value.Void, err
	}
	b, err := m.resolve(rhs)
	if err != nil {
		return value.Void, err
	}
	switch op {
	case ast.OpSub:
		return value.Sub(a, b)
	case ast.OpMul:
		return value.Mul(a, b)
	case ast.OpDiv:
		return value.Div(a, b)
	case ast.OpMod:
		return value.Mod(a, b)
	}
	return value.Add(a, b)
}

func (m *Machine) compare(c ast.Comparison) (bool, error) {
	a, err := m.resolve(c.LHS)
	if err != nil {
		return false, err
	}
	b, err := m.resolve(c.RHS)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case ast.CmpEq, ast.CmpNe:
		eq, err := value.Equals(a, b)
		if err != nil {
			return false, err
		}
		return eq == (c.Op == ast.CmpEq), nil
	}

	order, err := value.Order(a, b)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case ast.CmpLt:
		return order < 0, nil
	case ast.CmpGt:
		return order > 0, nil
	case ast.CmpLe:
		return order <= 0, nil
	}
	return order >= 0, nil
}

// callTarget resolves the arguments of a native call site and dispatches it.
func (m *Machine) callTarget(target ast.CallTarget, args []ast.Value) (value.Value, error) {
	names := make([]string, len(args))
	vals := make([]value.Value, len(args))
	for i, arg := range args {
		if id, ok := arg.(*ast.Identifier); ok {
			names[i] = id.Name
		}
		v, err := m.resolve(arg)
		if err != nil {
			return value.Void, err
		}
		vals[i] = v
	}
	return m.Call(target.Module, target.Function, names, vals)
}
