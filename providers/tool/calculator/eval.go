package calculator

import (
	"fmt"
	"math"

	"github.com/leofalp/calcagent/providers/tool"
)

func (n numberNode) eval() (float64, error) {
	return n.value, nil
}

func (n unaryNode) eval() (float64, error) {
	v, err := n.operand.eval()
	if err != nil {
		return 0, err
	}
	if n.op == tokMinus {
		return -v, nil
	}
	return v, nil
}

func (n binaryNode) eval() (float64, error) {
	l, err := n.left.eval()
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval()
	if err != nil {
		return 0, err
	}

	var v float64
	switch n.op {
	case tokPlus:
		v = l + r
	case tokMinus:
		v = l - r
	case tokStar:
		v = l * r
	case tokSlash:
		if r == 0 {
			return 0, tool.ErrDivisionByZero
		}
		v = l / r
	case tokPercent:
		if r == 0 {
			return 0, tool.ErrDivisionByZero
		}
		v = flooredMod(l, r)
	case tokPow:
		if l == 0 && r < 0 {
			return 0, tool.ErrDivisionByZero
		}
		v = math.Pow(l, r)
	}
	return checked(v)
}

func (n callNode) eval() (float64, error) {
	x, err := n.arg.eval()
	if err != nil {
		return 0, err
	}

	switch n.fn {
	case "sqrt":
		if x < 0 {
			return 0, fmt.Errorf("%w: raíz cuadrada de un número negativo", tool.ErrDomain)
		}
		return math.Sqrt(x), nil
	case "abs":
		return math.Abs(x), nil
	case "round":
		return math.Round(x), nil
	case "floor":
		return math.Floor(x), nil
	case "ceil":
		return math.Ceil(x), nil
	case "ln", "log":
		if x <= 0 {
			return 0, fmt.Errorf("%w: logaritmo de un número no positivo", tool.ErrDomain)
		}
		if n.fn == "ln" {
			return math.Log(x), nil
		}
		return math.Log10(x), nil
	case "exp":
		return checked(math.Exp(x))
	}
	return 0, fmt.Errorf("%w: función desconocida %s", tool.ErrInputRejected, n.fn)
}

// flooredMod gives the remainder the sign of the divisor: -7 % 3 == 2.
func flooredMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func checked(v float64) (float64, error) {
	switch {
	case math.IsInf(v, 0):
		return 0, tool.ErrNumericOverflow
	case math.IsNaN(v):
		return 0, tool.ErrDomain
	}
	return v, nil
}
