package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/leofalp/calcagent/providers/tool"
)

const (
	significantDigits = 15
	exponentFromAbs   = 1e21
	exponentBelowAbs  = 1e-6
)

// formatNumber renders integral values without a decimal point. Other values
// are snapped to 15 significant digits, which hides binary noise such as
// 0.1 + 0.2 without changing the magnitude of tiny results.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if v == math.Trunc(v) && abs < exponentFromAbs {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	v, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'g', significantDigits, 64), 64)
	abs = math.Abs(v)
	if abs >= exponentFromAbs || abs < exponentBelowAbs {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// describe turns an evaluation fault into the Spanish text sent to the model.
func describe(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	switch {
	case errors.Is(err, tool.ErrDivisionByZero):
		b.WriteString("división por cero")
	case errors.Is(err, tool.ErrNumericOverflow):
		b.WriteString("el resultado es demasiado grande para representarlo")
	case errors.Is(err, tool.ErrDomain):
		b.WriteString("operación fuera del dominio de los números reales")
	default:
		b.WriteString("expresión no válida")
	}
	if detail := detailOf(err); detail != "" {
		b.WriteString(" (")
		b.WriteString(detail)
		b.WriteString(")")
	}
	return b.String()
}

// detailOf strips the sentinel prefix added by fmt.Errorf("%w: ...").
func detailOf(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{tool.ErrInputRejected, tool.ErrDivisionByZero, tool.ErrNumericOverflow, tool.ErrDomain} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
		if msg == sentinel.Error() {
			return ""
		}
	}
	return msg
}
