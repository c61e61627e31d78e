package calculator

import (
	"context"
	"fmt"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/providers/tool"
)

// ToolName is the name the model calls the calculator by.
const ToolName = "calculadora"

const description = "Evalúa expresiones aritméticas de forma exacta. Úsala para cualquier cálculo: " +
	"suma (+), resta (-), multiplicación (*), división (/), módulo (%), potencia (** o ^) y las funciones " +
	"sqrt, abs, round, floor, ceil, ln, log y exp. Ejemplo: para el 15% de 200 usa '200 * 0.15'."

// Input is the argument of the calculator capability.
type Input struct {
	Expression string `json:"expresion" jsonschema:"description=Expresión aritmética a evaluar; p. ej. '25 * 4' o 'sqrt(144)'"`
}

// Output is the typed result of [Calc].
type Output struct {
	Expression string  `json:"expresion"`
	Result     float64 `json:"resultado"`
	Formatted  string  `json:"texto"`
}

// NewCalculatorTool returns the calculator capability. It is local and free.
func NewCalculatorTool() *tool.Capability {
	return tool.NewCapability[Input](ToolName, handle,
		tool.WithDescription(description),
		tool.WithMetrics(cost.ToolMetrics{Amount: 0, Description: "cálculo local"}),
	)
}

// Evaluate evaluates expression and answers with text: either
// "El resultado de <expression> es <result>" or "Error: <description>".
// It never panics.
//
// Example:
//
//	calculator.Evaluate("200 * 0.15") // "El resultado de 200 * 0.15 es 30"
//	calculator.Evaluate("10 / 0")     // "Error: división por cero"
func Evaluate(expression string) string {
	text, _ := handle(context.Background(), expression)
	return text
}

// Calculate parses the whole expression, then evaluates it. Errors wrap the
// sentinels in package tool.
func Calculate(expression string) (result float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", tool.ErrInputRejected, r)
		}
	}()

	root, err := parse(normalize(expression))
	if err != nil {
		return 0, err
	}
	return root.eval()
}

// Calc is the typed form of the capability.
func Calc(_ context.Context, req Input) (Output, error) {
	result, err := Calculate(req.Expression)
	if err != nil {
		return Output{Expression: req.Expression}, err
	}
	return Output{
		Expression: req.Expression,
		Result:     result,
		Formatted:  formatNumber(result),
	}, nil
}

func handle(ctx context.Context, expression string) (string, error) {
	out, err := Calc(ctx, Input{Expression: expression})
	if err != nil {
		return describe(err), err
	}
	return fmt.Sprintf("El resultado de %s es %s", normalize(expression), out.Formatted), nil
}
