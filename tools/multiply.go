package tools

import "context"

type MultiplyNumbersInput struct {
	Num1 float64 `json:"num1"`
	Num2 float64 `json:"num2"`
}

var MultiplyNumbersDefinition = New("multiply_numbers",
	"Multiplies two numbers. Use this for any calculation.",
	func(_ context.Context, in MultiplyNumbersInput) (any, error) {
		return in.Num1 * in.Num2, nil
	})
