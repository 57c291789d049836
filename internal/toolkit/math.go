package toolkit

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/spetersoncode/talk2mcp/tool"
)

type pairArgs struct {
	A int64 `json:"a" required:"true"`
	B int64 `json:"b" required:"true"`
}

type unaryArgs struct {
	A int64 `json:"a" required:"true"`
}

type listArgs struct {
	L []float64 `json:"l" desc:"Numbers to add" required:"true"`
}

type stringArgs struct {
	String string `json:"string" required:"true"`
}

type intListArgs struct {
	IntList []float64 `json:"int_list" required:"true"`
}

type countArgs struct {
	N int `json:"n" desc:"How many numbers to return" required:"true"`
}

var (
	errDivideByZero = errors.New("division by zero")
	errOverflow     = errors.New("result overflows a 64-bit integer")
)

// maxFactorial is the largest n whose factorial fits in an int64.
const maxFactorial = 20

// MathTools returns the arithmetic and sequence tools.
func MathTools() []tool.Registration {
	return []tool.Registration{
		tool.Func("add", "Add two numbers", add),
		tool.Func("add_list", "Add all numbers in a list", addList),
		tool.Func("subtract", "Subtract two numbers", func(_ context.Context, args pairArgs) (string, error) {
			return formatInt(args.A - args.B), nil
		}),
		tool.Func("multiply", "Multiply two numbers", func(_ context.Context, args pairArgs) (string, error) {
			return formatInt(args.A * args.B), nil
		}),
		tool.Func("divide", "Divide two numbers", divide),
		tool.Func("power", "Power of two numbers", power),
		tool.Func("sqrt", "Square root of a number", func(_ context.Context, args unaryArgs) (string, error) {
			if args.A < 0 {
				return "", fmt.Errorf("square root of negative number %d", args.A)
			}
			return formatFloat(math.Sqrt(float64(args.A))), nil
		}),
		tool.Func("cbrt", "Cube root of a number", func(_ context.Context, args unaryArgs) (string, error) {
			return formatFloat(math.Cbrt(float64(args.A))), nil
		}),
		tool.Func("factorial", "Factorial of a number", factorial),
		tool.Func("log", "Natural logarithm of a number", func(_ context.Context, args unaryArgs) (string, error) {
			if args.A <= 0 {
				return "", fmt.Errorf("logarithm of non-positive number %d", args.A)
			}
			return formatFloat(math.Log(float64(args.A))), nil
		}),
		tool.Func("remainder", "Remainder of two numbers division", func(_ context.Context, args pairArgs) (string, error) {
			if args.B == 0 {
				return "", errDivideByZero
			}
			return formatInt(args.A % args.B), nil
		}),
		tool.Func("sin", "Sine of a number", func(_ context.Context, args unaryArgs) (string, error) {
			return formatFloat(math.Sin(float64(args.A))), nil
		}),
		tool.Func("cos", "Cosine of a number", func(_ context.Context, args unaryArgs) (string, error) {
			return formatFloat(math.Cos(float64(args.A))), nil
		}),
		tool.Func("tan", "Tangent of a number", func(_ context.Context, args unaryArgs) (string, error) {
			return formatFloat(math.Tan(float64(args.A))), nil
		}),
		tool.Func("mine", "Special mining tool", func(_ context.Context, args pairArgs) (string, error) {
			return formatInt(args.A - 2*args.B), nil
		}),
		tool.Func("strings_to_chars_to_int", "Return the ASCII values of the characters in a word", charsToInts),
		tool.Func("int_list_to_exponential_sum", "Return sum of exponentials of numbers in a list", expSum),
		tool.Func("fibonacci_numbers", "Return the first n Fibonacci Numbers", fibonacci),
	}
}

// add reports its result in the final-answer form the agent recognizes.
func add(_ context.Context, args pairArgs) (string, error) {
	return fmt.Sprintf("FINAL_ANSWER: [%d]", args.A+args.B), nil
}

func addList(_ context.Context, args listArgs) (string, error) {
	var sum float64
	for _, v := range args.L {
		sum += v
	}
	return formatFloat(sum), nil
}

func divide(_ context.Context, args pairArgs) (string, error) {
	if args.B == 0 {
		return "", errDivideByZero
	}
	return formatFloat(float64(args.A) / float64(args.B)), nil
}

func power(_ context.Context, args pairArgs) (string, error) {
	if args.B < 0 {
		return formatFloat(math.Pow(float64(args.A), float64(args.B))), nil
	}
	result := int64(1)
	for range args.B {
		next := result * args.A
		if args.A != 0 && next/args.A != result {
			return "", errOverflow
		}
		result = next
	}
	return formatInt(result), nil
}

func factorial(_ context.Context, args unaryArgs) (string, error) {
	switch {
	case args.A < 0:
		return "", fmt.Errorf("factorial of negative number %d", args.A)
	case args.A > maxFactorial:
		return "", errOverflow
	}
	result := int64(1)
	for i := int64(2); i <= args.A; i++ {
		result *= i
	}
	return formatInt(result), nil
}

func charsToInts(_ context.Context, args stringArgs) (string, error) {
	codes := make([]int, 0, len(args.String))
	for _, r := range args.String {
		codes = append(codes, int(r))
	}
	return formatJSON(codes)
}

func expSum(_ context.Context, args intListArgs) (string, error) {
	var sum float64
	for _, v := range args.IntList {
		sum += math.Exp(v)
	}
	return formatFloat(sum), nil
}

func fibonacci(_ context.Context, args countArgs) (string, error) {
	if args.N <= 0 {
		return "[]", nil
	}
	if args.N > 93 {
		return "", errOverflow
	}
	seq := make([]uint64, args.N)
	for i := range seq {
		if i < 2 {
			seq[i] = uint64(i)
			continue
		}
		seq[i] = seq[i-1] + seq[i-2]
	}
	return formatJSON(seq)
}
