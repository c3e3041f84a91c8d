package tools

import (
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"2 ^ 3 ^ 2", 512},
		{"2 * 3 ^ 2", 18},
		{"-2 ^ 2", -4},
		{"2 ^ -1", 0.5},
		{"10 % 4", 2},
		{"7 / 2", 3.5},
		{"--3", 3},
		{"1,000 + 1", 1001},
		{"sqrt(16) + abs(-2)", 6},
		{"what is 12 * 7?", 84},
		{"2**10", 1024},
		{"round(pi * 100)", 314},
		{"10.5 % 3", 1.5},
		{"2 ^ 0.5 * 2 ^ 0.5", 2.0000000000000004},
		{"99999999999 * 99999999999", 99999999999.0 * 99999999999.0},
		{"Floor(7 / 2)", 3},
		{"12 × 3 ÷ 4", 9},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []string{
		"",
		"2 +",
		"(1 + 2",
		"1 / 0",
		"5 % 0",
		"foo(2)",
		"sqrt 4",
		"2 $ 3",
		"1.2.3",
		"1 2",
		"sqrt(-1)",
		"'text'",
		"len('abc')",
		"max(1, 2)",
		"x + 1",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			if _, err := Evaluate(expr); err == nil {
				t.Errorf("Evaluate(%q) expected error", expr)
			}
		})
	}

	for _, expr := range []string{"1/0", "2 * (3 / (1 - 1))", "4.5 % 0"} {
		if _, err := Evaluate(expr); !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("Evaluate(%q) error = %v, want ErrDivisionByZero", expr, err)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{-12, "-12"},
		{3.5, "3.5"},
		{0.1 + 0.2, "0.3"},
		{1.0 / 3, "0.3333333333"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
