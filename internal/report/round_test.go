package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "half cent rounds up", input: 10.005, want: 10.01},
		{name: "below half rounds down", input: 10.004, want: 10.00},
		{name: "exact cents untouched", input: 1500.25, want: 1500.25},
		{name: "binary artifact suppressed", input: 0.1 + 0.2, want: 0.3},
		{name: "zero", input: 0, want: 0},
		{name: "negative", input: -2.675, want: -2.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.input), 1e-9)
		})
	}
}
