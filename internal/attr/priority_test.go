package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input     string
		want      int
		defaulted bool
	}{
		{"1", 20, false},
		{"3", 60, false},
		{"5", 100, false},
		{" 4 ", 80, false},
		{"urgent", 100, false},
		{"CRITICAL", 100, false},
		{"highest", 100, false},
		{"high", 80, false},
		{"important", 80, false},
		{"medium", 60, false},
		{"low priority", 40, false},
		{"minor", 40, false},
		{"6", 60, true},
		{"whatever", 60, true},
		{"", 60, true},
	}

	for _, tt := range tests {
		got := ParsePriority(tt.input)
		assert.Equal(t, tt.want, got.Value, "ParsePriority(%q)", tt.input)
		assert.Equal(t, tt.defaulted, got.Defaulted, "ParsePriority(%q) defaulted", tt.input)
	}
}
