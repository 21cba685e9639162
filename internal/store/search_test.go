package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchPattern(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Apple":      "%apple%",
		"  run  ":    "%run%",
		"50%":        `%50\%%`,
		"snake_case": `%snake\_case%`,
		`back\slash`: `%back\\slash%`,
	}
	for in, want := range tests {
		assert.Equal(t, want, SearchPattern(in), in)
	}
}
