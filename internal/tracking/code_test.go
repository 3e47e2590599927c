package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewCode()
		assert.Regexp(t, Pattern, code)
	}
}

func TestNewCodeSpread(t *testing.T) {
	// 36^8 possible codes; 1000 draws colliding would mean a broken generator
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		seen[NewCode()] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}
