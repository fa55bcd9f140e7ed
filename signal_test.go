package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelFlagStickySet(t *testing.T) {
	var c CancelFlag
	assert.False(t, c.IsSet())
	c.Set()
	assert.True(t, c.IsSet())
	c.Set()
	assert.True(t, c.IsSet())
}

func TestProgressFlagRequestAndClear(t *testing.T) {
	var p ProgressFlag
	assert.False(t, p.TestAndClear())
	p.request()
	assert.True(t, p.TestAndClear())
	// TestAndClear consumes the pending request
	assert.False(t, p.TestAndClear())
}
