package skinnymutex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicU8_subAndGet(t *testing.T) {
	var a atomicU8
	a.init(2)

	assert.Equal(t, uint32(1), a.subAndGet(1))
	assert.Equal(t, uint32(0), a.subAndGet(1))
}

func TestAtomicU8_subAndGet_largerStep(t *testing.T) {
	var a atomicU8
	a.init(2)

	assert.Equal(t, uint32(0), a.subAndGet(2))
}
