package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateHash(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, 0x14, 0x02, 0x34, 0x17, 0xc0, 0x00)
	initial := cpu.Snapshot()

	other := newTestCpu(t, 0x14, 0x02, 0x34, 0x17, 0xc0, 0x00)
	assert.Equal(initial.Hash(), other.Snapshot().Hash())

	assert.NoError(cpu.Step())
	stepped := cpu.Snapshot()
	assert.NotEqual(initial.Hash(), stepped.Hash())
	assert.Equal(4, stepped.Changed.Register)

	// The snapshot is a copy.
	cpu.Register[4] = 0
	assert.Equal(uint8(0x34), stepped.Register[4])

	// Mutation markers are not part of the hash.
	cpu.Register[4] = 0x34
	cpu.Changed = mutationNone
	assert.Equal(stepped.Hash(), cpu.Snapshot().Hash())

	// The same program always runs to the same state.
	assert.NoError(cpu.Run())
	assert.NoError(other.Run())
	assert.Equal(cpu.Snapshot().Hash(), other.Snapshot().Hash())
}
