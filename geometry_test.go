package stm32l4x

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeSingleBankPart(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001435, 256*1024) // 0x435, rev A, full-size flash

	require.True(t, bk.probed)
	assert.Equal(t, uint32(2048), bk.geometry.PageSize)
	assert.Equal(t, uint32(0), bk.geometry.HoleSectors)
	assert.Len(t, bk.Sectors(), 128)
	assert.Equal(t, "STM32L43x/44x - Rev: A", bk.Info())

	for _, s := range bk.Sectors() {
		assert.True(t, s.IsProtected, "sectors must be conservatively protected until protect_check")
		assert.Equal(t, Unknown, s.IsErased)
	}
}

func TestProbeDualBankHoleSectors(t *testing.T) {
	bk, sim := newTestBank(t, 0x10001461, 512*1024) // 0x461, half of max 1024KB
	ctx := context.Background()

	// DUALBANK must be set for the hole computation to kick in.
	optr, err := sim.ReadU32(ctx, 0x40022000+0x20)
	require.NoError(t, err)
	require.NoError(t, sim.WriteU32(ctx, 0x40022000+0x20, optr|optrDUALBANK))
	require.NoError(t, bk.Probe(ctx))

	assert.Equal(t, uint32(128), bk.geometry.FirstBankSectors) // 512KB/2/2048
	assert.Equal(t, uint32(128), bk.geometry.HoleSectors)      // (1024KB/2/2048) - 128
}

func TestProbeDualBankPartPageSizeDoubling(t *testing.T) {
	bk, sim := newTestBank(t, 0x10001470, 2048*1024) // 0x470, DBANK clear by default
	ctx := context.Background()

	assert.Equal(t, uint32(8192), bk.geometry.PageSize, "DBANK clear halves sector count by doubling page size")
	assert.Equal(t, uint32(256), bk.geometry.FirstBankSectors, "single-bank mode: every sector belongs to bank 1")
	assert.Equal(t, uint32(0), bk.geometry.HoleSectors)
	assert.Len(t, bk.Sectors(), 256, "DBANK clear must not leave sectors unreachable via BKER")

	optr, err := sim.ReadU32(ctx, 0x40022000+0x20)
	require.NoError(t, err)
	require.NoError(t, sim.WriteU32(ctx, 0x40022000+0x20, optr|optrDBANK))
	require.NoError(t, bk.Probe(ctx))
	assert.Equal(t, uint32(4096), bk.geometry.PageSize)
	assert.Equal(t, uint32(256), bk.geometry.FirstBankSectors, "DBANK set: full-size flash splits evenly across both banks")
	assert.Equal(t, uint32(0), bk.geometry.HoleSectors)
}

func TestProbeUnsupportedPart(t *testing.T) {
	sim_ := newProbeOnlySim(0xDEAD000)
	d := NewDriver(sim_, nil, 1)
	err := d.Bank(0).Probe(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPart)
}

func TestSectorControllerNumberMapsAcrossHole(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001461, 512*1024)
	bk.geometry.FirstBankSectors = 128
	bk.geometry.HoleSectors = 128

	snb, bker := bk.sectorControllerNumber(50)
	assert.Equal(t, uint32(50), snb)
	assert.False(t, bker)

	snb, bker = bk.sectorControllerNumber(128)
	assert.Equal(t, uint32(256), snb)
	assert.True(t, bker)
}
