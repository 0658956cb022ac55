package stm32l4x

import (
	"context"
	"testing"

	"github.com/openflash/stm32l4x/internal/simtarget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePadsToWordBoundary(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001435, 256*1024)
	ctx := context.Background()

	data := []byte{1, 2, 3, 4, 5, 6, 7} // 7 bytes, needs one pad byte
	require.NoError(t, bk.Write(ctx, 0, data))

	got, err := bk.Read(ctx, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 0xFF}, got)
}

func TestWriteRejectsMisalignedOffset(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001435, 256*1024)
	err := bk.Write(context.Background(), 3, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlignment)
}

func TestWriteOffsetZeroCountEight(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001435, 256*1024)
	ctx := context.Background()
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x11, 0x22}
	require.NoError(t, bk.Write(ctx, 0, data))
	got, err := bk.Read(ctx, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWriteProtectedRangeFails(t *testing.T) {
	bk, sim := newTestBank(t, 0x10001435, 256*1024)
	ctx := context.Background()

	sim.SetProtected(simtarget.ProtectedRange{FirstByte: 0, LastByte: 2047})

	err := bk.Write(ctx, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteProtected)

	cr, rerr := sim.ReadU32(ctx, 0x40022000+0x14)
	require.NoError(t, rerr)
	assert.NotZero(t, cr&(1<<31), "CR.LOCK must be restored even after a failed write")
}
