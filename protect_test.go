package stm32l4x

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectWithinBank1(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001461, 1024*1024) // 0x461, dual-bank, 256 sectors/bank
	ctx := context.Background()

	require.NoError(t, bk.Protect(ctx, true, 10, 20))
	for i := uint32(0); i < uint32(len(bk.Sectors())); i++ {
		// Protect only sets [10,20]; every other sector keeps the
		// conservative post-probe flag until ProtectCheck runs.
		assert.True(t, bk.Sectors()[i].IsProtected, "sector %d", i)
	}

	require.NoError(t, bk.ProtectCheck(ctx))
	for i := uint32(0); i < uint32(len(bk.Sectors())); i++ {
		want := i >= 10 && i <= 20
		assert.Equal(t, want, bk.Sectors()[i].IsProtected, "protect_check sector %d", i)
	}
}

func TestProtectWithinBank2(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001461, 1024*1024)
	ctx := context.Background()
	f := bk.geometry.FirstBankSectors

	require.NoError(t, bk.Protect(ctx, true, f+5, f+8))
	require.NoError(t, bk.ProtectCheck(ctx))

	assert.True(t, bk.Sectors()[f+5].IsProtected)
	assert.True(t, bk.Sectors()[f+8].IsProtected)
	assert.False(t, bk.Sectors()[f+9].IsProtected)
	assert.False(t, bk.Sectors()[f-1].IsProtected)
}

func TestProtectSpansBothBanks(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001461, 1024*1024)
	ctx := context.Background()
	f := bk.geometry.FirstBankSectors

	require.NoError(t, bk.Protect(ctx, true, f-2, f+2))
	require.NoError(t, bk.ProtectCheck(ctx))

	assert.True(t, bk.Sectors()[f-2].IsProtected)
	assert.True(t, bk.Sectors()[f-1].IsProtected)
	assert.True(t, bk.Sectors()[f].IsProtected)
	assert.True(t, bk.Sectors()[f+2].IsProtected)
	assert.False(t, bk.Sectors()[f+3].IsProtected)
}

func TestProtectClear(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001461, 1024*1024)
	ctx := context.Background()

	require.NoError(t, bk.Protect(ctx, true, 10, 20))
	require.NoError(t, bk.Protect(ctx, false, 10, 20))
	require.NoError(t, bk.ProtectCheck(ctx))

	for i := uint32(10); i <= 20; i++ {
		assert.False(t, bk.Sectors()[i].IsProtected)
	}
}
