package stm32l4x

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openflash/stm32l4x/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraseSingleSectorMarksErasedAndRestoresLock(t *testing.T) {
	bk, sim := newTestBank(t, 0x10001435, 256*1024)
	ctx := context.Background()

	require.NoError(t, bk.Erase(ctx, 5, 5))
	assert.Equal(t, Yes, bk.Sectors()[5].IsErased)
	assert.Equal(t, Unknown, bk.Sectors()[4].IsErased)

	cr, err := sim.ReadU32(ctx, 0x40022000+0x14)
	require.NoError(t, err)
	assert.NotZero(t, cr&(1<<31), "CR.LOCK must be restored after a successful erase")
}

func TestEraseRangeBoundaries(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001435, 256*1024)
	ctx := context.Background()

	require.NoError(t, bk.Erase(ctx, 0, 0))
	assert.Equal(t, Yes, bk.Sectors()[0].IsErased)

	last := uint32(len(bk.Sectors()) - 1)
	require.NoError(t, bk.Erase(ctx, last, last))
	assert.Equal(t, Yes, bk.Sectors()[last].IsErased)
}

func TestEraseNotHalted(t *testing.T) {
	bk, sim := newTestBank(t, 0x10001435, 256*1024)
	sim.SetState(target.StateRunning)

	err := bk.Erase(context.Background(), 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotHalted)
}

func TestEraseTimeoutReturnsTimeoutKind(t *testing.T) {
	bk := &Bank{
		tgt:    alwaysBusyTarget{},
		clock:  &fakeClock{t: time.Unix(0, 0)},
		part:   &PartDescriptor{ID: 0x435, FlashCtrlBase: 0x40022000, PageSize: 2048},
		sectors: make([]Sector, 4),
	}

	err := bk.Erase(context.Background(), 0, 0)
	require.Error(t, err)

	var kindErr *Error
	require.True(t, errors.As(err, &kindErr))
	assert.Equal(t, KindTimeout, kindErr.Kind)
}

func TestMassEraseSingleBankMarksAllSectorsErased(t *testing.T) {
	bk, sim := newTestBank(t, 0x10001435, 256*1024) // 0x435 has no second bank
	ctx := context.Background()

	require.NoError(t, bk.MassErase(ctx))
	for _, s := range bk.Sectors() {
		assert.Equal(t, Yes, s.IsErased)
	}
	_ = sim
}

func TestMassEraseDualBankMarksAllSectorsErased(t *testing.T) {
	bk, _ := newTestBank(t, 0x10001461, 1024*1024)
	require.NoError(t, bk.MassErase(context.Background()))
	for _, s := range bk.Sectors() {
		assert.Equal(t, Yes, s.IsErased)
	}
}
