package stm32l4x

import (
	"context"
	"testing"
	"time"

	"github.com/openflash/stm32l4x/internal/simtarget"
	"github.com/openflash/stm32l4x/target"
)

// newTestBank wires a Bank to a fresh simtarget.Sim and probes it,
// returning both so tests can poke at simulator state directly.
func newTestBank(t *testing.T, idCode uint32, flashBytes uint32) (*Bank, *simtarget.Sim) {
	t.Helper()
	sim := simtarget.New(0x40022000, 0x08000000, flashBytes)
	sim.IDCode = idCode
	sim.FSizeAddr = 0x1FFF75E0
	sim.FSizeKB = uint16(flashBytes / 1024)

	d := NewDriver(sim, nil, 1)
	bk := d.Bank(0)

	if err := bk.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	sim.PageSize = bk.geometry.PageSize
	sim.FirstBankSectors = bk.geometry.FirstBankSectors
	sim.HoleSectors = bk.geometry.HoleSectors

	return bk, sim
}

// newProbeOnlySim returns a bare Sim (not wrapped in a probed Bank) with
// the given raw ID-code, for tests that need probe itself to fail.
func newProbeOnlySim(idCode uint32) *simtarget.Sim {
	sim := simtarget.New(0x40022000, 0x08000000, 256*1024)
	sim.IDCode = idCode
	sim.FSizeAddr = 0x1FFF75E0
	sim.FSizeKB = 256
	return sim
}

// fakeClock lets waitUntilNotBusy's deadline logic run without a real
// wall-clock sleep: each After(d) jumps the clock forward by d and fires
// immediately.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.t = c.t.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.t
	return ch
}

// alwaysBusyTarget is a minimal target.Target whose SR never clears BSY,
// for exercising waitUntilNotBusy's timeout path without waiting on a
// real timer.
type alwaysBusyTarget struct{}

func (alwaysBusyTarget) ReadU16(ctx context.Context, addr uint32) (uint16, error) { return 0, nil }

func (alwaysBusyTarget) ReadU32(ctx context.Context, addr uint32) (uint32, error) {
	if addr == 0x40022000+uint32(regSR) {
		return srBSY, nil
	}
	return 0, nil
}

func (alwaysBusyTarget) WriteU32(ctx context.Context, addr uint32, v uint32) error { return nil }

func (alwaysBusyTarget) WriteBuffer(ctx context.Context, addr uint32, data []byte) error { return nil }

func (alwaysBusyTarget) TargetState(ctx context.Context) (target.State, error) {
	return target.StateHalted, nil
}

func (alwaysBusyTarget) AllocWorkingArea(ctx context.Context, size uint32) (*target.WorkingArea, error) {
	return &target.WorkingArea{Addr: 0x20000000, Size: size}, nil
}

func (alwaysBusyTarget) AllocWorkingAreaTry(ctx context.Context, size uint32) (*target.WorkingArea, error) {
	return &target.WorkingArea{Addr: 0x20000000, Size: size}, nil
}

func (alwaysBusyTarget) FreeWorkingArea(ctx context.Context, wa *target.WorkingArea) error {
	return nil
}

func (alwaysBusyTarget) RunFlashAsync(ctx context.Context, opts target.RunFlashOpts) (map[string]uint32, error) {
	return nil, nil
}
