package main

import (
	"context"
	"fmt"

	"github.com/openflash/stm32l4x"
	"github.com/openflash/stm32l4x/internal/simtarget"
	"github.com/openflash/stm32l4x/target"
)

// buildDriver constructs a Driver wired to a fresh simtarget.Sim seeded
// from the resolved config, and probes every configured bank. Each invocation of the
// CLI starts from a clean simulated part; there is no persistence
// across commands, matching the fact that a real debug link is never
// actually open here.
func buildDriver() (*stm32l4x.Driver, error) {
	rawID, err := parseDeviceID()
	if err != nil {
		return nil, err
	}

	flashBytes := uint32(cfg.FlashKB) * 1024
	sim := simtarget.New(cfg.CtrlBase, cfg.FlashBase, flashBytes)
	sim.IDCode = rawID
	sim.FSizeAddr = 0x1FFF75E0
	sim.FSizeKB = uint16(cfg.FlashKB)

	logger := target.NewStderrLogger("stm32l4x")
	d := stm32l4x.NewDriver(sim, logger, cfg.NumBanks)

	for i := 0; i < cfg.NumBanks; i++ {
		if err := d.Bank(i).AutoProbe(cmdContext()); err != nil {
			return nil, fmt.Errorf("probe bank %d: %w", i, err)
		}
	}

	// The simulator computes erase/mass-erase page addresses itself (it
	// has no access to the driver's private ResolvedGeometry), so the
	// harness copies the probed geometry across once up front.
	geo := d.Bank(0).Geometry()
	sim.PageSize = geo.PageSize
	sim.FirstBankSectors = geo.FirstBankSectors
	sim.HoleSectors = geo.HoleSectors

	return d, nil
}

func cmdContext() context.Context {
	return context.Background()
}

func bankOrError(d *stm32l4x.Driver, idx int) (*stm32l4x.Bank, error) {
	bk := d.Bank(idx)
	if bk == nil {
		return nil, fmt.Errorf("no such bank %d", idx)
	}
	return bk, nil
}
