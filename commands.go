package stm32l4x

import (
	"context"
	"strconv"
)

// parseBankArg parses the leading "<bank>" argument every command in
// the command surface takes, and returns the resolved Bank.
func (d *Driver) parseBankArg(args []string) (*Bank, []string, error) {
	if len(args) < 1 {
		return nil, nil, newErr(KindSyntaxError, "missing <bank> argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, nil, wrapErr(KindSyntaxError, "bank argument must be an integer", err)
	}
	bk := d.Bank(n)
	if bk == nil {
		return nil, nil, newErr(KindSyntaxError, "no such bank")
	}
	return bk, args[1:], nil
}

func parseEnableDisable(args []string) (bool, error) {
	if len(args) != 1 {
		return false, newErr(KindSyntaxError, "expected exactly one of enable|disable")
	}
	switch args[0] {
	case "enable":
		return true, nil
	case "disable":
		return false, nil
	default:
		return false, newErr(KindSyntaxError, "expected enable or disable, got "+args[0])
	}
}

// cmdLock sets RDP=0 and writes options. This driver only ever selects
// Level 1 readout protection (RDP=0), never a Level-2 code (0xCC): Level
// 2 is irreversible and there is no operation here that needs it.
func (d *Driver) cmdLock(ctx context.Context, args []string) error {
	bk, _, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	if err := bk.requireHalted(ctx); err != nil {
		return err
	}
	ob, err := bk.readOptions(ctx)
	if err != nil {
		return err
	}
	ob.RDP = 0
	return bk.writeOptions(ctx, ob)
}

// cmdUnlock sets RDP=0xAA and writes options, also clearing any latent
// protection.
func (d *Driver) cmdUnlock(ctx context.Context, args []string) error {
	bk, _, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	if err := bk.requireHalted(ctx); err != nil {
		return err
	}
	ob, err := bk.readOptions(ctx)
	if err != nil {
		return err
	}
	ob.RDP = rdpNone
	ob.Wpr1a, ob.Wpr1b = EmptyRange, EmptyRange
	ob.Wpr2a, ob.Wpr2b = EmptyRange, EmptyRange
	return bk.writeOptions(ctx, ob)
}

func (d *Driver) cmdMassErase(ctx context.Context, args []string) error {
	bk, _, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	return bk.MassErase(ctx)
}

func (d *Driver) cmdWindowWatchdogSoftSelection(ctx context.Context, args []string) error {
	bk, rest, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	enable, err := parseEnableDisable(rest)
	if err != nil {
		return err
	}
	return bk.setOptionFlag(ctx, func(ob *OptionBytes) { ob.WindowWatchdogSoftSelect = enable })
}

func (d *Driver) cmdIndependentWatchdogStandby(ctx context.Context, args []string) error {
	bk, rest, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	enable, err := parseEnableDisable(rest)
	if err != nil {
		return err
	}
	return bk.setOptionFlag(ctx, func(ob *OptionBytes) { ob.IndependentWatchdogStandby = enable })
}

func (d *Driver) cmdIndependentWatchdogStop(ctx context.Context, args []string) error {
	bk, rest, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	enable, err := parseEnableDisable(rest)
	if err != nil {
		return err
	}
	return bk.setOptionFlag(ctx, func(ob *OptionBytes) { ob.IndependentWatchdogStop = enable })
}

func (d *Driver) cmdIndependentWatchdogSoftSelection(ctx context.Context, args []string) error {
	bk, rest, err := d.parseBankArg(args)
	if err != nil {
		return err
	}
	enable, err := parseEnableDisable(rest)
	if err != nil {
		return err
	}
	return bk.setOptionFlag(ctx, func(ob *OptionBytes) { ob.IndependentWatchdogSoftSelect = enable })
}

// setOptionFlag is the shared read-modify-write helper the four
// watchdog toggle commands use.
func (b *Bank) setOptionFlag(ctx context.Context, mutate func(*OptionBytes)) error {
	if err := b.requireHalted(ctx); err != nil {
		return err
	}
	ob, err := b.readOptions(ctx)
	if err != nil {
		return err
	}
	mutate(&ob)
	return b.writeOptions(ctx, ob)
}
