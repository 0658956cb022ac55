package stm32l4x

import "context"

// WrpRange is a (start,end) sector-index pair for one WRP field. An
// empty range is start>end, canonically (0xFF, 0).
type WrpRange struct {
	Start byte
	End   byte
}

// Empty reports whether the range encodes "no zone".
func (r WrpRange) Empty() bool { return isEmptyRange(r.Start, r.End) }

// EmptyRange is the canonical empty-zone value.
var EmptyRange = WrpRange{Start: emptyStart, End: emptyEnd}

// OptionBytes is the decoded option word plus the four WRP zone pairs.
// Wpr2a/Wpr2b are meaningless (and never written) on single-bank parts.
type OptionBytes struct {
	UserOptions uint32 // raw 24-bit field, OPTR[31:8]
	RDP         byte   // 0xAA = none; any other value raises readout protection

	WindowWatchdogSoftSelect      bool
	IndependentWatchdogSoftSelect bool
	IndependentWatchdogStandby    bool
	IndependentWatchdogStop       bool

	Wpr1a, Wpr1b WrpRange
	Wpr2a, Wpr2b WrpRange
}

// readOptions decomposes OPTR and the WRP registers into an OptionBytes.
// It logs an informational notice when RDP is not 0xAA.
func (b *Bank) readOptions(ctx context.Context) (OptionBytes, error) {
	var ob OptionBytes

	optr, err := b.readReg(ctx, regOPTR)
	if err != nil {
		return ob, err
	}

	ob.RDP = byte(optr & optrRDPMask)
	ob.UserOptions = (optr & optrUserMask) >> optrUserShift
	ob.WindowWatchdogSoftSelect = optr&optrWWDGSW != 0
	ob.IndependentWatchdogSoftSelect = optr&optrIWDGSW != 0
	ob.IndependentWatchdogStandby = optr&optrIWDGSTDBY != 0
	ob.IndependentWatchdogStop = optr&optrIWDGSTOP != 0

	wrp1a, err := b.readReg(ctx, regWRP1AR)
	if err != nil {
		return ob, err
	}
	wrp1b, err := b.readReg(ctx, regWRP1BR)
	if err != nil {
		return ob, err
	}
	ob.Wpr1a.Start, ob.Wpr1a.End = wrpDecode(wrp1a)
	ob.Wpr1b.Start, ob.Wpr1b.End = wrpDecode(wrp1b)

	if b.part.HasDualBank {
		wrp2a, err := b.readReg(ctx, regWRP2AR)
		if err != nil {
			return ob, err
		}
		wrp2b, err := b.readReg(ctx, regWRP2BR)
		if err != nil {
			return ob, err
		}
		ob.Wpr2a.Start, ob.Wpr2a.End = wrpDecode(wrp2a)
		ob.Wpr2b.Start, ob.Wpr2b.End = wrpDecode(wrp2b)
	} else {
		ob.Wpr2a, ob.Wpr2b = EmptyRange, EmptyRange
	}

	if ob.RDP != rdpNone {
		b.log().Info("bank %d: readout protection level is non-default (RDP=0x%02X)", b.index, ob.RDP)
	}

	return ob, nil
}

// writeOptions drives a full option-programming cycle. The new values
// take effect only after reset/power-cycle; this function itself does not
// emit that notice since it has no way to distinguish a user-facing call
// from an internal helper call. Of its callers, Protect logs the notice;
// the lock, unlock and watchdog-toggle commands do not.
func (b *Bank) writeOptions(ctx context.Context, ob OptionBytes) error {
	if err := b.unlockCR(ctx); err != nil {
		return err
	}
	if err := b.unlockOptcr(ctx); err != nil {
		return err
	}

	optr := uint32(ob.RDP) | (ob.UserOptions << optrUserShift)
	optr &^= optrWWDGSW | optrIWDGSW | optrIWDGSTDBY | optrIWDGSTOP
	if ob.WindowWatchdogSoftSelect {
		optr |= optrWWDGSW
	}
	if ob.IndependentWatchdogSoftSelect {
		optr |= optrIWDGSW
	}
	if ob.IndependentWatchdogStandby {
		optr |= optrIWDGSTDBY
	}
	if ob.IndependentWatchdogStop {
		optr |= optrIWDGSTOP
	}

	if err := b.writeReg(ctx, regOPTR, optr); err != nil {
		return err
	}
	if err := b.writeReg(ctx, regWRP1AR, wrpEncode(ob.Wpr1a.Start, ob.Wpr1a.End)); err != nil {
		return err
	}
	if err := b.writeReg(ctx, regWRP1BR, wrpEncode(ob.Wpr1b.Start, ob.Wpr1b.End)); err != nil {
		return err
	}
	if b.part.HasDualBank {
		if err := b.writeReg(ctx, regWRP2AR, wrpEncode(ob.Wpr2a.Start, ob.Wpr2a.End)); err != nil {
			return err
		}
		if err := b.writeReg(ctx, regWRP2BR, wrpEncode(ob.Wpr2b.Start, ob.Wpr2b.End)); err != nil {
			return err
		}
	}

	cr, err := b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	if err := b.writeReg(ctx, regCR, cr|crOPTSTRT); err != nil {
		return err
	}
	if err := b.waitUntilNotBusy(ctx, optionWriteTimeoutMs); err != nil {
		return err
	}

	b.options = ob
	if err := b.lockCR(ctx); err != nil {
		return err
	}
	return b.lockOptcr(ctx)
}
