package stm32l4x

import "context"

// Erase erases sectors [first,last] inclusive, encoding the
// bank-selector bit and sector number per the cross-bank mapping
// sectorControllerNumber computes.
//
// On a wait_until_not_busy failure mid-range, Erase returns immediately
// without restoring CR.LOCK: a failed erase surfaces the target left
// unlocked rather than papering over it, since silently re-locking after
// an erase fault would hide that the controller may still be
// mid-operation.
func (b *Bank) Erase(ctx context.Context, first, last uint32) error {
	if err := b.requireHalted(ctx); err != nil {
		return err
	}
	if err := b.unlockCR(ctx); err != nil {
		return err
	}

	for i := first; i <= last; i++ {
		snb, bker := b.sectorControllerNumber(i)
		cr := uint32(crPER) | (snb << crPNBShift) | crSTART
		if bker {
			cr |= crBKER
		}
		if err := b.writeReg(ctx, regCR, cr); err != nil {
			return err
		}
		if err := b.waitUntilNotBusy(ctx, eraseTimeoutMs); err != nil {
			return err
		}
		if int(i) < len(b.sectors) {
			b.sectors[i].IsErased = Yes
		}
	}

	return b.writeReg(ctx, regCR, crLOCK)
}

// MassErase erases the whole bank (and the paired bank too, if
// dual-bank). MER2 is only ever set when the part has a second bank.
func (b *Bank) MassErase(ctx context.Context) error {
	if err := b.requireHalted(ctx); err != nil {
		return err
	}
	if err := b.unlockCR(ctx); err != nil {
		return err
	}
	if err := b.waitUntilNotBusy(ctx, massEraseTimeoutMs); err != nil {
		return err
	}

	cr, err := b.readReg(ctx, regCR)
	if err != nil {
		return err
	}

	cr |= crMER1
	if b.part != nil && b.part.HasDualBank {
		cr |= crMER2
	}
	if err := b.writeReg(ctx, regCR, cr); err != nil {
		return err
	}
	if err := b.writeReg(ctx, regCR, cr|crSTART); err != nil {
		return err
	}
	if err := b.waitUntilNotBusy(ctx, massEraseTimeoutMs); err != nil {
		return err
	}

	for i := range b.sectors {
		b.sectors[i].IsErased = Yes
	}

	return b.writeReg(ctx, regCR, crLOCK)
}

// This driver defines no EraseCheck of its own: blank-checking is left to
// the host framework's default byte-reader, which reads each sector back
// through target.Target.ReadU32/ReadU16 itself.
