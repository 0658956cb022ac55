package stm32l4x

import "context"

// unlockCR drops the main-register lock with the two-key sequence.
// Idempotent: a bank that is already unlocked returns immediately,
// matching the gd32vf103 flash driver's unlock() shape (check LOCK,
// short-circuit if already clear, otherwise write both keys back to
// back and re-check).
func (b *Bank) unlockCR(ctx context.Context) error {
	cr, err := b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	if cr&crLOCK == 0 {
		return nil
	}

	if err := b.writeReg(ctx, regKEYR, keyKEY1); err != nil {
		return err
	}
	if err := b.writeReg(ctx, regKEYR, keyKEY2); err != nil {
		return err
	}

	cr, err = b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	if cr&crLOCK != 0 {
		return newErr(KindUnlockFailed, "CR.LOCK still set after key sequence")
	}
	return nil
}

// unlockOptcr drops the option-register lock, analogous to unlockCR
// with the OPTKEYR key pair and the OPTLOCK bit.
func (b *Bank) unlockOptcr(ctx context.Context) error {
	cr, err := b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	if cr&crOPTLOCK == 0 {
		return nil
	}

	if err := b.writeReg(ctx, regOPTKEYR, keyOPTKEY1); err != nil {
		return err
	}
	if err := b.writeReg(ctx, regOPTKEYR, keyOPTKEY2); err != nil {
		return err
	}

	cr, err = b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	if cr&crOPTLOCK != 0 {
		return newErr(KindUnlockFailed, "CR.OPTLOCK still set after key sequence")
	}
	return nil
}

// lockCR restores CR.LOCK after any operation that wrote CR.
func (b *Bank) lockCR(ctx context.Context) error {
	cr, err := b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	return b.writeReg(ctx, regCR, cr|crLOCK)
}

// lockOptcr restores CR.OPTLOCK after an option-byte write.
func (b *Bank) lockOptcr(ctx context.Context) error {
	cr, err := b.readReg(ctx, regCR)
	if err != nil {
		return err
	}
	return b.writeReg(ctx, regCR, cr|crOPTLOCK)
}
