package stm32l4x

import "context"

// Protect translates a sparse protected-sector range into the
// at-most-two-zones-per-bank WRP encoding. Known limitation, left as a
// deliberate simplification rather than guessed at: this overwrites the
// zone pair it touches rather than merging with whatever was already
// protected outside [first,last] — callers who need to preserve existing
// protection must read_options and merge themselves before calling
// Protect.
func (b *Bank) Protect(ctx context.Context, set bool, first, last uint32) error {
	if err := b.requireHalted(ctx); err != nil {
		return err
	}

	ob, err := b.readOptions(ctx)
	if err != nil {
		return err
	}

	f := b.geometry.FirstBankSectors

	var rng WrpRange
	if set {
		rng = WrpRange{Start: byte(first), End: byte(last)}
	} else {
		rng = EmptyRange
	}

	switch {
	case last < f:
		// Case 1: entirely in bank 1.
		ob.Wpr1a = rng
		ob.Wpr1b = EmptyRange
	case first >= f:
		// Case 2: entirely in bank 2.
		if set {
			rng = WrpRange{Start: byte(first - f), End: byte(last - f)}
		}
		ob.Wpr2a = rng
		ob.Wpr2b = EmptyRange
	default:
		// Case 3: spans both banks.
		if set {
			ob.Wpr1a = WrpRange{Start: byte(first), End: byte(f - 1)}
			ob.Wpr2a = WrpRange{Start: 0, End: byte(last - f)}
		} else {
			ob.Wpr1a = EmptyRange
			ob.Wpr2a = EmptyRange
		}
		ob.Wpr1b = EmptyRange
		ob.Wpr2b = EmptyRange
	}

	if err := b.writeOptions(ctx, ob); err != nil {
		return err
	}
	b.log().Info("bank %d: option bytes written; new write-protection takes effect after reset or power cycle", b.index)

	for i := first; i <= last && int(i) < len(b.sectors); i++ {
		b.sectors[i].IsProtected = set
	}

	return nil
}

// ProtectCheck re-derives sectors[i].IsProtected from the WRP registers:
// sector j (bank-relative) is protected iff it falls in either of that
// bank's two WRP ranges.
func (b *Bank) ProtectCheck(ctx context.Context) error {
	ob, err := b.readOptions(ctx)
	if err != nil {
		return err
	}
	b.options = ob

	f := b.geometry.FirstBankSectors
	for i := range b.sectors {
		idx := uint32(i)
		var j byte
		var a, c WrpRange
		if idx < f {
			j = byte(idx)
			a, c = ob.Wpr1a, ob.Wpr1b
		} else {
			j = byte(idx - f)
			a, c = ob.Wpr2a, ob.Wpr2b
		}
		b.sectors[i].IsProtected = inRange(j, a) || inRange(j, c)
	}
	return nil
}

func inRange(j byte, r WrpRange) bool {
	if r.Empty() {
		return false
	}
	return j >= r.Start && j <= r.End
}
