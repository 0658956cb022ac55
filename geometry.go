package stm32l4x

import (
	"context"
	"fmt"
)

// Probe reads the device ID, matches it against the part registry, reads
// the programmed flash size, applies option-bit-dependent geometry
// adjustments, and (re)builds the sector table.
func (b *Bank) Probe(ctx context.Context) error {
	rawID, err := b.tgt.ReadU32(ctx, deviceIDRegAddr)
	if err != nil {
		return wrapErr(KindTransport, "read ID-code register", err)
	}
	b.rawID = rawID

	part, ok := lookupPart(rawID)
	if !ok {
		return newErr(KindUnsupportedPart, fmt.Sprintf("unsupported device id 0x%X", rawID&0xFFF))
	}
	b.part = &part

	flashKB := b.readFlashSizeKB(ctx, part)

	geo := ResolvedGeometry{
		PageSize:         part.PageSize,
		FirstBankSectors: part.FirstBankSectors,
		HoleSectors:      part.HoleSectors,
		BaseAddress:      flashBankBase,
	}

	if err := b.adjustDualBankGeometry(ctx, part, flashKB, &geo); err != nil {
		return err
	}

	sizeBytes := flashKB * 1024
	if b.userOverrideSizeBytes != 0 {
		sizeBytes = b.userOverrideSizeBytes
	}
	geo.SizeBytes = sizeBytes
	b.geometry = geo

	b.buildSectorTable()
	b.probed = true
	return nil
}

// readFlashSizeKB reads the factory-programmed flash-size halfword: a
// failed read, a zero value, or a value exceeding MaxFlashKB all fall
// back to MaxFlashKB with a warning.
func (b *Bank) readFlashSizeKB(ctx context.Context, part PartDescriptor) uint32 {
	v, err := b.tgt.ReadU16(ctx, part.FSizeBase)
	if err != nil {
		b.log().Warning("bank %d: failed to read flash size, assuming %d KB: %v", b.index, part.MaxFlashKB, err)
		return part.MaxFlashKB
	}
	kb := uint32(v)
	if kb == 0 || kb > part.MaxFlashKB {
		b.log().Warning("bank %d: implausible flash size %d KB, assuming %d KB", b.index, kb, part.MaxFlashKB)
		return part.MaxFlashKB
	}
	return kb
}

// adjustDualBankGeometry applies the option-bit-dependent geometry
// adjustment. Part 0x470 runs with an 8192-byte page in single-bank mode
// (DBANK clear, every sector belongs to bank 1, no hole) or a 4096-byte
// page split evenly across both banks (DBANK set); other dual-bank parts
// keep their registry page size and only compute a cross-bank hole when
// DUALBANK is set and the probed flash is smaller than max.
func (b *Bank) adjustDualBankGeometry(ctx context.Context, part PartDescriptor, flashKB uint32, geo *ResolvedGeometry) error {
	if !part.HasDualBank {
		return nil
	}

	optr, err := b.readReg(ctx, regOPTR)
	if err != nil {
		return err
	}

	if part.ID == 0x470 {
		if optr&optrDBANK == 0 {
			geo.PageSize = 8192
			geo.FirstBankSectors = flashKB * 1024 / geo.PageSize
			geo.HoleSectors = 0
			return nil
		}
		geo.PageSize = 4096
		total := part.MaxFlashKB * 1024 / geo.PageSize / 2
		first := flashKB * 1024 / geo.PageSize / 2
		geo.FirstBankSectors = first
		geo.HoleSectors = total - first
		return nil
	}

	if optr&optrDUALBANK != 0 && flashKB < part.MaxFlashKB {
		pageSize := geo.PageSize
		first := (flashKB * 1024 / pageSize) / 2
		total := (part.MaxFlashKB * 1024 / pageSize) / 2
		geo.FirstBankSectors = first
		geo.HoleSectors = total - first
	}
	return nil
}

// buildSectorTable allocates SizeBytes/PageSize sectors. Any previous
// sector array is replaced wholesale — Bank owns its sectors exclusively.
func (b *Bank) buildSectorTable() {
	n := b.geometry.SizeBytes / b.geometry.PageSize
	sectors := make([]Sector, n)
	for i := range sectors {
		sectors[i] = Sector{
			Offset:      uint32(i) * b.geometry.PageSize,
			Size:        b.geometry.PageSize,
			IsErased:    Unknown,
			IsProtected: true, // conservative until ProtectCheck actually runs
		}
	}
	b.sectors = sectors
}

// AutoProbe is a no-op if already probed.
func (b *Bank) AutoProbe(ctx context.Context) error {
	if b.probed {
		return nil
	}
	return b.Probe(ctx)
}

// Sectors returns the probed sector table. Nil iff the bank has not
// been probed.
func (b *Bank) Sectors() []Sector {
	return b.sectors
}

// sectorControllerNumber maps a logical sector index to the controller
// SNB field value and bank-selector bit: for dual-bank parts with a
// hole, a sector index i >= FirstBankSectors maps to controller sector
// number i + HoleSectors with the bank-selector bit asserted.
func (b *Bank) sectorControllerNumber(i uint32) (snb uint32, bker bool) {
	if i < b.geometry.FirstBankSectors {
		return i, false
	}
	return i + b.geometry.HoleSectors, true
}
