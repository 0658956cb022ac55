package stm32l4x

// PartDescriptor is an immutable part-registry entry, styled after
// gice's knownFlash table of flashParams keyed by JEDEC ID — here keyed
// by the 12-bit STM32 device ID instead of a 3-byte flash ID.
type PartDescriptor struct {
	ID   uint16
	Name string

	// Revisions maps the 16-bit revision code (ID-code bits [31:16]) to
	// a short human string. Unknown codes fall back to "unknown (0xXXXX)".
	Revisions map[uint16]string

	PageSize     uint32
	MaxFlashKB   uint32
	HasDualBank  bool

	// FirstBankSectors and HoleSectors are the un-adjusted defaults; the
	// geometry prober may override them once option bits are known and
	// stores the result in a per-bank ResolvedGeometry, never mutating
	// this table.
	FirstBankSectors uint32
	HoleSectors      uint32

	FlashCtrlBase uint32
	FSizeBase     uint32
}

// partRegistry is the static table of supported device IDs.
var partRegistry = map[uint16]PartDescriptor{
	0x415: {
		ID:   0x415,
		Name: "STM32L475/476/486",
		Revisions: map[uint16]string{
			0x1000: "A",
			0x1001: "Z",
			0x2001: "Y",
		},
		PageSize:         2048,
		MaxFlashKB:       1024,
		HasDualBank:      true,
		FirstBankSectors: 256,
		FlashCtrlBase:    0x40022000,
		FSizeBase:        0x1FFF75E0,
	},
	0x435: {
		ID:   0x435,
		Name: "STM32L43x/44x",
		Revisions: map[uint16]string{
			0x1000: "A",
		},
		PageSize:         2048,
		MaxFlashKB:       256,
		HasDualBank:      false,
		FirstBankSectors: 128,
		FlashCtrlBase:    0x40022000,
		FSizeBase:        0x1FFF75E0,
	},
	0x462: {
		ID:   0x462,
		Name: "STM32L45x/46x",
		Revisions: map[uint16]string{
			0x1000: "A",
		},
		PageSize:         2048,
		MaxFlashKB:       512,
		HasDualBank:      false,
		FirstBankSectors: 256,
		FlashCtrlBase:    0x40022000,
		FSizeBase:        0x1FFF75E0,
	},
	0x461: {
		ID:   0x461,
		Name: "STM32L496/4A6",
		Revisions: map[uint16]string{
			0x1000: "A",
			0x2000: "B",
		},
		PageSize:         2048,
		MaxFlashKB:       1024,
		HasDualBank:      true,
		FirstBankSectors: 256,
		FlashCtrlBase:    0x40022000,
		FSizeBase:        0x1FFF75E0,
	},
	0x470: {
		ID:   0x470,
		Name: "STM32L4R/4S",
		Revisions: map[uint16]string{
			0x1000: "A",
			0x1001: "Z",
		},
		PageSize:         4096, // halved from 8192 when DBANK is set; see geometry.go
		MaxFlashKB:       2048,
		HasDualBank:      true,
		FirstBankSectors: 0, // computed in geometry.go from the probed flash size and the DBANK bit
		FlashCtrlBase:    0x40022000,
		FSizeBase:        0x1FFF75E0,
	},
}

// lookupPart finds a PartDescriptor for a raw 32-bit ID-code's low 12
// bits. A missing match fails probe with KindUnsupportedPart.
func lookupPart(rawID uint32) (PartDescriptor, bool) {
	p, ok := partRegistry[uint16(rawID&0xFFF)]
	return p, ok
}

// revisionString decodes the top 16 bits of a raw ID-code against a
// part's revision table, falling back to "unknown (0xXXXX)" for Info().
func revisionString(p PartDescriptor, rawID uint32) string {
	rev := uint16(rawID >> 16)
	if name, ok := p.Revisions[rev]; ok {
		return name
	}
	return unknownRevision(rev)
}

func unknownRevision(rev uint16) string {
	return "unknown (0x" + hex16(rev) + ")"
}

func hex16(v uint16) string {
	const digits = "0123456789ABCDEF"
	b := [4]byte{digits[(v>>12)&0xF], digits[(v>>8)&0xF], digits[(v>>4)&0xF], digits[v&0xF]}
	return string(b[:])
}
