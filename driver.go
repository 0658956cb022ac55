// Package stm32l4x implements a flash-memory bank driver for the
// STM32L4 family, meant to be plugged into a host debugging/programming
// framework (out of scope here; see target.Target). It programs
// on-chip NOR flash over whatever debug link the host framework already
// has open, by manipulating the flash controller's registers directly
// and, for bulk writes, by uploading and running a small stub on the
// target CPU (see stub.go).
package stm32l4x

import (
	"context"
	"fmt"

	"github.com/openflash/stm32l4x/target"
)

// TriState models Sector.IsErased: unknown until an erase or blank-check
// has actually run.
type TriState int

const (
	Unknown TriState = iota
	Yes
	No
)

// Sector is one entry of a probed bank's sector table.
type Sector struct {
	Offset      uint32
	Size        uint32
	IsErased    TriState
	IsProtected bool
}

// ResolvedGeometry is the per-bank, owned result of probing: the
// immutable PartDescriptor table is never mutated, and every
// option-bit-dependent adjustment (dual-bank holes, page-size doubling)
// is copied into this struct instead.
type ResolvedGeometry struct {
	PageSize         uint32
	FirstBankSectors uint32
	HoleSectors      uint32
	BaseAddress      uint32
	SizeBytes        uint32
}

// Bank is the per-bank state. It owns its sector array exclusively and
// is destroyed with the bank (in Go terms: garbage collected once
// unreferenced — there is no separate destructor since nothing here
// holds host-side resources across calls).
type Bank struct {
	tgt    target.Target
	logger target.Logger
	clock  Clock

	index int // 0-based index of this bank within the Driver, for logging only

	part  *PartDescriptor // nil until probed; never mutated
	rawID uint32

	userOverrideSizeBytes uint32

	geometry ResolvedGeometry
	sectors  []Sector
	options  OptionBytes
	probed   bool
}

func (b *Bank) log() target.Logger {
	if b.logger != nil {
		return b.logger
	}
	return target.NopLogger{}
}

// requireHalted is the target-halted precondition every facade command
// validates before touching a register.
func (b *Bank) requireHalted(ctx context.Context) error {
	state, err := b.tgt.TargetState(ctx)
	if err != nil {
		return wrapErr(KindTransport, "read target state", err)
	}
	if state != target.StateHalted {
		return newErr(KindNotHalted, fmt.Sprintf("target is %s, not halted", state))
	}
	return nil
}

// Driver exposes the fixed operation set the host framework expects,
// plus the option-bit toggle commands, and owns one Bank per configured
// flash bank of the target.
type Driver struct {
	banks []*Bank
}

// NewDriver constructs a Driver with numBanks un-probed banks, each
// talking to the target through tgt and logging through logger (either
// may be a single shared instance — a Target/Logger pair is ordinarily
// shared across all peripherals on one device).
func NewDriver(tgt target.Target, logger target.Logger, numBanks int) *Driver {
	d := &Driver{banks: make([]*Bank, numBanks)}
	for i := range d.banks {
		d.banks[i] = &Bank{tgt: tgt, logger: logger, index: i}
	}
	return d
}

// Bank returns the i'th configured bank, or nil if out of range.
func (d *Driver) Bank(i int) *Bank {
	if i < 0 || i >= len(d.banks) {
		return nil
	}
	return d.banks[i]
}

// SetOverrideSizeBytes overrides the autodetected flash size for bank i
// (0 = autodetect, the default). Must be called before Probe to take effect.
func (d *Driver) SetOverrideSizeBytes(i int, size uint32) {
	if bk := d.Bank(i); bk != nil {
		bk.userOverrideSizeBytes = size
	}
}

// Geometry returns the bank's resolved geometry. Zero value until Probe
// has run.
func (b *Bank) Geometry() ResolvedGeometry {
	return b.geometry
}

// Info returns a best-effort human string for the bank: part name and
// decoded revision, or "unprobed" before Probe has run.
func (b *Bank) Info() string {
	if !b.probed || b.part == nil {
		return "unprobed"
	}
	return fmt.Sprintf("%s - Rev: %s", b.part.Name, revisionString(*b.part, b.rawID))
}

func (d *Driver) Info(bankIdx int) (string, error) {
	bk := d.Bank(bankIdx)
	if bk == nil {
		return "", newErr(KindSyntaxError, "no such bank")
	}
	return bk.Info(), nil
}

// CommandFunc is the shape every entry in CommandTable takes: args are
// the already-tokenized command-line arguments, and the return is the
// status the host scripting layer sees.
type CommandFunc func(ctx context.Context, args []string) error

// CommandTable is a capability record used in place of virtual dispatch:
// the host looks up an operation by name and calls into it directly.
func (d *Driver) CommandTable() map[string]CommandFunc {
	return map[string]CommandFunc{
		"lock":                               d.cmdLock,
		"unlock":                             d.cmdUnlock,
		"mass_erase":                         d.cmdMassErase,
		"window_watchdog_soft_selection":     d.cmdWindowWatchdogSoftSelection,
		"independent_watchdog_standby":       d.cmdIndependentWatchdogStandby,
		"independent_watchdog_stop":          d.cmdIndependentWatchdogStop,
		"independent_watchdog_soft_selection": d.cmdIndependentWatchdogSoftSelection,
	}
}
