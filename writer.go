package stm32l4x

import (
	"context"

	"github.com/openflash/stm32l4x/target"
)

const (
	flashWordSize = 8

	ringInitialSize = 16 * 1024
	ringMinSize     = 257 // halved down to a minimum of 256 B+1
)

// Write is the streaming writer's public entry point. offset must be
// 8-byte aligned (flash words are 64 bits); data whose length is not a
// multiple of 8 is padded with 0xFF rather than read past the caller's
// slice, since reading past the end of the caller-owned buffer is unsafe
// regardless of what bytes happen to follow it in memory.
func (b *Bank) Write(ctx context.Context, offset uint32, data []byte) error {
	if err := b.requireHalted(ctx); err != nil {
		return err
	}
	if offset%flashWordSize != 0 {
		return newErr(KindAlignment, "offset is not a multiple of 8")
	}

	payload := data
	if rem := len(data) % flashWordSize; rem != 0 {
		pad := flashWordSize - rem
		b.log().Warning("bank %d: write length %d is not a multiple of 8, padding with %d bytes of 0xFF", b.index, len(data), pad)
		payload = make([]byte, len(data)+pad)
		copy(payload, data)
		for i := len(data); i < len(payload); i++ {
			payload[i] = 0xFF
		}
	}

	if err := b.unlockCR(ctx); err != nil {
		return err
	}

	writeErr := b.writeBlock(ctx, offset, payload)

	lockErr := b.lockCR(ctx)
	if writeErr != nil {
		return writeErr
	}
	return lockErr
}

// writeBlock drives the on-target streaming protocol: upload the stub,
// allocate a ring buffer, run the stub against the ring while it drains
// into flash, and classify whatever fault it reports.
func (b *Bank) writeBlock(ctx context.Context, offset uint32, payload []byte) error {
	stubArea, err := b.tgt.AllocWorkingArea(ctx, stubCodeSize)
	if err != nil {
		return newErr(KindNoWorkingArea, "failed to allocate stub code area")
	}
	defer b.tgt.FreeWorkingArea(ctx, stubArea)

	if err := b.tgt.WriteBuffer(ctx, stubArea.Addr, StubPayload()); err != nil {
		return wrapErr(KindTransport, "upload flash algorithm stub", err)
	}

	ring, err := b.allocRing(ctx)
	if err != nil {
		return newErr(KindNoWorkingArea, "failed to allocate ring buffer")
	}
	defer b.tgt.FreeWorkingArea(ctx, ring)

	numWords := uint32(len(payload)) / flashWordSize
	opts := target.RunFlashOpts{
		Payload:    payload,
		BlockBytes: flashWordSize,
		RingStart:  ring.Addr,
		RingSize:   ring.Size,
		Entry:      stubArea.Addr,
		Exit:       stubArea.Addr, // stub halts itself via bkpt; no separate exit breakpoint needed
		Regs: []target.RegParam{
			{Name: "r0", Value: ring.Addr, Out: true},
			{Name: "r1", Value: ring.Addr + ring.Size},
			{Name: "r2", Value: b.geometry.BaseAddress + offset},
			{Name: "r3", Value: numWords},
			{Name: "r4", Value: b.part.FlashCtrlBase},
		},
	}

	out, runErr := b.tgt.RunFlashAsync(ctx, opts)
	if runErr == nil {
		return nil
	}
	if runErr != target.ErrFlashOpFailed {
		return wrapErr(KindTransport, "run flash algorithm", runErr)
	}

	errWord := out["r0"]
	bits := errWord & srErrorMask
	if clrErr := b.clearErrorsOnly(ctx, bits); clrErr != nil {
		return clrErr
	}
	if bits&srWRPERR != 0 {
		return newErr(KindWriteProtected, "stub reported WRPERR")
	}
	if bits == 0 {
		return newErr(KindControllerError, "stub faulted with no SR error bits latched")
	}
	return controllerErr(bits)
}

// allocRing allocates the scratch ring buffer, halving on failure down
// to the minimum.
func (b *Bank) allocRing(ctx context.Context) (*target.WorkingArea, error) {
	for size := uint32(ringInitialSize); size >= ringMinSize; size /= 2 {
		if wa, err := b.tgt.AllocWorkingAreaTry(ctx, size); err == nil {
			return wa, nil
		}
	}
	return nil, newErr(KindNoWorkingArea, "no ring buffer size fits in available working area")
}

// Read returns n bytes of the bank starting at offset, fetched through
// 32-bit target reads.
func (b *Bank) Read(ctx context.Context, offset uint32, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i += 4 {
		v, err := b.tgt.ReadU32(ctx, b.geometry.BaseAddress+offset+uint32(i))
		if err != nil {
			return nil, wrapErr(KindTransport, "read flash", err)
		}
		chunk := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
		copy(out[i:], chunk)
	}
	return out, nil
}
