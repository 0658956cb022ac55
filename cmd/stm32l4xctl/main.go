// Command stm32l4xctl is a standalone exerciser for the stm32l4x bank
// driver. It has no real SWD/JTAG link to attach to, so it drives the
// driver against internal/simtarget instead — useful for trying out the
// command surface and for reproducing a failure from a support ticket
// without hardware in hand.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stm32l4xctl:", err)
		os.Exit(1)
	}
}
