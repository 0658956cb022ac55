// # References:
//
// ST (https://www.st.com/resource/en/reference_manual/)
//   - [RM0351]: STM32L4x5/L4x6 advanced Arm-based 32-bit MCUs reference manual,
//     chapter "Embedded Flash memory (FLASH)".
//   - [RM0394]: STM32L43x/L44x/L45x/L46x/L47x/L48x/L49x/L4Ax reference manual,
//     chapter "Embedded Flash memory (FLASH)".
//   - [RM0432]: STM32L4R/4S advanced Arm-based 32-bit MCUs reference manual,
//     chapter "Embedded Flash memory (FLASH)", dual-bank/DBANK option bit.
//
// Arm
//   - [DDI0419]: Armv6-M Architecture Reference Manual (Cortex-M0 Thumb
//     instruction encodings used by the flash-word-programming stub).
package stm32l4x
