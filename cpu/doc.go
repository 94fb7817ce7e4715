// Package cpu implements the processor and assembler for the Vole machine.
//
// The machine has sixteen 8-bit general-purpose registers (r0-r15), 256 bytes
// of memory shared by code and data, a program counter (PC) and an
// instruction register (IR). Instructions are two bytes wide, big endian, and
// select one of twelve operations with their top nibble. The float-add
// operation works on a one byte floating point format, see Floating.
//
// The assembler provides a small assembly language for the Vole instruction
// set, supporting raw data rows, macros, labels, equates, and compile-time
// expression evaluation.
package cpu
