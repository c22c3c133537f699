// Package compiler translates Milan source into bytecode for the stack
// machine in package vm.
//
// Pipeline: Milan source → Scanner → Parser (single pass) → CodeGen → vm.Program
//
// The parser never builds a syntax tree: every grammar procedure emits its
// instructions as soon as it recognises them, reserving slots for forward
// jumps and patching them once the target address is known.
package compiler
