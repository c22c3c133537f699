package asm

import (
	"strings"
	"testing"

	"milan/pkg/vm"
)

// smallProgram is a counter loop written with labels.
const smallProgram = `
    PUSH 10
    STORE 0
loop:
    LOAD 0
    PUSH 0
    COMPARE 3
    JUMP_NO done
    LOAD 0
    PRINT
    LOAD 0
    PUSH 1
    SUB
    STORE 0
    JUMP loop
done:
    STOP
`

// largeProgram is a generated listing in the Format layout.
var largeProgram = func() string {
	code := make([]vm.Instruction, 0, 3000)
	for i := 0; i < 1000; i++ {
		code = append(code,
			vm.Instruction{Op: vm.OpPUSH, Arg: int64(i)},
			vm.Instruction{Op: vm.OpSTORE, Arg: int64(i % 16)},
			vm.Instruction{Op: vm.OpJUMP, Arg: int64(3*i + 3)},
		)
	}
	code = append(code, vm.Instruction{Op: vm.OpSTOP})
	return Format(code)
}()

func BenchmarkAssembleSmall(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := Assemble(smallProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssembleLarge(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(largeProgram)))
	for i := 0; i < b.N; i++ {
		if _, _, err := Assemble(largeProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFormat(b *testing.B) {
	code, _, err := Assemble(largeProgram)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var sb strings.Builder
		if err := Write(&sb, code); err != nil {
			b.Fatal(err)
		}
	}
}
