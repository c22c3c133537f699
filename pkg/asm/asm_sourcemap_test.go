package asm

import (
	"testing"
)

func TestAssembleSourceMap(t *testing.T) {
	code := `
; Line 2: Comment
PUSH 10         ; Line 3: address 0
                ; Line 4: Empty
LABEL:          ; Line 5: Label only, points at address 1
PRINT           ; Line 6: address 1
2:	JUMP LABEL  ; Line 7: address 2
STOP            ; Line 8: address 3
`

	instrs, sourceMap, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	tests := []struct {
		addr int
		line int
	}{
		{0, 3},
		{1, 6},
		{2, 7},
		{3, 8},
	}

	for _, tc := range tests {
		if got := sourceMap[tc.addr]; got != tc.line {
			t.Errorf("sourceMap[%d] = %d; want %d", tc.addr, got, tc.line)
		}
	}

	if len(sourceMap) != len(instrs) {
		t.Errorf("sourceMap has %d entries for %d instructions", len(sourceMap), len(instrs))
	}
	if instrs[2].Arg != 1 {
		t.Errorf("JUMP LABEL resolved to %d; want 1", instrs[2].Arg)
	}
}
