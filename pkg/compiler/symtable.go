package compiler

import (
	"fmt"
	"strings"
)

// VarTable maps variable names to dense storage addresses. The first
// occurrence of a name fixes its address for the rest of the translation;
// addresses are handed out 0, 1, 2, ... and never reused.
type VarTable struct {
	addrs map[string]int
	names []string // names[addr] == name
}

func NewVarTable() *VarTable {
	return &VarTable{
		addrs: make(map[string]int),
	}
}

// Lookup returns the address of name and whether it has been seen.
func (v *VarTable) Lookup(name string) (int, bool) {
	addr, ok := v.addrs[name]
	return addr, ok
}

// FindOrAdd returns the address of name, assigning the next free one on
// first sight.
func (v *VarTable) FindOrAdd(name string) int {
	if addr, ok := v.addrs[name]; ok {
		return addr
	}
	addr := len(v.names)
	v.addrs[name] = addr
	v.names = append(v.names, name)
	return addr
}

// Len is the number of distinct variables, which is also the first address
// not owned by a variable.
func (v *VarTable) Len() int {
	return len(v.names)
}

// Names returns the variables in address order.
func (v *VarTable) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// String returns a dump of the table in address order.
func (v *VarTable) String() string {
	var sb strings.Builder
	if len(v.names) == 0 {
		sb.WriteString("Variables: (empty)\n")
		return sb.String()
	}
	sb.WriteString("Variables:\n")
	for addr, name := range v.names {
		fmt.Fprintf(&sb, "  %-20s  Address: %d\n", name, addr)
	}
	return sb.String()
}
