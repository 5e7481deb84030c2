package source

import (
	"fmt"

	"golang.org/x/net/bpf"

	"firestige.xyz/atalkdump/internal/core"
)

// keepLen is the snap length returned for accepted packets.
const keepLen = 0x40000

// appleTalkProgram accepts Ethernet frames carrying DDP or AARP, either as
// Ethernet II types or behind an 802.2 LLC + SNAP header.
var appleTalkProgram = []bpf.Instruction{
	/* 0 */ bpf.LoadAbsolute{Off: 12, Size: 2},
	/* 1 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(core.EtherTypeAppleTalk), SkipTrue: 10},
	/* 2 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(core.EtherTypeAARP), SkipTrue: 9},
	/* 3 */ bpf.JumpIf{Cond: bpf.JumpGreaterThan, Val: 1500, SkipTrue: 9},
	/* 4 */ bpf.LoadAbsolute{Off: 14, Size: 2},
	/* 5 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0xaaaa, SkipFalse: 7},
	/* 6 */ bpf.LoadAbsolute{Off: 16, Size: 1},
	/* 7 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x03, SkipFalse: 5},
	/* 8 */ bpf.LoadAbsolute{Off: 20, Size: 2},
	/* 9 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(core.EtherTypeAppleTalk), SkipTrue: 2},
	/* 10 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(core.EtherTypeAARP), SkipTrue: 1},
	/* 11 */ bpf.RetConstant{Val: 0},
	/* 12 */ bpf.RetConstant{Val: keepLen},
	/* 13 */ bpf.RetConstant{Val: 0},
}

// Filter is a compiled classic BPF program. It runs in-process through the
// x/net/bpf VM, or in the kernel when a capture socket accepts raw
// instructions.
type Filter struct {
	vm  *bpf.VM
	raw []bpf.RawInstruction
}

// NewAppleTalkFilter compiles the Ethernet AppleTalk filter.
func NewAppleTalkFilter() (*Filter, error) {
	return newFilter(appleTalkProgram)
}

func newFilter(prog []bpf.Instruction) (*Filter, error) {
	raw, err := bpf.Assemble(prog)
	if err != nil {
		return nil, fmt.Errorf("assemble bpf filter: %w", err)
	}
	vm, err := bpf.NewVM(prog)
	if err != nil {
		return nil, fmt.Errorf("load bpf filter: %w", err)
	}
	return &Filter{vm: vm, raw: raw}, nil
}

// Match reports whether the program accepts data. Loads beyond data make
// the program reject it.
func (f *Filter) Match(data []byte) bool {
	n, err := f.vm.Run(data)
	return err == nil && n > 0
}

// Raw returns the assembled program.
func (f *Filter) Raw() []bpf.RawInstruction {
	return f.raw
}
