package bpf

import "errors"

// ErrFilterProgramOverflow is returned when a compiled program would exceed
// 65535 instructions, or when a backward-walk jump offset would not fit in
// a uint8. Classic BPF has no long-jump lowering, so there is no recovery
// short of restructuring the predicate.
var ErrFilterProgramOverflow = errors.New("bpf: filter program size exceeds the 65535 instruction / 255 jump-offset limit")
