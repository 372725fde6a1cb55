package bpf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramDumpFormat(t *testing.T) {
	prog, err := NewProgram([]Instruction{
		{Code: ClassLD | SizeH | ModeABS, K: 12},
		{Code: ClassRET | SrcA},
	})
	require.NoError(t, err)

	require.Equal(t, "len: 2\n40 0 0 12,22 0 0 0,", prog.Dump())
}

func TestProgramSockFiltersMirrorsInstructions(t *testing.T) {
	prog, err := NewProgram([]Instruction{
		{Code: ClassRET, Jt: 1, Jf: 2, K: 3},
	})
	require.NoError(t, err)

	filters := prog.SockFilters()
	require.Len(t, filters, 1)
	require.EqualValues(t, 1, filters[0].Jt)
	require.EqualValues(t, 2, filters[0].Jf)
	require.EqualValues(t, 3, filters[0].K)
}

func TestProgramInstructionsIsDefensiveCopy(t *testing.T) {
	prog, err := NewProgram([]Instruction{{Code: ClassRET}})
	require.NoError(t, err)

	got := prog.Instructions()
	got[0].K = 0xffffffff

	require.NotEqual(t, uint32(0xffffffff), prog.Instructions()[0].K)
}
