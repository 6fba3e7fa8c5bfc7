// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine_test

import (
	"bufio"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/lc3vm/pkg/machine"
)

// TRAP |1111    |0000   |trapvect8       | System call
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestTrap(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:     "GETC",
			Keyboard: "A",
			Input: testMachineState{
				Program:   0x3000,
				Condition: machine.FLAG_NEG,
				Registers: [8]uint16{
					0: 0xCAFE,
				},
				Memory: map[uint16]uint16{
					0x3000: 0xF020,
				},
			},
			Output: testMachineState{
				Program:   0x3001,
				Condition: machine.FLAG_NEG,
				Registers: [8]uint16{
					0: 0x0041, // 'A'
				},
			},
		},
		{
			Name:    "OUT",
			Display: "H",
			Input: testMachineState{
				Program: 0x3000,
				Registers: [8]uint16{
					0: 0x0148, // Only the low byte is written
				},
				Memory: map[uint16]uint16{
					0x3000: 0xF021,
				},
			},
			Output: testMachineState{
				Program: 0x3001,
				Registers: [8]uint16{
					0: 0x0148,
				},
			},
		},
		{
			Name:    "PUTS",
			Display: "HI",
			Input: testMachineState{
				Program: 0x3000,
				Registers: [8]uint16{
					0: 0x4000,
				},
				Memory: map[uint16]uint16{
					0x3000: 0xF022,
					0x4000: 0x0048, // 'H'
					0x4001: 0x0049, // 'I'
					0x4002: 0x0000,
					0x4003: 0x0021, // Past the terminator
				},
			},
			Output: testMachineState{
				Program: 0x3001,
				Registers: [8]uint16{
					0: 0x4000,
				},
			},
		},
		{
			Name:     "IN",
			Keyboard: "xy",
			Display:  machine.INPUT_PROMPT + "x",
			Input: testMachineState{
				Program:   0x3000,
				Condition: machine.FLAG_POS,
				Memory: map[uint16]uint16{
					0x3000: 0xF023,
				},
			},
			Output: testMachineState{
				Program:   0x3001,
				Condition: machine.FLAG_POS,
				Registers: [8]uint16{
					0: 0x0078, // 'x'
				},
			},
		},
		{
			Name:    "PUTSP",
			Display: "Hello",
			Input: testMachineState{
				Program: 0x3000,
				Registers: [8]uint16{
					0: 0x4000,
				},
				Memory: map[uint16]uint16{
					0x3000: 0xF024,
					0x4000: 0x6548, // 'H' 'e'
					0x4001: 0x6C6C, // 'l' 'l'
					0x4002: 0x006F, // 'o'
					0x4003: 0x0000,
				},
			},
			Output: testMachineState{
				Program: 0x3001,
				Registers: [8]uint16{
					0: 0x4000,
				},
			},
		},
		{
			Name:   "HALT",
			Status: machine.Halted,
			Input: testMachineState{
				Program:   0x3000,
				Condition: machine.FLAG_NEG,
				Registers: [8]uint16{
					0: 0x1111,
					7: 0x7777,
				},
				Memory: map[uint16]uint16{
					0x3000: 0xF025,
				},
			},
			Output: testMachineState{
				Program:   0x3001,
				Condition: machine.FLAG_NEG,
				Registers: [8]uint16{
					0: 0x1111,
					7: 0x7777,
				},
			},
		},
		{
			Name:   "HALT Stays Halted",
			Status: machine.Halted,
			Steps:  4,
			Input: testMachineState{
				Program: 0x3000,
				Memory: map[uint16]uint16{
					0x3000: 0xF025,
					0x3001: 0x1021, // ADD R0, R0, #1
				},
			},
			Output: testMachineState{
				Program: 0x3001,
			},
		},
		{
			Name:   "Unknown Vector",
			Status: machine.Faulted,
			Kind:   machine.DecodeFault,
			Input: testMachineState{
				Program: 0x3000,
				Memory: map[uint16]uint16{
					0x3000: 0xF026,
				},
			},
			Output: testMachineState{
				Program: 0x3001,
			},
		},
		{
			Name:   "GETC End Of Input",
			Status: machine.Faulted,
			Kind:   machine.IOFault,
			Input: testMachineState{
				Program: 0x3000,
				Memory: map[uint16]uint16{
					0x3000: 0xF020,
				},
			},
			Output: testMachineState{
				Program: 0x3001,
			},
		},
	})
}

func TestTrapErrors(t *testing.T) {
	assert := assert.New(t)

	mc, _ := newTestMachine("")
	mc.Load([]uint16{0xF020}, 0x3000)

	outcome := mc.Step()
	assert.ErrorIs(outcome.Err, io.EOF)

	var ioErr *machine.IOError
	require.ErrorAs(t, outcome.Err, &ioErr)
	assert.Equal(machine.TRAP_GETC, ioErr.Vector)

	mc.Load([]uint16{0xF0FF}, 0x3000)
	outcome = mc.Step()

	var decodeErr *machine.DecodeError
	require.ErrorAs(t, outcome.Err, &decodeErr)
	assert.Equal(uint16(0x3000), decodeErr.PC)
	assert.Equal(uint16(0xF0FF), decodeErr.Instruction)
}

func TestTrapNoDevice(t *testing.T) {
	assert := assert.New(t)

	mc := machine.New(machine.WithLogger(quietLogger()))

	for _, instruction := range []uint16{0xF020, 0xF021, 0xF022, 0xF023, 0xF024} {
		mc.Load([]uint16{instruction}, 0x3000)

		outcome := mc.Step()

		assert.Equal(machine.IOFault, outcome.Kind())
		assert.ErrorIs(outcome.Err, machine.ErrNoDevice)
	}

	mc.Load([]uint16{0xF025}, 0x3000)
	assert.Equal(machine.Halted, mc.Step().Status)
}

type failingWriter struct{}

var errDisplay = errors.New("display unplugged")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errDisplay
}

func TestTrapDisplayError(t *testing.T) {
	mc := machine.New(
		machine.WithLogger(quietLogger()),
		machine.WithDevices(&machine.DeviceHandler{
			Display: bufio.NewWriter(failingWriter{}),
		}),
	)
	mc.Load([]uint16{0xF021}, 0x3000)
	mc.SetRegister(machine.R0, 'a')

	outcome := mc.Step()

	assert.Equal(t, machine.Faulted, outcome.Status)
	assert.ErrorIs(t, outcome.Err, errDisplay)
}

func TestTrapVectorString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("GETC", machine.TRAP_GETC.String())
	assert.Equal("OUT", machine.TRAP_OUT.String())
	assert.Equal("PUTS", machine.TRAP_PUTS.String())
	assert.Equal("IN", machine.TRAP_IN.String())
	assert.Equal("PUTSP", machine.TRAP_PUTSP.String())
	assert.Equal("HALT", machine.TRAP_HALT.String())
	assert.Contains(machine.TrapVector(0x26).String(), "26")
}
