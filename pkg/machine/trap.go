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

package machine

import (
	"github.com/lassandro/lc3vm/pkg/encoding"
)

// TrapVector is the low byte of a TRAP instruction.
type TrapVector uint8

func (v TrapVector) String() string {
	switch v {
	case TRAP_GETC:
		return "GETC"
	case TRAP_OUT:
		return "OUT"
	case TRAP_PUTS:
		return "PUTS"
	case TRAP_IN:
		return "IN"
	case TRAP_PUTSP:
		return "PUTSP"
	case TRAP_HALT:
		return "HALT"
	}

	return f("TRAP(%#02x)", uint8(v))
}

// TRAP |1111    |0000   |trapvect8       | System call
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execTrap(instruction uint16) error {
	vector := TrapVector(encoding.ZeroExtend(instruction, 8))

	switch vector {
	case TRAP_GETC:
		return mc.trapGetc()
	case TRAP_OUT:
		return mc.trapOut()
	case TRAP_PUTS:
		return mc.trapPuts()
	case TRAP_IN:
		return mc.trapIn()
	case TRAP_PUTSP:
		return mc.trapPutsp()
	case TRAP_HALT:
		return mc.trapHalt()
	default:
		// PC is filled in by execute
		return &DecodeError{Instruction: instruction}
	}
}

func (mc *Machine) readKey(vector TrapVector) (byte, error) {
	if mc.Devices == nil || mc.Devices.Keyboard == nil {
		return 0, &IOError{Vector: vector, Err: ErrNoDevice}
	}

	key, err := mc.Devices.Keyboard.ReadByte()

	if err != nil {
		return 0, &IOError{Vector: vector, Err: err}
	}

	return key, nil
}

// display writes chars and flushes the display.
func (mc *Machine) display(vector TrapVector, chars ...byte) error {
	if mc.Devices == nil || mc.Devices.Display == nil {
		return &IOError{Vector: vector, Err: ErrNoDevice}
	}

	if _, err := mc.Devices.Display.Write(chars); err != nil {
		return &IOError{Vector: vector, Err: err}
	}

	if err := mc.Devices.Display.Flush(); err != nil {
		return &IOError{Vector: vector, Err: err}
	}

	return nil
}

func (mc *Machine) trapGetc() error {
	key, err := mc.readKey(TRAP_GETC)

	if err != nil {
		return err
	}

	mc.regs.Write(R0, uint16(key))

	return nil
}

func (mc *Machine) trapOut() error {
	return mc.display(TRAP_OUT, byte(mc.regs.Read(R0)))
}

func (mc *Machine) trapPuts() error {
	var chars []byte

	addr := mc.regs.Read(R0)

	for i := 0; i < MEMSIZE; i, addr = i+1, addr+1 {
		word := mc.read(addr)

		if word == 0 {
			break
		}

		chars = append(chars, byte(word))
	}

	return mc.display(TRAP_PUTS, chars...)
}

func (mc *Machine) trapIn() error {
	if err := mc.display(TRAP_IN, []byte(INPUT_PROMPT)...); err != nil {
		return err
	}

	key, err := mc.readKey(TRAP_IN)

	if err != nil {
		return err
	}

	mc.regs.Write(R0, uint16(key))

	return mc.display(TRAP_IN, key)
}

func (mc *Machine) trapPutsp() error {
	var chars []byte

	addr := mc.regs.Read(R0)

	for i := 0; i < MEMSIZE; i, addr = i+1, addr+1 {
		word := mc.read(addr)

		if word == 0 {
			break
		}

		chars = append(chars, byte(word))

		if high := byte(word >> 8); high != 0 {
			chars = append(chars, high)
		}
	}

	return mc.display(TRAP_PUTSP, chars...)
}

// A machine without a display halts all the same.
func (mc *Machine) trapHalt() error {
	if mc.Devices != nil && mc.Devices.Display != nil {
		if err := mc.Devices.Display.Flush(); err != nil {
			return &IOError{Vector: TRAP_HALT, Err: err}
		}
	}

	return errHalt
}
