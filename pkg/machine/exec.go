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

type handler func(mc *Machine, instruction uint16) error

// RTI and the reserved opcode have no entry and decode as errors.
var handlers = [16]handler{
	OP_BR:   (*Machine).execBranch,
	OP_ADD:  (*Machine).execAdd,
	OP_LD:   (*Machine).execLoad,
	OP_ST:   (*Machine).execStore,
	OP_JSR:  (*Machine).execJumpSubroutine,
	OP_AND:  (*Machine).execAnd,
	OP_LDR:  (*Machine).execLoadRegister,
	OP_STR:  (*Machine).execStoreRegister,
	OP_NOT:  (*Machine).execNot,
	OP_LDI:  (*Machine).execLoadIndirect,
	OP_STI:  (*Machine).execStoreIndirect,
	OP_JMP:  (*Machine).execJump,
	OP_LEA:  (*Machine).execLoadEffectiveAddress,
	OP_TRAP: (*Machine).execTrap,
}

func (mc *Machine) execute(pc uint16, instruction uint16) error {
	exec := handlers[instruction>>12]

	if exec == nil {
		return &DecodeError{PC: pc, Instruction: instruction}
	}

	if err := exec(mc, instruction); err != nil {
		if decodeErr, ok := err.(*DecodeError); ok {
			decodeErr.PC = pc
		}

		return err
	}

	return nil
}

// Field extraction. Register fields are three bits wide, so the result is
// always a valid Register.

func fieldDR(instruction uint16) Register {
	return Register((instruction >> 9) & 0x7)
}

func fieldSR1(instruction uint16) Register {
	return Register((instruction >> 6) & 0x7)
}

func fieldSR2(instruction uint16) Register {
	return Register(instruction & 0x7)
}

func offset5(instruction uint16) uint16 {
	return encoding.SignExtend(instruction&0x1F, 5)
}

func offset6(instruction uint16) uint16 {
	return encoding.SignExtend(instruction&0x3F, 6)
}

func offset9(instruction uint16) uint16 {
	return encoding.SignExtend(instruction&0x1FF, 9)
}

func offset11(instruction uint16) uint16 {
	return encoding.SignExtend(instruction&0x7FF, 11)
}

// operand2 is SR2 or imm5, selected by bit 5.
func (mc *Machine) operand2(instruction uint16) uint16 {
	if (instruction>>5)&0x1 == 1 {
		return offset5(instruction)
	}

	return mc.regs.Read(fieldSR2(instruction))
}

// ADD  |0001    |DR   |SR1  |0|00 |SR2   | Register  addition
// ADD  |0001    |DR   |SR1  |1|imm5      | Immediate addition
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execAdd(instruction uint16) error {
	dest := fieldDR(instruction)

	mc.regs.Write(dest, mc.regs.Read(fieldSR1(instruction))+mc.operand2(instruction))
	mc.regs.UpdateFlags(dest)

	return nil
}

// AND  |0101    |DR   |SR1  |0|00 |SR2   | Register  bitwise
// AND  |0101    |DR   |SR1  |1|imm5      | Immediate bitwise
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execAnd(instruction uint16) error {
	dest := fieldDR(instruction)

	mc.regs.Write(dest, mc.regs.Read(fieldSR1(instruction))&mc.operand2(instruction))
	mc.regs.UpdateFlags(dest)

	return nil
}

// NOT  |1001    |DR   |SR   |1|11111     | Bitwise complement
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execNot(instruction uint16) error {
	dest := fieldDR(instruction)

	mc.regs.Write(dest, ^mc.regs.Read(fieldSR1(instruction)))
	mc.regs.UpdateFlags(dest)

	return nil
}

// BR   |0000    |N|Z|P|PCoffset9         | Conditional branch
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execBranch(instruction uint16) error {
	mask := Condition((instruction >> 9) & 0x7)

	if mask&mc.regs.Cond() != 0 {
		mc.regs.SetPC(mc.regs.PC() + offset9(instruction))
	}

	return nil
}

// JMP  |1100    |000  |BaseR|000000      | Jump
// RET  |1100    |000  |111  |000000      | Return
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execJump(instruction uint16) error {
	mc.regs.SetPC(mc.regs.Read(fieldSR1(instruction)))

	return nil
}

// JSR  |0100    |1|PCoffset11            | Jump to subroutine
// JSRR |0100    |0|00 |BaseR|000000      | Jump to subroutine register
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execJumpSubroutine(instruction uint16) error {
	ret := mc.regs.PC()
	target := ret + offset11(instruction)

	if (instruction>>11)&0x1 == 0 {
		// Read BaseR first so JSRR R7 jumps to the old R7.
		target = mc.regs.Read(fieldSR1(instruction))
	}

	mc.regs.Write(R7, ret)
	mc.regs.SetPC(target)

	return nil
}

// LD   |0010    |DR   |PCoffset9         | Load
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execLoad(instruction uint16) error {
	dest := fieldDR(instruction)

	mc.regs.Write(dest, mc.read(mc.regs.PC()+offset9(instruction)))
	mc.regs.UpdateFlags(dest)

	return nil
}

// LDI  |1010    |DR   |PCoffset9         | Load indirect
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execLoadIndirect(instruction uint16) error {
	dest := fieldDR(instruction)
	addr := mc.read(mc.regs.PC() + offset9(instruction))

	mc.regs.Write(dest, mc.read(addr))
	mc.regs.UpdateFlags(dest)

	return nil
}

// LDR  |0110    |DR   |BaseR|offset6     | Load base+offset
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execLoadRegister(instruction uint16) error {
	dest := fieldDR(instruction)
	addr := mc.regs.Read(fieldSR1(instruction)) + offset6(instruction)

	mc.regs.Write(dest, mc.read(addr))
	mc.regs.UpdateFlags(dest)

	return nil
}

// LEA  |1110    |DR   |PCoffset9         | Load effective address
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execLoadEffectiveAddress(instruction uint16) error {
	dest := fieldDR(instruction)

	mc.regs.Write(dest, mc.regs.PC()+offset9(instruction))
	mc.regs.UpdateFlags(dest)

	return nil
}

// ST   |0011    |SR   |PCoffset9         | Store
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execStore(instruction uint16) error {
	src := fieldDR(instruction)

	mc.write(mc.regs.PC()+offset9(instruction), mc.regs.Read(src))

	return nil
}

// STI  |1011    |SR   |PCoffset9         | Store indirect
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execStoreIndirect(instruction uint16) error {
	src := fieldDR(instruction)
	addr := mc.read(mc.regs.PC() + offset9(instruction))

	mc.write(addr, mc.regs.Read(src))

	return nil
}

// STR  |0111    |SR   |BaseR|offset6     | Store base+offset
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func (mc *Machine) execStoreRegister(instruction uint16) error {
	src := fieldDR(instruction)
	addr := mc.regs.Read(fieldSR1(instruction)) + offset6(instruction)

	mc.write(addr, mc.regs.Read(src))

	return nil
}
