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
	"fmt"
)

// Register indexes one of the eight general purpose registers.
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
)

// NUM_REGISTERS is the size of the general purpose register bank.
const NUM_REGISTERS = 8

func (r Register) Valid() bool {
	return r < NUM_REGISTERS
}

func (r Register) String() string {
	return fmt.Sprintf("R%d", uint8(r))
}

// Condition holds exactly one of FLAG_POS, FLAG_ZERO or FLAG_NEG.
type Condition uint16

func (c Condition) String() string {
	switch c {
	case FLAG_POS:
		return "P"
	case FLAG_ZERO:
		return "Z"
	case FLAG_NEG:
		return "N"
	}

	return fmt.Sprintf("Condition(%#03b)", uint16(c))
}

// ConditionOf derives the flag describing value as a two's complement word.
func ConditionOf(value uint16) Condition {
	if value == 0 {
		return FLAG_ZERO
	} else if value>>15 == 1 {
		return FLAG_NEG
	}

	return FLAG_POS
}

type RegisterFile struct {
	registers [NUM_REGISTERS]uint16
	program   uint16
	condition Condition
}

// Reset clears R0-R7, points PC at the user memory space and sets Z.
func (rf *RegisterFile) Reset() {
	rf.registers = [NUM_REGISTERS]uint16{}
	rf.program = MEMSPACE_USER
	rf.condition = FLAG_ZERO
}

func (rf *RegisterFile) Read(r Register) uint16 {
	if !r.Valid() {
		panic(invariant("read of register index %d", uint8(r)))
	}

	return rf.registers[r]
}

func (rf *RegisterFile) Write(r Register, value uint16) {
	if !r.Valid() {
		panic(invariant("write of register index %d", uint8(r)))
	}

	rf.registers[r] = value
}

// UpdateFlags sets the condition code from the current contents of r.
func (rf *RegisterFile) UpdateFlags(r Register) {
	rf.condition = ConditionOf(rf.Read(r))
}

func (rf *RegisterFile) PC() uint16 {
	return rf.program
}

func (rf *RegisterFile) SetPC(value uint16) {
	rf.program = value
}

func (rf *RegisterFile) Cond() Condition {
	return rf.condition
}

func (rf *RegisterFile) SetCond(c Condition) {
	switch c {
	case FLAG_POS, FLAG_ZERO, FLAG_NEG:
		rf.condition = c
	default:
		panic(invariant("condition code %#03b", uint16(c)))
	}
}

// Registers returns a copy of R0-R7.
func (rf *RegisterFile) Registers() [NUM_REGISTERS]uint16 {
	return rf.registers
}
