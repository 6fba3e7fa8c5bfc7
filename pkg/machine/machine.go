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
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/lc3vm/pkg/encoding"
)

// errHalt is returned by the HALT trap and turned into a Halted outcome.
var errHalt = errors.New("halt")

// Reset clears memory and registers. PC starts in the user memory space.
func (mc *Machine) Reset() {
	clearMemory(mc.Memory)
	mc.regs.Reset()
	mc.steps = 0
	mc.outcome = Outcome{}
}

// Load resets the machine, copies words into memory starting at origin and
// points PC at origin. Words past the end of the address space wrap to 0x0000.
func (mc *Machine) Load(words []uint16, origin uint16) {
	mc.Reset()

	if len(words) > MEMSIZE {
		words = words[:MEMSIZE]
	}

	for i, word := range words {
		mc.Memory.Write(origin+uint16(i), word)
	}

	mc.regs.SetPC(origin)
}

// LoadImage reads a big-endian object image whose first word is the origin.
func (mc *Machine) LoadImage(reader io.Reader) error {
	image, err := io.ReadAll(reader)

	if err != nil {
		return err
	}

	origin, words, err := encoding.DecodeImage(image)

	if err != nil {
		return err
	}

	mc.Load(words, origin)

	mc.Logger.WithFields(logrus.Fields{
		"origin": f("%#04x", origin),
		"words":  len(words),
	}).Debug("image loaded")

	return nil
}

func (mc *Machine) Register(r Register) uint16 {
	return mc.regs.Read(r)
}

func (mc *Machine) SetRegister(r Register, value uint16) {
	mc.regs.Write(r, value)
}

func (mc *Machine) PC() uint16 {
	return mc.regs.PC()
}

func (mc *Machine) SetPC(value uint16) {
	mc.regs.SetPC(value)
}

func (mc *Machine) Cond() Condition {
	return mc.regs.Cond()
}

func (mc *Machine) SetCond(c Condition) {
	mc.regs.SetCond(c)
}

// ReadMemory reads addr without notifying the debugger.
func (mc *Machine) ReadMemory(addr uint16) uint16 {
	return mc.Memory.Read(addr)
}

// WriteMemory writes addr without notifying the debugger.
func (mc *Machine) WriteMemory(addr uint16, value uint16) {
	mc.Memory.Write(addr, value)
}

// Steps is the number of cycles fetched since the last Reset.
func (mc *Machine) Steps() uint64 {
	return mc.steps
}

// Outcome is the result of the most recent cycle.
func (mc *Machine) Outcome() Outcome {
	return mc.outcome
}

func (mc *Machine) Snapshot() MachineState {
	state := MachineState{
		Registers: mc.regs.Registers(),
		Program:   mc.regs.PC(),
		Condition: mc.regs.Cond(),
	}

	if ram, ok := mc.Memory.(*RAM); ok {
		state.Memory = *ram
	} else {
		for addr := range state.Memory {
			state.Memory[addr] = mc.Memory.Read(uint16(addr))
		}
	}

	return state
}

func (mc *Machine) read(addr uint16) uint16 {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.Memory.Read(addr)
}

func (mc *Machine) write(addr uint16, value uint16) {
	mc.Memory.Write(addr, value)

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// Step runs one fetch, decode, execute cycle. Once the machine has halted or
// faulted every further call returns that same outcome.
func (mc *Machine) Step() (outcome Outcome) {
	if mc.outcome.Terminal() {
		return mc.outcome
	}

	pc := mc.regs.PC()

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(*InvariantError)

			if !ok {
				panic(r)
			}

			outcome = mc.finish(pc, err)
		}
	}()

	instruction := mc.Memory.Read(pc)
	mc.regs.SetPC(pc + 1)
	mc.steps++

	mc.Logger.WithFields(logrus.Fields{
		"pc":    f("%#04x", pc),
		"instr": f("%#04x", instruction),
		"op":    OpName(instruction),
	}).Debug("step")

	outcome = mc.finish(pc, mc.execute(pc, instruction))

	if outcome.Status == Running && mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return outcome
}

func (mc *Machine) finish(pc uint16, err error) Outcome {
	switch {
	case err == nil:
		mc.outcome = Outcome{Status: Running}
	case errors.Is(err, errHalt):
		mc.outcome = Outcome{Status: Halted}
		mc.Logger.WithField("pc", f("%#04x", pc)).Debug("halted")
	default:
		mc.outcome = Outcome{Status: Faulted, Err: err}
		mc.Logger.WithField("pc", f("%#04x", pc)).WithError(err).Warn("fault")
	}

	return mc.outcome
}

// Run steps the machine until it halts or faults, MaxSteps cycles have run,
// or ctx is done. ctx is only checked between instructions: a trap blocked
// on the keyboard is not interrupted.
func (mc *Machine) Run(ctx context.Context) Outcome {
	for executed := uint64(0); ; executed++ {
		if mc.outcome.Terminal() {
			return mc.outcome
		}

		if err := ctx.Err(); err != nil {
			return Outcome{Status: Cancelled, Err: err}
		}

		if mc.MaxSteps != 0 && executed >= mc.MaxSteps {
			return Outcome{Status: Exhausted, Err: ErrBudgetExhausted}
		}

		if outcome := mc.Step(); outcome.Status != Running {
			return outcome
		}
	}
}
