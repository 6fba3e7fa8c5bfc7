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
	"bufio"

	"github.com/sirupsen/logrus"
)

type DeviceHandler struct {
	Keyboard *bufio.Reader
	Display  *bufio.Writer
}

// MachineState is a copy of everything an instruction can observe.
type MachineState struct {
	Registers [NUM_REGISTERS]uint16
	Program   uint16
	Condition Condition
	Memory    [MEMSIZE]uint16
}

// MachineDebugger hooks are called synchronously from the run loop: Step
// after every completed cycle, Read and Write around data accesses.
type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	Memory   Memory
	Debugger MachineDebugger
	Logger   logrus.FieldLogger

	// MaxSteps bounds the number of cycles one Run may execute. Zero means
	// no bound.
	MaxSteps uint64

	regs    RegisterFile
	steps   uint64
	outcome Outcome
}

type Option func(mc *Machine)

func WithMemory(mem Memory) Option {
	return func(mc *Machine) { mc.Memory = mem }
}

func WithDevices(devices *DeviceHandler) Option {
	return func(mc *Machine) { mc.Devices = devices }
}

func WithDebugger(dbg MachineDebugger) Option {
	return func(mc *Machine) { mc.Debugger = dbg }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(mc *Machine) { mc.Logger = logger }
}

func WithMaxSteps(steps uint64) Option {
	return func(mc *Machine) { mc.MaxSteps = steps }
}

// New returns a reset machine backed by RAM unless WithMemory says otherwise.
func New(opts ...Option) *Machine {
	mc := &Machine{}

	for _, opt := range opts {
		opt(mc)
	}

	if mc.Memory == nil {
		mc.Memory = new(RAM)
	}

	if mc.Logger == nil {
		mc.Logger = logrus.StandardLogger()
	}

	mc.Reset()

	return mc
}
