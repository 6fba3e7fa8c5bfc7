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

package debugger_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/lc3vm/pkg/debugger"
	"github.com/lassandro/lc3vm/pkg/machine"
)

func newMachine(dbg *debugger.Debugger, program []uint16) *machine.Machine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mc := machine.New(machine.WithLogger(logger), machine.WithDebugger(dbg))
	mc.Load(program, 0x3000)

	return mc
}

var program = []uint16{
	0x1021, // ADD R0, R0, #1
	0x3003, // ST R0, #3
	0x2202, // LD R1, #2
	0x1021, // ADD R0, R0, #1
	0xF025, // HALT
	0x0000, // Data
}

func TestBreakpoint(t *testing.T) {
	assert := assert.New(t)

	var hits []uint16

	dbg := &debugger.Debugger{
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			hits = append(hits, mc.PC())
		},
	}

	assert.True(dbg.AddBreakpoint(0x3002))
	assert.False(dbg.AddBreakpoint(0x3002))
	assert.True(dbg.AddBreakpoint(0x3004))

	mc := newMachine(dbg, program)

	assert.Equal(machine.Halted, mc.Run(context.Background()).Status)
	assert.Equal([]uint16{0x3002, 0x3004}, hits)
}

func TestBreakpointRemove(t *testing.T) {
	assert := assert.New(t)

	var dbg debugger.Debugger

	dbg.AddBreakpoint(0x3000)
	dbg.AddBreakpoint(0x3001)
	dbg.AddBreakpoint(0x3002)

	assert.NoError(dbg.RemoveBreakpoint(0))
	assert.Equal([]debugger.Breakpoint{{Addr: 0x3002}, {Addr: 0x3001}}, dbg.Breakpoints)
	assert.ErrorIs(dbg.RemoveBreakpoint(2), debugger.ErrNoBreakpoint)
	assert.ErrorIs(dbg.RemoveBreakpoint(-1), debugger.ErrNoBreakpoint)

	dbg.ClearBreakpoints()
	assert.Empty(dbg.Breakpoints)
}

func TestRequestBreak(t *testing.T) {
	var breaks int

	dbg := &debugger.Debugger{
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			breaks++
		},
	}

	mc := newMachine(dbg, program)
	dbg.RequestBreak()

	mc.Step()
	mc.Step()

	assert.Equal(t, 1, breaks)
}

func TestWatchpoints(t *testing.T) {
	assert := assert.New(t)

	var reads, writes []uint16

	dbg := &debugger.Debugger{
		HandleRead: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			reads = append(reads, addr)
		},
		HandleWrite: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			writes = append(writes, addr)
			// The write has landed before the hook runs
			assert.Equal(uint16(1), mc.ReadMemory(addr))
		},
	}

	assert.True(dbg.AddWatchpoint(0x3005, debugger.ReadWriteWatch))
	assert.False(dbg.AddWatchpoint(0x3005, debugger.ReadWriteWatch))

	mc := newMachine(dbg, program)

	assert.Equal(machine.Halted, mc.Run(context.Background()).Status)
	assert.Equal([]uint16{0x3005}, reads)
	assert.Equal([]uint16{0x3005}, writes)

	require.NoError(t, dbg.RemoveWatchpoint(0))
	assert.ErrorIs(dbg.RemoveWatchpoint(0), debugger.ErrNoWatchpoint)
}

func TestWatchpointType(t *testing.T) {
	assert := assert.New(t)

	for name, want := range map[string]debugger.WatchpointType{
		"r":         debugger.ReadWatch,
		"write":     debugger.WriteWatch,
		"readwrite": debugger.ReadWriteWatch,
	} {
		have, err := debugger.ParseWatchpointType(name)
		assert.NoError(err)
		assert.Equal(want, have)
	}

	_, err := debugger.ParseWatchpointType("x")
	assert.ErrorIs(err, debugger.ErrWatchType)

	assert.Equal("RW", debugger.ReadWriteWatch.String())
}

func TestEval(t *testing.T) {
	var dbg debugger.Debugger

	mc := newMachine(&dbg, program)
	mc.SetRegister(machine.R2, 0x0010)
	mc.SetRegister(machine.R7, 0xFFFF)

	tests := []struct {
		Expr string
		Want uint16
	}{
		{Expr: "PC", Want: 0x3000},
		{Expr: "R2 * 2 + 1", Want: 0x0021},
		{Expr: "mem(PC + 4)", Want: 0xF025},
		{Expr: "mem(0x3000) >> 12", Want: 0x0001},
		{Expr: "R7 + 1", Want: 0x0000},
		{Expr: "-1", Want: 0xFFFF},
		{Expr: "COND", Want: uint16(machine.FLAG_ZERO)},
	}

	for _, test := range tests {
		t.Run(test.Expr, func(t *testing.T) {
			have, err := dbg.Eval(test.Expr, mc)

			require.NoError(t, err)
			assert.Equal(t, test.Want, have)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	var dbg debugger.Debugger

	mc := newMachine(&dbg, program)

	_, err := dbg.Eval("'abc'", mc)
	assert.ErrorIs(t, err, debugger.ErrNotInt)

	_, err = dbg.Eval("R9", mc)
	assert.Error(t, err)

	_, err = dbg.Eval("mem()", mc)
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	var dbg debugger.Debugger
	var buf bytes.Buffer

	mc := newMachine(&dbg, program)

	dbg.DumpMem(&buf, mc, 0x3000, 6)
	assert.Contains(t, buf.String(), "[0x3000]")
	assert.Contains(t, buf.String(), "[0x3004]")
	assert.Contains(t, buf.String(), "0xf025")

	buf.Reset()
	dbg.DumpRegisters(&buf, mc)
	assert.Contains(t, buf.String(), "0x3000")
	assert.Contains(t, buf.String(), "COND")
}
