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

package debugger

import (
	"errors"
	"fmt"
	"io"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/lassandro/lc3vm/pkg/machine"
	"github.com/lassandro/lc3vm/pkg/translate"
)

var f = translate.From

var (
	ErrNoBreakpoint = errors.New(f("invalid breakpoint number"))
	ErrNoWatchpoint = errors.New(f("invalid watchpoint number"))
	ErrWatchType    = errors.New(f("watch type must be read, write or readwrite"))
	ErrNotInt       = errors.New(f("expression is not an integer"))
)

// RequestBreak makes the next Step call HandleBreak. It is safe to call from
// any goroutine, e.g. a signal handler.
func (dbg *Debugger) RequestBreak() {
	dbg.breakRequested.Store(true)
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.breakRequested.Swap(false) {
		dbg.handleBreak(mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.PC() == breakpoint.Addr {
			dbg.handleBreak(mc)
			break
		}
	}
}

func (dbg *Debugger) handleBreak(mc *machine.Machine) {
	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc)
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	if dbg.HandleRead != nil && dbg.watching(addr, ReadWatch) {
		dbg.HandleRead(addr, dbg, mc)
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	if dbg.HandleWrite != nil && dbg.watching(addr, WriteWatch) {
		dbg.HandleWrite(addr, dbg, mc)
	}
}

func (dbg *Debugger) watching(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type&wtype != 0 {
			return true
		}
	}

	return false
}

// AddBreakpoint reports false if addr already has a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{Addr: addr})

	return true
}

// RemoveBreakpoint removes the i'th breakpoint. The last breakpoint takes
// its place.
func (dbg *Debugger) RemoveBreakpoint(i int) error {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return ErrNoBreakpoint
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]

	return nil
}

func (dbg *Debugger) ClearBreakpoints() {
	dbg.Breakpoints = nil
}

// AddWatchpoint reports false if the same watchpoint already exists.
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{Addr: addr, Type: wtype})

	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) error {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return ErrNoWatchpoint
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]

	return nil
}

// Eval evaluates a Starlark expression against the machine. R0-R7, PC and
// COND are bound to their values and mem(addr) reads memory. The result is
// truncated to 16 bits.
func (dbg *Debugger) Eval(expr string, mc *machine.Machine) (uint16, error) {
	env := starlark.StringDict{
		"PC":   starlark.MakeInt(int(mc.PC())),
		"COND": starlark.MakeInt(int(mc.Cond())),
		"mem": starlark.NewBuiltin("mem", func(
			thread *starlark.Thread,
			fn *starlark.Builtin,
			args starlark.Tuple,
			kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var addr int

			if err := starlark.UnpackPositionalArgs(
				fn.Name(), args, kwargs, 1, &addr,
			); err != nil {
				return nil, err
			}

			return starlark.MakeInt(int(mc.ReadMemory(uint16(addr)))), nil
		}),
	}

	for r := machine.R0; r <= machine.R7; r++ {
		env[r.String()] = starlark.MakeInt(int(mc.Register(r)))
	}

	thread := &starlark.Thread{Name: "eval"}

	value, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "expr", expr, env)

	if err != nil {
		return 0, err
	}

	result, ok := value.(starlark.Int)

	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotInt, value.Type())
	}

	if i, ok := result.Int64(); ok {
		return uint16(i), nil
	}

	if u, ok := result.Uint64(); ok {
		return uint16(u), nil
	}

	return 0, fmt.Errorf("%w: %v out of range", ErrNotInt, result)
}

func (dbg *Debugger) DumpMem(w io.Writer, mc *machine.Machine, addr, count uint16) {
	for n := uint16(0); n < count; n++ {
		i := addr + n

		if n == 0 {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", i)
		} else if n%4 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.ReadMemory(i)

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%#04x\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%#04x ", result)
		}
	}

	fmt.Fprintln(w)
}

func (dbg *Debugger) DumpRegisters(w io.Writer, mc *machine.Machine) {
	for r := machine.R0; r <= machine.R7; r++ {
		fmt.Fprintf(w, "\033[1m%v\033[0m %#04x  ", r, mc.Register(r))

		if r%4 == 3 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "\033[1mPC\033[0m %#04x  \033[1mCOND\033[0m %v\n", mc.PC(), mc.Cond())
}
