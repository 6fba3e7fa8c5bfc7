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
	"sync/atomic"

	"github.com/lassandro/lc3vm/pkg/machine"
)

type WatchpointType uint

const (
	ReadWatch WatchpointType = 1 << iota
	WriteWatch
	ReadWriteWatch = ReadWatch | WriteWatch
)

func (wt WatchpointType) String() string {
	switch wt {
	case ReadWatch:
		return "R"
	case WriteWatch:
		return "W"
	case ReadWriteWatch:
		return "RW"
	}

	return "?"
}

// ParseWatchpointType accepts the names used by the watch command.
func ParseWatchpointType(s string) (WatchpointType, error) {
	switch s {
	case "r", "read":
		return ReadWatch, nil
	case "w", "write":
		return WriteWatch, nil
	case "rw", "rwrite", "readwrite":
		return ReadWriteWatch, nil
	}

	return 0, ErrWatchType
}

type Watchpoint struct {
	Addr uint16
	Type WatchpointType
}

type Breakpoint struct {
	Addr uint16
}

// Debugger implements machine.MachineDebugger. The Handle callbacks run on
// the machine's goroutine while the run loop is suspended inside the hook.
type Debugger struct {
	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	HandleBreak func(*Debugger, *machine.Machine)
	HandleRead  func(uint16, *Debugger, *machine.Machine)
	HandleWrite func(uint16, *Debugger, *machine.Machine)

	breakRequested atomic.Bool
}

var _ machine.MachineDebugger = (*Debugger)(nil)
