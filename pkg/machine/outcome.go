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
	"errors"
)

type Status uint8

const (
	// The last cycle completed; the machine can keep going.
	Running Status = iota
	// A HALT trap executed.
	Halted
	// A decode, IO or invariant error stopped the machine.
	Faulted
	// Run used up MaxSteps.
	Exhausted
	// The context given to Run was cancelled or hit its deadline.
	Cancelled
)

var statusNames = [...]string{
	Running:   "running",
	Halted:    "halted",
	Faulted:   "faulted",
	Exhausted: "exhausted",
	Cancelled: "cancelled",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}

	return f("Status(%d)", uint8(s))
}

type FaultKind uint8

const (
	NoFault FaultKind = iota
	DecodeFault
	IOFault
	InvariantFault
)

func (k FaultKind) String() string {
	switch k {
	case NoFault:
		return "none"
	case DecodeFault:
		return "decode"
	case IOFault:
		return "io"
	case InvariantFault:
		return "invariant"
	}

	return f("FaultKind(%d)", uint8(k))
}

// Outcome is the result of Step or Run.
type Outcome struct {
	Status Status
	Err    error
}

// Terminal reports whether the machine can no longer make progress without
// a Reset or Load.
func (o Outcome) Terminal() bool {
	return o.Status == Halted || o.Status == Faulted
}

// Kind classifies the error of a faulted outcome.
func (o Outcome) Kind() FaultKind {
	var decodeErr *DecodeError
	var ioErr *IOError
	var invariantErr *InvariantError

	switch {
	case o.Status != Faulted:
		return NoFault
	case errors.As(o.Err, &decodeErr):
		return DecodeFault
	case errors.As(o.Err, &ioErr):
		return IOFault
	case errors.As(o.Err, &invariantErr):
		return InvariantFault
	}

	return NoFault
}

func (o Outcome) String() string {
	if o.Err != nil {
		return f("%v: %v", o.Status, o.Err)
	}

	return o.Status.String()
}
