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

	"github.com/lassandro/lc3vm/pkg/translate"
)

var f = translate.From

var (
	ErrNoDevice        = errors.New(f("device not attached"))
	ErrBudgetExhausted = errors.New(f("instruction budget exhausted"))
)

// DecodeError reports an instruction with no handler: a reserved opcode or
// an unknown trap vector. PC is the address the instruction was fetched from.
type DecodeError struct {
	PC          uint16
	Instruction uint16
}

func (err *DecodeError) Error() string {
	if err.Instruction>>12 == OP_TRAP {
		return f(
			"illegal trap vector %#02x at %#04x (%#04x)",
			err.Instruction&0xFF, err.PC, err.Instruction,
		)
	}

	return f(
		"illegal opcode %s at %#04x (%#04x)",
		OpName(err.Instruction), err.PC, err.Instruction,
	)
}

// IOError wraps a failure of the keyboard or display during a trap.
type IOError struct {
	Vector TrapVector
	Err    error
}

func (err *IOError) Error() string {
	return f("%v: %v", err.Vector, err.Err)
}

func (err *IOError) Unwrap() error {
	return err.Err
}

// InvariantError is raised (by panic) when state the decoder should make
// unreachable is reached anyway. Step recovers it into a faulted outcome.
type InvariantError struct {
	Msg string
}

func (err *InvariantError) Error() string {
	return f("internal invariant violated: %s", err.Msg)
}

func invariant(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: f(format, args...)}
}

// Invariant panics with an *InvariantError. Alternative Memory
// implementations use it to reject addresses they cannot serve.
func Invariant(format string, args ...any) {
	panic(invariant(format, args...))
}
