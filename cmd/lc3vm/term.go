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

package main

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// rawTerm switches stdin out of canonical mode so GETC sees single keys.
// Nothing is changed when stdin is not a terminal.
type rawTerm struct {
	fd      uintptr
	restore unix.Termios
	raw     unix.Termios
	active  bool
	tty     bool
}

func enterRawTerm() (*rawTerm, error) {
	rt := &rawTerm{fd: os.Stdin.Fd()}

	if !term.IsTerminal(int(rt.fd)) {
		return rt, nil
	}

	if err := termios.Tcgetattr(rt.fd, &rt.restore); err != nil {
		return nil, err
	}

	rt.tty = true
	rt.raw = rt.restore

	rt.raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	rt.raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	rt.raw.Cflag &^= unix.CSIZE | unix.PARENB
	rt.raw.Cflag |= unix.CS8

	// GETC blocks until a key arrives
	rt.raw.Cc[unix.VMIN] = 1
	rt.raw.Cc[unix.VTIME] = 0

	return rt, rt.enter()
}

func (rt *rawTerm) enter() error {
	if !rt.tty || rt.active {
		return nil
	}

	if err := termios.Tcsetattr(rt.fd, termios.TCSANOW, &rt.raw); err != nil {
		return err
	}

	rt.active = true

	return nil
}

func (rt *rawTerm) exit() error {
	if !rt.active {
		return nil
	}

	if err := termios.Tcsetattr(rt.fd, termios.TCSANOW, &rt.restore); err != nil {
		return err
	}

	rt.active = false

	return nil
}
