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
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lassandro/lc3vm/pkg/debugger"
	"github.com/lassandro/lc3vm/pkg/encoding"
	"github.com/lassandro/lc3vm/pkg/machine"
)

// session is the interactive side of -debug. It reads commands from the
// same reader the machine's keyboard uses so neither loses buffered input.
type session struct {
	dbg     *debugger.Debugger
	in      *bufio.Reader
	term    *rawTerm
	cancel  func()
	lastcmd []string
	pending int
	quit    bool
}

func (sess *session) debugBreak(args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x####]"

		if len(args) != 1 {
			log.Warn(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Warn(err)
			return
		}

		if sess.dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(sess.dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#x\n", int64(digits)+1)
		}

		for i, breakpoint := range sess.dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Warn(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Warn(err)
			return
		}

		if err := sess.dbg.RemoveBreakpoint(i); err != nil {
			log.Warn(err)
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		sess.dbg.ClearBreakpoints()
		fmt.Println("Breakpoints reset")

	default:
		log.Warnf("break: '%s' is not a valid command (%s)", cmd, usage)
	}
}

func (sess *session) debugWatch(args []string) {
	const usage = "watch [add|list|rm]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x####] [read|write|readwrite]"

		if len(args) != 2 {
			log.Warn(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Warn(err)
			return
		}

		wtype, err := debugger.ParseWatchpointType(args[1])

		if err != nil {
			log.Warn(err)
			return
		}

		if sess.dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#04x] (%v)\n", addr, wtype)
		}

	case "l", "ls", "list":
		for i, watchpoint := range sess.dbg.Watchpoints {
			fmt.Printf("#%d: %#x (%v)\n", i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			log.Warn(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Warn(err)
			return
		}

		if err := sess.dbg.RemoveWatchpoint(i); err != nil {
			log.Warn(err)
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	default:
		log.Warnf("watch: '%s' is not a valid command (%s)", cmd, usage)
	}
}

func (sess *session) debugMemory(mc *machine.Machine, args []string) {
	const usage = "memory [0x####] [#]"

	if len(args) > 2 {
		log.Warn(usage)
		return
	}

	var size uint16 = 1
	var addr uint16 = mc.PC()
	var err error

	if len(args) > 0 {
		if addr, err = encoding.DecodeAddr(args[0]); err != nil {
			log.Warn(err)
			return
		}
	}

	if len(args) > 1 {
		var value int16

		if value, err = encoding.DecodeInt(args[1]); err != nil {
			log.Warn(err)
			return
		}

		size = uint16(value)
	}

	sess.dbg.DumpMem(os.Stdout, mc, addr, size)
}

func (sess *session) debugSet(mc *machine.Machine, args []string) {
	const usage = "set [R#|PC|0x####] [value]"

	if len(args) != 2 {
		log.Warn(usage)
		return
	}

	value, err := encoding.DecodeAddr(args[1])

	if err != nil {
		log.Warn(err)
		return
	}

	target := strings.ToUpper(args[0])

	switch {
	case target == "PC":
		mc.SetPC(value)
		fmt.Printf("\033[1mPC:\033[0m %#04x\n", value)

	case len(target) == 2 && target[0] == 'R' && target[1] >= '0' && target[1] <= '7':
		r := machine.Register(target[1] - '0')
		mc.SetRegister(r, value)
		fmt.Printf("\033[1m%v:\033[0m %#04x\n", r, value)

	default:
		addr, err := encoding.DecodeAddr(args[0])

		if err != nil {
			log.Warn(err)
			return
		}

		mc.WriteMemory(addr, value)
		sess.dbg.DumpMem(os.Stdout, mc, addr, 1)
	}
}

func (sess *session) debugPrint(mc *machine.Machine, args []string) {
	const usage = "print [expression]"

	if len(args) == 0 {
		log.Warn(usage)
		return
	}

	value, err := sess.dbg.Eval(strings.Join(args, " "), mc)

	if err != nil {
		log.Warn(err)
		return
	}

	fmt.Printf("%#04x (%d)\n", value, int16(value))
}

func (sess *session) debugStep(args []string) bool {
	const usage = "step [#]"

	count := 1

	if len(args) > 1 {
		log.Warn(usage)
		return false
	}

	if len(args) == 1 {
		var err error

		if count, err = strconv.Atoi(args[0]); err != nil || count < 1 {
			log.Warn(usage)
			return false
		}
	}

	sess.pending = count - 1
	sess.dbg.RequestBreak()
	return true
}

func (sess *session) repl(mc *machine.Machine) {
	if err := sess.term.exit(); err != nil {
		log.Warn(err)
	}

	defer func() {
		if err := sess.term.enter(); err != nil {
			log.Warn(err)
		}
	}()

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		line, err := sess.in.ReadString('\n')

		if err != nil {
			fmt.Println()
			sess.stop()
			return
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(sess.lastcmd) == 0 {
				continue
			}
			args = sess.lastcmd
		} else {
			sess.lastcmd = args
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			sess.debugBreak(args)

		case "w", "wp", "watch", "watchpoint":
			sess.debugWatch(args)

		case "r", "reg", "register", "registers":
			sess.dbg.DumpRegisters(os.Stdout, mc)

		case "m", "mem", "memory":
			sess.debugMemory(mc, args)

		case "set":
			sess.debugSet(mc, args)

		case "p", "print":
			sess.debugPrint(mc, args)

		case "c", "continue":
			return

		case "n", "next", "s", "step":
			if !sess.debugStep(args) {
				continue
			}
			return

		case "q", "quit", "exit":
			sess.stop()
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func (sess *session) stop() {
	sess.quit = true
	sess.cancel()
}

func (sess *session) stopped(mc *machine.Machine) {
	fmt.Println()
	fmt.Printf("Program stopped at %#04x\n", mc.PC())
}

func (sess *session) handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if sess.pending > 0 {
		sess.pending--
		dbg.RequestBreak()
		return
	}

	sess.stopped(mc)
	sess.dbg.DumpMem(os.Stdout, mc, mc.PC(), 1)
	sess.repl(mc)
}

func (sess *session) handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	sess.stopped(mc)
	fmt.Printf("Read [%#04x]\n", addr)
	sess.dbg.DumpMem(os.Stdout, mc, addr, 1)
	sess.repl(mc)
}

func (sess *session) handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	sess.stopped(mc)
	fmt.Printf("Write [%#04x]\n", addr)
	sess.dbg.DumpMem(os.Stdout, mc, addr, 1)
	sess.repl(mc)
}
