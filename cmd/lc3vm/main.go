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
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/lc3vm/pkg/debugger"
	"github.com/lassandro/lc3vm/pkg/machine"
)

var helpvar bool
var debugvar bool
var verbosevar bool
var maxstepsvar uint64
var timeoutvar time.Duration

const usage = "lc3vm [-debug] [-v] [-max-steps n] [-timeout d] filename"

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&verbosevar, "v", false, "Logs every executed instruction")
	flag.Uint64Var(&maxstepsvar, "max-steps", 0, "Stops after this many instructions (0 for no limit)")
	flag.DurationVar(&timeoutvar, "timeout", 0, "Stops after this much wall-clock time (0 for no limit)")
}

func lc3vm() int {
	flag.Parse()

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Error(usage)
		return 1
	}

	if verbosevar {
		log.SetLevel(logrus.DebugLevel)
	}

	image, err := os.ReadFile(args[0])

	if err != nil {
		log.Error(err)
		return 1
	}

	keyboard := bufio.NewReader(os.Stdin)
	display := bufio.NewWriter(os.Stdout)

	mc := machine.New(
		machine.WithDevices(&machine.DeviceHandler{
			Keyboard: keyboard,
			Display:  display,
		}),
		machine.WithLogger(log.WithField("image", args[0])),
		machine.WithMaxSteps(maxstepsvar),
	)

	if err := mc.LoadImage(bytes.NewReader(image)); err != nil {
		log.WithField("image", args[0]).Error(err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if timeoutvar > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeoutvar)
		defer cancel()
	}

	term, err := enterRawTerm()

	if err != nil {
		log.Error(err)
		return 1
	}

	defer term.exit()

	var sess *session

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	if debugvar {
		sess = &session{
			in:     keyboard,
			term:   term,
			cancel: cancel,
		}

		dbg := &debugger.Debugger{
			HandleBreak: sess.handleBreak,
			HandleRead:  sess.handleRead,
			HandleWrite: sess.handleWrite,
		}

		sess.dbg = dbg
		mc.Debugger = dbg

		go func() {
			for range c {
				dbg.RequestBreak()
			}
		}()

		sess.repl(mc)
	} else {
		go func() {
			<-c
			cancel()
		}()
	}

	outcome := mc.Run(ctx)
	display.Flush()

	entry := log.WithFields(logrus.Fields{
		"outcome": outcome.Status,
		"pc":      fmt.Sprintf("%#04x", mc.PC()),
		"steps":   mc.Steps(),
	})

	switch outcome.Status {
	case machine.Halted:
		entry.Debug("machine halted")
		return 0

	case machine.Faulted:
		entry.WithField("kind", outcome.Kind()).Error(outcome.Err)
		return 1

	default:
		if sess != nil && sess.quit {
			return 0
		}

		entry.Warn(outcome.Err)
		return 2
	}
}

func main() {
	os.Exit(lc3vm())
}
