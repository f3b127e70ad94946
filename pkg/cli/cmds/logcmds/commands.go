// Package logcmds registers the logger commands of the shell.
package logcmds

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/cli/sh"
	"github.com/robotalks/bitlog.go/pkg/collatz"
	"github.com/robotalks/bitlog.go/pkg/env"
)

var (
	// InitCmd re-initializes the logger.
	InitCmd = ishell.Cmd{
		Name: "init",
		Help: "[SOURCE-ID] restart the log, sequence from 0",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			id := s.Logger.SourceID()
			if len(c.Args) > 0 {
				var err error
				if id, err = env.ParseSourceID(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			if err := s.Logger.Init(id); err != nil {
				c.Err(err)
				return
			}
			s.UpdatePrompt()
		},
	}

	// WriteCmd appends a value.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "VALUE WIDTH [VALUE WIDTH ...] append values of WIDTH (1-32) bits",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 || len(c.Args)%2 != 0 {
				c.Err(fmt.Errorf("VALUE WIDTH pairs required"))
				return
			}
			s := sh.ShellFrom(c)
			for i := 0; i < len(c.Args); i += 2 {
				value, err := sh.ParseUint(c.Args[i], 32)
				if err != nil {
					c.Err(fmt.Errorf("invalid VALUE: %v", err))
					return
				}
				width, err := sh.ParseUint(c.Args[i+1], 8)
				if err != nil {
					c.Err(fmt.Errorf("invalid WIDTH: %v", err))
					return
				}
				if err = s.Logger.WriteData(uint32(value), uint(width)); err != nil {
					c.Err(err)
					return
				}
			}
			s.UpdatePrompt()
		},
	}

	// FlushCmd forces sending the active packet.
	FlushCmd = ishell.Cmd{
		Name:    "flush",
		Aliases: []string{"f"},
		Help:    "send the active packet now",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if err := s.Logger.Flush(); err != nil {
				c.Err(err)
			}
			s.UpdatePrompt()
		},
	}

	// StatusCmd prints the active packet and counters.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "show the active packet and counters",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			c.Print(FormatStatus(s.Logger))
		},
	}

	// CollatzCmd runs the demo workload into the log.
	CollatzCmd = ishell.Cmd{
		Name: "collatz",
		Help: "N log the Collatz sequence of N",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("N required"))
				return
			}
			n, err := sh.ParseUint(c.Args[0], 31)
			if err != nil {
				c.Err(fmt.Errorf("invalid N: %v", err))
				return
			}
			s := sh.ShellFrom(c)
			c.Printf("%d requires %d iterations\n", n, collatz.Trace(int(n), s.Logger))
			s.UpdatePrompt()
		},
	}
)

// FormatStatus renders the logger state.
func FormatStatus(l *bitlog.Logger) string {
	pkt, stats := l.Active(), l.Stats()
	return fmt.Sprintf("source %04x seq %d bits %d/%d\n%s\nsent %d (errors %d) dropped %d bits %d\n",
		pkt.SourceID, pkt.Seq, pkt.ValidBits, pkt.Capacity()*8,
		pkt.BitString(),
		stats.PacketsSent, stats.SendErrors, stats.Dropped, stats.BitsWritten)
}

func init() {
	sh.AddCmds(
		&InitCmd,
		&WriteCmd,
		&FlushCmd,
		&StatusCmd,
		&CollatzCmd,
	)
}
