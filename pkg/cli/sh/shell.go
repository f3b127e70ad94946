// Package sh provides an interactive shell around a bitlog Logger.
package sh

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/comm"
	"github.com/robotalks/bitlog.go/pkg/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell  *ishell.Shell
	Config *env.Config
	Logger *bitlog.Logger
	Sender comm.PacketWriter
}

const shellKey = "$shell"

var (
	evalOnly bool

	commands []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell with an initialized Logger.
func New(conf *env.Config) (*Shell, error) {
	l, sender, err := conf.NewLogger()
	if err != nil {
		return nil, err
	}
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Config:      conf,
		Logger:      l,
		Sender:      sender,
	}
	s.Shell.Set(shellKey, s)
	s.UpdatePrompt()
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// UpdatePrompt shows the source and sequence in the prompt.
func (s *Shell) UpdatePrompt() {
	pkt := s.Logger.Active()
	s.Shell.SetPrompt(fmt.Sprintf("[%04x #%d %d/%d] > ",
		s.Logger.SourceID(), pkt.Seq, pkt.ValidBits, pkt.Capacity()*8))
}

// ParseUint parses a decimal, 0x hex or 0b binary argument.
func ParseUint(arg string, bitSize int) (uint64, error) {
	return strconv.ParseUint(arg, 0, bitSize)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer comm.Close(s.Sender)
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is the main entry.
func Main() {
	flag.Parse()
	s, err := New(env.NewConfig())
	if err != nil {
		log.Fatalln(err)
	}
	s.Run(flag.Args()...)
}
