package main

import (
	"github.com/robotalks/bitlog.go/pkg/cli/sh"
	"github.com/robotalks/bitlog.go/pkg/env"

	_ "github.com/robotalks/bitlog.go/pkg/cli/cmds/logcmds"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
