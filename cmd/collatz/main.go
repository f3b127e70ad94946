package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bitlog.go/pkg/collatz"
	"github.com/robotalks/bitlog.go/pkg/comm"
	"github.com/robotalks/bitlog.go/pkg/env"
)

const maxStart = 2048

var (
	start int
)

func init() {
	env.SetupFlags()
	flag.IntVar(&start, "n", start, "Starting number, random below 2048 if 0.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if start == 0 {
		start = rand.New(rand.NewSource(time.Now().UnixNano())).Intn(maxStart-1) + 1
	}
	if start < 0 {
		log.Fatalln("-n must be positive")
	}

	logger, sender := env.NewConfig().MustNewLogger()
	defer comm.Close(sender)

	fmt.Printf("%d requires %d iterations\n", start, collatz.Trace(start, logger))
	if err := logger.Flush(); err != nil {
		glog.Warningf("flush: %v", err)
	}
	stats := logger.Stats()
	glog.V(1).Infof("sent %d packets, %d bits, %d errors",
		stats.PacketsSent, stats.BitsWritten, stats.SendErrors)
}
