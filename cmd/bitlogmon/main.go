package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/comm"
	"github.com/robotalks/bitlog.go/pkg/comm/hexdump"
	"github.com/robotalks/bitlog.go/pkg/comm/mqtt"
	"github.com/robotalks/bitlog.go/pkg/comm/serial"
	"github.com/robotalks/bitlog.go/pkg/comm/stream"
	"github.com/robotalks/bitlog.go/pkg/comm/websocket"
	fx "github.com/robotalks/bitlog.go/pkg/framework"
	"github.com/robotalks/bitlog.go/pkg/trace"
)

var (
	mqttURL    string
	listenURL  string
	serialURL  string
	fromStdin  bool
	decode     bool
	showTrace  bool
	packetSize = bitlog.DefaultPacketSize
)

func init() {
	if val := os.Getenv("BITLOG_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "Subscribe to MQTT broker URL.")
	flag.StringVar(&listenURL, "listen", listenURL, "Listen on tcp://addr or ws://addr/path.")
	flag.StringVar(&serialURL, "serial", serialURL, "Read from serial:///dev/tty?baud=N.")
	flag.BoolVar(&fromStdin, "stdin", fromStdin, "Read hex lines from stdin (a pending terminal read is abandoned on exit).")
	flag.BoolVar(&decode, "decode", decode, "Print decoded header and bits.")
	flag.BoolVar(&showTrace, "trace", showTrace, "Print announced sources and reassembled traces on exit.")
	flag.IntVar(&packetSize, "packet-size", packetSize, "Frame size for tcp and serial.")
}

type monitor struct {
	lock   sync.Mutex
	traces *trace.Set
}

func (m *monitor) HandlePacket(ctx context.Context, rec comm.Record) {
	m.lock.Lock()
	defer m.lock.Unlock()
	fmt.Println(hexdump.FormatLine(rec.Time, rec.Raw, true))
	if rec.Packet == nil {
		return
	}
	if decode {
		fmt.Printf("    source %04x seq %3d bits %3d: %s\n",
			rec.Packet.SourceID, rec.Packet.Seq, rec.Packet.ValidBits, rec.Packet.BitString())
	}
	if m.traces != nil {
		m.traces.Add(rec)
	}
}

func listenRunnable(rawURL string, h comm.Handler) (fx.Runnable, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "tcp":
		return &stream.Server{Addr: u.Host, PacketSize: packetSize, Handler: h}, nil
	case "ws":
		path := u.Path
		if path == "" {
			path = "/"
		}
		return fx.RunFunc(func(ctx context.Context) error {
			mux := http.NewServeMux()
			mux.Handle(path, websocket.Handler(ctx, h))
			server := &http.Server{Addr: u.Host, Handler: mux}
			glog.Infof("listening on %s%s", u.Host, path)
			err := fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		}), nil
	}
	return nil, fmt.Errorf("unsupported listen URL: %s", rawURL)
}

// detached returns when ctx is done without waiting for r, which may be
// stuck in a read that closing can't interrupt, like a terminal.
func detached(r fx.Runnable) fx.Runnable {
	return fx.RunFunc(func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() { errCh <- r.Run(ctx) }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func main() {
	flag.Parse()
	defer glog.Flush()

	m := &monitor{}
	if showTrace {
		m.traces = trace.NewSet()
	}

	runner := fx.NewRunner().HandleSignals()
	var runnables []fx.Runnable
	var sub *mqtt.Subscriber

	if mqttURL != "" {
		q, err := mqtt.NewQueueFromURL(mqttURL)
		if err != nil {
			log.Fatalln(err)
		}
		if err = q.Connect(); err != nil {
			log.Fatalln(err)
		}
		defer q.Close()
		sub = mqtt.NewSubscriber(q)
		runnables = append(runnables,
			fx.NamedRun("mqtt", fx.RunFunc(sub.Run)),
			fx.NamedRun("mqtt-listener", comm.NewListener(sub, m)))
	}
	if listenURL != "" {
		r, err := listenRunnable(listenURL, m)
		if err != nil {
			log.Fatalln(err)
		}
		runnables = append(runnables, fx.NamedRun("listen", r))
	}
	if serialURL != "" {
		port, err := serial.OpenURL(serialURL, packetSize)
		if err != nil {
			log.Fatalln(err)
		}
		runnables = append(runnables, fx.NamedRun("serial", comm.NewListener(port, m)))
	}
	if fromStdin {
		runnables = append(runnables, fx.NamedRun("stdin", detached(comm.NewListener(hexdump.NewReader(os.Stdin), m))))
	}
	if len(runnables) == 0 {
		log.Fatalln("at least one of -mqtt, -listen, -serial, -stdin is required")
	}

	err := runner.Go(runnables...).Wait()
	if sub != nil && (decode || showTrace) {
		for _, meta := range sub.Sources() {
			fmt.Println(meta)
		}
	}
	if m.traces != nil {
		fmt.Print(m.traces.String())
	}
	if err != nil {
		log.Fatalln(err)
	}
}
