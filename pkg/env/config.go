// Package env sets up a bitlog Logger and its transport from flags and
// environment variables.
package env

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
	"github.com/robotalks/bitlog.go/pkg/comm"
	"github.com/robotalks/bitlog.go/pkg/comm/hexdump"
	"github.com/robotalks/bitlog.go/pkg/comm/mqtt"
	"github.com/robotalks/bitlog.go/pkg/comm/serial"
	"github.com/robotalks/bitlog.go/pkg/comm/stream"
	"github.com/robotalks/bitlog.go/pkg/comm/websocket"
)

// Config provides common options to setup a Logger.
type Config struct {
	SourceID    uint16
	Capacity    int
	Description string

	// URLs lists the transports, comma separated when from flags.
	// Supported:
	//   stderr:, stdout:                    hex lines
	//   file:///path                        hex lines appended to file
	//   tcp://host:port                     fixed frames over TCP
	//   ws://host:port/path                 WebSocket binary messages
	//   mqtt://host:port/prefix             MQTT
	//   serial:///dev/ttyUSB0?baud=115200   fixed frames over serial
	URLs []string
}

var defaultConfig = Config{
	Capacity: bitlog.DefaultCapacity,
	URLs:     []string{"stderr:"},
}

func init() {
	defaultConfig.SourceID = MachineSourceID()
	if val := os.Getenv("BITLOG_SOURCE_ID"); val != "" {
		if id, err := ParseSourceID(val); err == nil {
			defaultConfig.SourceID = id
		}
	}
	if val := os.Getenv("BITLOG_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.Capacity = n
		}
	}
	if val := os.Getenv("BITLOG_URL"); val != "" {
		defaultConfig.URLs = splitURLs(val)
	}
}

// ParseSourceID parses a decimal or 0x-prefixed hex source ID.
func ParseSourceID(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid source id %q", s)
	}
	return uint16(v), nil
}

func splitURLs(s string) []string {
	var urls []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

type sourceIDValue struct{ id *uint16 }

func (v sourceIDValue) String() string {
	if v.id == nil {
		return ""
	}
	return fmt.Sprintf("0x%04x", *v.id)
}

func (v sourceIDValue) Set(s string) (err error) {
	*v.id, err = ParseSourceID(s)
	return
}

type urlsValue struct{ urls *[]string }

func (v urlsValue) String() string {
	if v.urls == nil {
		return ""
	}
	return strings.Join(*v.urls, ",")
}

func (v urlsValue) Set(s string) error {
	*v.urls = splitURLs(s)
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Var(sourceIDValue{&defaultConfig.SourceID}, "source", "Source ID of this device (default from machine ID).")
	flag.IntVar(&defaultConfig.Capacity, "capacity", defaultConfig.Capacity, "Packet data size in bytes.")
	flag.StringVar(&defaultConfig.Description, "desc", defaultConfig.Description, "Description announced with packets.")
	flag.Var(urlsValue{&defaultConfig.URLs}, "log-url", "Comma separated transport URLs.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.URLs = append([]string(nil), defaultConfig.URLs...)
	return &conf
}

// PacketSize returns the encoded packet size for Capacity.
func (c *Config) PacketSize() int {
	return bitlog.HeaderSize + c.Capacity
}

// Meta returns the source description announced over MQTT.
func (c *Config) Meta() mqtt.Meta {
	return mqtt.Meta{
		SourceID:    c.SourceID,
		Capacity:    c.Capacity,
		PacketSize:  c.PacketSize(),
		Description: c.Description,
	}
}

// NewWriter creates the transport for a single URL.
func (c *Config) NewWriter(rawURL string) (comm.PacketWriter, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %v", rawURL, err)
	}
	switch u.Scheme {
	case "stderr":
		return hexdump.Stderr(), nil
	case "stdout":
		return hexdump.NewWriter(os.Stdout), nil
	case "file":
		f, err := os.OpenFile(u.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return nil, err
		}
		return &fileWriter{Writer: hexdump.NewWriter(f), file: f}, nil
	case "tcp":
		return stream.Dial(u.Host, c.PacketSize())
	case "ws", "wss":
		return websocket.Dial(rawURL)
	case "mqtt", "mqtts":
		pub, err := mqtt.NewPublisher(rawURL, c.Meta())
		if err != nil {
			return nil, err
		}
		if err = pub.Connect(); err != nil {
			return nil, fmt.Errorf("connect %s: %v", u.Host, err)
		}
		return pub, nil
	case "serial":
		return serial.OpenURL(rawURL, c.PacketSize())
	default:
		return nil, fmt.Errorf("unknown transport URL scheme: %q", u.Scheme)
	}
}

// NewSender creates the transports for all URLs. Multiple transports are
// combined with comm.Mux.
func (c *Config) NewSender() (comm.PacketWriter, error) {
	if len(c.URLs) == 0 {
		return nil, fmt.Errorf("at least one transport URL is required")
	}
	mux := comm.NewMux()
	for _, rawURL := range c.URLs {
		w, err := c.NewWriter(rawURL)
		if err != nil {
			mux.Close()
			return nil, err
		}
		mux.Add(w)
	}
	if len(mux.Writers) == 1 {
		return mux.Writers[0], nil
	}
	return mux, nil
}

// NewLogger creates an initialized Logger with its transports.
func (c *Config) NewLogger() (*bitlog.Logger, comm.PacketWriter, error) {
	if c.Capacity < 1 || c.Capacity > bitlog.MaxCapacity {
		return nil, nil, bitlog.ErrInvalidCapacity
	}
	sender, err := c.NewSender()
	if err != nil {
		return nil, nil, err
	}
	l, _ := bitlog.NewWithCapacity(sender, c.Capacity)
	l.Init(c.SourceID)
	return l, sender, nil
}

// MustNewLogger creates the Logger and fails on error.
func (c *Config) MustNewLogger() (*bitlog.Logger, comm.PacketWriter) {
	l, sender, err := c.NewLogger()
	if err != nil {
		log.Fatalln(err)
	}
	return l, sender
}

type fileWriter struct {
	*hexdump.Writer
	file *os.File
}

func (w *fileWriter) Close() error {
	return w.file.Close()
}
