// Package serial sends fixed-size packets over a serial port.
package serial

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	goserial "go.bug.st/serial"

	"github.com/robotalks/bitlog.go/pkg/comm/stream"
)

// PortOptions describes the serial line settings.
type PortOptions struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// DefaultBaudRate is used when BaudRate is unset.
const DefaultBaudRate = 115200

// Normalize validates the options and applies defaults for unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}
	switch parity := strings.ToUpper(strings.TrimSpace(opts.Parity)); parity {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	return opts, nil
}

// Mode converts the options for go.bug.st/serial.
func (o PortOptions) Mode() (*goserial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode := &goserial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = goserial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = goserial.EvenParity
	case "O":
		mode.Parity = goserial.OddParity
	}
	return mode, nil
}

// ParseURL parses serial:///dev/ttyUSB0?baud=115200&parity=E&data=8&stop=1.
func ParseURL(rawURL string) (path string, opts PortOptions, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", opts, err
	}
	if u.Scheme != "serial" {
		return "", opts, fmt.Errorf("not a serial URL: %q", rawURL)
	}
	path = u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return "", opts, fmt.Errorf("serial port path required")
	}
	q := u.Query()
	for key, dst := range map[string]*int{"baud": &opts.BaudRate, "data": &opts.DataBits, "stop": &opts.StopBits} {
		if val := q.Get(key); val != "" {
			if *dst, err = strconv.Atoi(val); err != nil {
				return "", opts, fmt.Errorf("invalid %s: %v", key, err)
			}
		}
	}
	opts.Parity = q.Get("parity")
	_, err = opts.Normalize()
	return path, opts, err
}

// Open opens the serial port and frames packets of packetSize bytes.
func Open(path string, opts PortOptions, packetSize int) (*stream.ReadWriter, error) {
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	port, err := goserial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", path, err)
	}
	return stream.NewFixed(port, packetSize), nil
}

// OpenURL opens the serial port described by a serial:// URL.
func OpenURL(rawURL string, packetSize int) (*stream.ReadWriter, error) {
	path, opts, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return Open(path, opts, packetSize)
}
