package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	"github.com/robotalks/bitlog.go/pkg/comm"
)

// Dial connects to a TCP listener and returns a fixed-frame ReadWriter.
func Dial(addr string, packetSize int) (*ReadWriter, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewFixed(conn, packetSize), nil
}

// Server accepts TCP connections and reads fixed-size frames from each.
type Server struct {
	Addr       string
	PacketSize int
	Handler    comm.Handler
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	glog.Infof("listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		glog.V(1).Infof("accepted %s", conn.RemoteAddr())
		go func(conn net.Conn) {
			l := comm.NewListener(NewFixed(conn, s.PacketSize), s.Handler)
			if err := l.Run(ctx); err != nil && ctx.Err() == nil {
				glog.Warningf("%s: %v", conn.RemoteAddr(), err)
			}
		}(conn)
	}
}
