package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Handler receives each decoded record.
type Handler func(Record)

// Listener receives telemetry datagrams.
type Listener struct {
	conn *net.UDPConn
	log  *zap.Logger

	malformed atomic.Int64
}

// Listen binds a UDP socket on addr. Use port 0 to pick a free port.
func Listen(addr string, log *zap.Logger) (*Listener, error) {
	if log == nil {
		log = zap.NewNop()
	}
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	return &Listener{conn: conn, log: log}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.conn.LocalAddr().String()
}

// Malformed returns how many datagrams failed to decode.
func (l *Listener) Malformed() int64 {
	return l.malformed.Load()
}

// Serve reads datagrams until ctx is cancelled, calling h for every valid record. It
// closes the socket before returning.
func (l *Listener) Serve(ctx context.Context, h Handler) error {
	defer l.conn.Close()
	l.log.Info("telemetry listener started", zap.String("addr", l.Addr()))

	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			l.log.Info("telemetry listener stopping", zap.Int64("malformed", l.malformed.Load()))
			return err
		}
		_ = l.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("telemetry read: %w", err)
		}
		rec, err := Decode(buf[:n])
		if err != nil {
			l.malformed.Add(1)
			l.log.Debug("malformed telemetry datagram", zap.Error(err), zap.Int("bytes", n))
			continue
		}
		h(rec)
	}
}
