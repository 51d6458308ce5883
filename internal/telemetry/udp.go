package telemetry

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultQueueSize bounds records waiting to be written.
	DefaultQueueSize = 256
	// DefaultWriteTimeout caps a single datagram write.
	DefaultWriteTimeout = 10 * time.Millisecond
	// DefaultDropLogInterval rate-limits the dropped-record warning.
	DefaultDropLogInterval = 5 * time.Second
)

// UDPSink sends each record as one JSON datagram. Emit never blocks: records are queued
// and written by a background goroutine, and anything that cannot be queued or written
// is counted as dropped.
type UDPSink struct {
	conn         *net.UDPConn
	queue        chan []byte
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
	log          *zap.Logger
	writeTimeout time.Duration
	logInterval  time.Duration
	address      string

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewUDPSink dials addr and starts the writer goroutine. Close must be called to
// release it.
func NewUDPSink(addr string, log *zap.Logger) (*UDPSink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve telemetry address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial telemetry address: %w", err)
	}
	s := newUDPSink(conn, addr, log)
	s.wg.Add(1)
	go s.run()
	s.log.Debug("telemetry sink started")
	return s, nil
}

func newUDPSink(conn *net.UDPConn, addr string, log *zap.Logger) *UDPSink {
	return &UDPSink{
		conn:         conn,
		queue:        make(chan []byte, DefaultQueueSize),
		done:         make(chan struct{}),
		log:          log.With(zap.String("telemetry_addr", addr)),
		writeTimeout: DefaultWriteTimeout,
		logInterval:  DefaultDropLogInterval,
		address:      addr,
	}
}

// Emit implements Sink.
func (s *UDPSink) Emit(r Record) {
	payload, err := r.Encode()
	if err != nil {
		s.dropped.Add(1)
		return
	}
	select {
	case <-s.done:
		s.dropped.Add(1)
		return
	default:
	}
	select {
	case s.queue <- payload:
	default:
		s.dropped.Add(1)
	}
}

func (s *UDPSink) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.logInterval)
	defer ticker.Stop()

	var (
		droppedSinceLog int
		lastErr         error
	)
	for {
		select {
		case <-s.done:
			return
		case payload := <-s.queue:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if _, err := s.conn.Write(payload); err != nil {
				s.dropped.Add(1)
				droppedSinceLog++
				lastErr = err
				continue
			}
			s.sent.Add(1)
		case <-ticker.C:
			if droppedSinceLog > 0 {
				s.log.Warn("telemetry records dropped", zap.Int("count", droppedSinceLog), zap.Error(lastErr))
				droppedSinceLog, lastErr = 0, nil
			}
		}
	}
}

// Sent returns how many datagrams were written.
func (s *UDPSink) Sent() int64 { return s.sent.Load() }

// Dropped returns how many records were lost.
func (s *UDPSink) Dropped() int64 { return s.dropped.Load() }

// Addr returns the destination address.
func (s *UDPSink) Addr() string { return s.address }

// Close stops the writer and closes the socket. Records still queued are discarded and
// counted as dropped.
func (s *UDPSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.drain()
		err = s.conn.Close()
		s.log.Debug("telemetry sink closed", zap.Int64("sent", s.Sent()), zap.Int64("dropped", s.Dropped()))
	})
	return err
}

func (s *UDPSink) drain() {
	for {
		select {
		case <-s.queue:
			s.dropped.Add(1)
		default:
			return
		}
	}
}
