package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/xrplsynth/crypto"
	"github.com/opd-ai/xrplsynth/handshake"
	"github.com/opd-ai/xrplsynth/limits"
	"github.com/opd-ai/xrplsynth/metrics"
	"github.com/opd-ai/xrplsynth/protocol"
)

// readChunkSize is how much the read loops pull per call.
const readChunkSize = 64 * 1024

// State tracks a session's position in its lifecycle.
type State int

const (
	StateNew State = iota
	StateTCP
	StateTLS
	StateReady
	StateClosed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateTCP:
		return "tcp-established"
	case StateTLS:
		return "tls-established"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Envelope is one decoded message as delivered to the owner's inbound
// queue.
type Envelope struct {
	// From is the remote address of the delivering session.
	From string

	// Peer identifies the sending session. Zero on raw sessions.
	Peer crypto.NodeID

	// Type is the wire message type.
	Type protocol.MessageType

	// Payload is the decoded message body.
	Payload protocol.Payload

	// Raw is the undecoded payload exactly as it crossed the wire.
	Raw []byte

	// Received is when the decoder produced the message.
	Received time.Time
}

// Config wires a session to its owner.
type Config struct {
	// Inbound receives decoded messages in arrival order. Required for
	// upgraded sessions; raw sessions never deliver.
	Inbound chan<- Envelope

	// Sink receives counters and timings. Nil discards them.
	Sink metrics.Sink

	// OnClose runs once, on its own goroutine, when the session dies.
	// reason is nil for a clean local or remote close.
	OnClose func(s *Session, reason error)

	// QueueDepth bounds the send queue. Zero means
	// limits.DefaultQueueDepth.
	QueueDepth int

	// Initiator marks sessions this node dialed.
	Initiator bool
}

// sendRequest pairs an outbound buffer with its completion channel.
type sendRequest struct {
	data []byte
	done chan error
}

// resolve posts the outcome at most once. done is buffered, so whichever
// path gets there first wins and later calls are no-ops.
func (r sendRequest) resolve(err error) {
	select {
	case r.done <- err:
	default:
	}
}

// Session is one peer connection: a reader, a writer, and the state
// between them. All methods are safe for concurrent use.
type Session struct {
	cfg    Config
	remote string

	mu    sync.RWMutex
	state State
	conn  net.Conn
	info  *handshake.Info

	sendQ chan sendRequest

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSession wraps an established TCP connection. The session starts in
// StateTCP; call Handshake or StartRaw to begin traffic.
func NewSession(conn net.Conn, cfg Config) *Session {
	if cfg.Sink == nil {
		cfg.Sink = metrics.Nop{}
	}
	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = limits.DefaultQueueDepth
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:    cfg,
		remote: conn.RemoteAddr().String(),
		state:  StateTCP,
		conn:   conn,
		sendQ:  make(chan sendRequest, depth),
		ctx:    ctx,
		cancel: cancel,
	}
	s.logger().Debug("session opened")
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Info returns the handshake result, or nil before the handshake and on
// raw sessions.
func (s *Session) Info() *handshake.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// NodeID returns the peer's node ID, or the zero ID when no handshake
// has completed.
func (s *Session) NodeID() crypto.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return crypto.NodeID{}
	}
	return s.info.NodeID
}

// RemoteAddr reports the peer's address as seen at dial or accept time.
func (s *Session) RemoteAddr() string {
	return s.remote
}

// Handshake runs the TLS and upgrade exchange for the configured role,
// then starts the frame loops. The engine performs both stages in one
// exchange, so the TLS and ready transitions land together.
func (s *Session) Handshake(ctx context.Context, tlsConf *tls.Config, hs handshake.Config) (*handshake.Info, error) {
	if st := s.State(); st != StateTCP {
		return nil, s.opError("handshake", stateError(st))
	}

	start := time.Now()
	var (
		tconn *tls.Conn
		info  *handshake.Info
		err   error
	)
	if s.cfg.Initiator {
		tconn, info, err = handshake.Initiate(ctx, s.netConn(), tlsConf, hs)
	} else {
		tconn, info, err = handshake.Respond(ctx, s.netConn(), tlsConf, hs)
	}
	if err != nil {
		s.cfg.Sink.IncCounter(metrics.CounterHandshakeFailures, 1)
		wrapped := s.opError("handshake", err)
		s.close(wrapped)
		return nil, wrapped
	}
	s.cfg.Sink.ObserveHistogram(metrics.HistogramHandshakeMillis,
		float64(time.Since(start))/float64(time.Millisecond))

	s.mu.Lock()
	s.conn = tconn
	s.info = info
	s.mu.Unlock()

	s.setState(StateTLS)
	s.start(info.Leftover, false)
	return info, nil
}

// StartRaw begins traffic without any handshake. Inbound bytes are
// counted and discarded; writes go to the plain connection.
func (s *Session) StartRaw() error {
	if st := s.State(); st != StateTCP {
		return s.opError("start", stateError(st))
	}
	s.start(nil, true)
	return nil
}

// start moves the session to ready and launches both loops.
func (s *Session) start(leftover []byte, raw bool) {
	s.setState(StateReady)
	s.wg.Add(2)
	if raw {
		go s.discardLoop()
	} else {
		go s.readLoop(leftover)
	}
	go s.writeLoop()
}

// Send frames one payload and queues it for the writer. The returned
// channel resolves exactly once with the write outcome.
func (s *Session) Send(p protocol.Payload) (<-chan error, error) {
	frame, err := protocol.EncodeMessage(p)
	if err != nil {
		return nil, s.opError("send", err)
	}
	return s.enqueue("send", frame)
}

// SendRaw queues bytes exactly as given, bypassing the codec.
func (s *Session) SendRaw(data []byte) (<-chan error, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	return s.enqueue("send-raw", buf)
}

// enqueue hands a buffer to the writer, blocking while the queue is
// full. Requests that race a closing session still resolve: the writer
// fails leftovers on exit, and the recheck below catches buffers that
// land after that sweep.
func (s *Session) enqueue(op string, data []byte) (<-chan error, error) {
	switch st := s.State(); {
	case st == StateClosed:
		return nil, s.opError(op, ErrSessionClosed)
	case st != StateReady:
		return nil, s.opError(op, ErrNotReady)
	}

	req := sendRequest{data: data, done: make(chan error, 1)}
	select {
	case s.sendQ <- req:
	case <-s.ctx.Done():
		return nil, s.opError(op, ErrSessionClosed)
	}
	select {
	case <-s.ctx.Done():
		req.resolve(s.opError(op, ErrSessionClosed))
	default:
	}
	return req.done, nil
}

// Close shuts the session down and waits for both loops to stop. It is
// idempotent and safe from any goroutine.
func (s *Session) Close() error {
	s.close(nil)
	s.wg.Wait()
	return nil
}

// close tears the session down once. Later calls are no-ops, so the
// first reason recorded is the one the owner sees.
func (s *Session) close(reason error) {
	s.once.Do(func() {
		s.setState(StateClosed)
		s.cancel()
		s.netConn().Close()
		s.cfg.Sink.IncCounter(metrics.CounterSessionsClosed, 1)

		entry := s.logger()
		if reason != nil {
			entry = entry.WithError(reason)
		}
		entry.Debug("session closed")

		if s.cfg.OnClose != nil {
			go s.cfg.OnClose(s, reason)
		}
	})
}

// readLoop feeds stream bytes through the frame decoder and delivers
// messages in arrival order.
func (s *Session) readLoop(leftover []byte) {
	defer s.wg.Done()

	conn := s.netConn()
	dec := new(protocol.Decoder)
	if len(leftover) > 0 {
		dec.Feed(leftover)
	}

	buf := make([]byte, readChunkSize)
	for {
		if !s.deliverDecoded(dec) {
			return
		}
		n, err := conn.Read(buf)
		if n > 0 {
			s.cfg.Sink.IncCounter(metrics.CounterBytesIn, uint64(n))
			dec.Feed(buf[:n])
		}
		if err != nil {
			s.close(s.readFailure(err))
			return
		}
	}
}

// deliverDecoded drains every complete message from the decoder. It
// reports false once the session is done, either from a decode error or
// a shutdown while blocked on delivery.
func (s *Session) deliverDecoded(dec *protocol.Decoder) bool {
	for {
		msg, err := dec.Next()
		if err != nil {
			s.cfg.Sink.IncCounter(metrics.CounterDecodeErrors, 1)
			s.close(s.opError("decode", err))
			return false
		}
		if msg == nil {
			return true
		}

		env := Envelope{
			From:     s.remote,
			Peer:     s.NodeID(),
			Type:     msg.Type,
			Payload:  msg.Payload,
			Raw:      msg.Raw,
			Received: time.Now(),
		}
		select {
		case s.cfg.Inbound <- env:
			s.cfg.Sink.IncCounter(metrics.CounterMessagesIn, 1)
		case <-s.ctx.Done():
			return false
		}
	}
}

// discardLoop counts inbound bytes on a raw session and throws them
// away.
func (s *Session) discardLoop() {
	defer s.wg.Done()

	conn := s.netConn()
	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.cfg.Sink.IncCounter(metrics.CounterBytesIn, uint64(n))
		}
		if err != nil {
			s.close(s.readFailure(err))
			return
		}
	}
}

// writeLoop is the only writer on the connection. Draining a single
// queue keeps frames in enqueue order.
func (s *Session) writeLoop() {
	defer s.wg.Done()
	defer s.failPending()

	conn := s.netConn()
	for {
		select {
		case req := <-s.sendQ:
			n, err := conn.Write(req.data)
			if n > 0 {
				s.cfg.Sink.IncCounter(metrics.CounterBytesOut, uint64(n))
			}
			if err != nil {
				wrapped := s.opError("write", err)
				req.resolve(wrapped)
				s.close(wrapped)
				return
			}
			s.cfg.Sink.IncCounter(metrics.CounterMessagesOut, 1)
			req.resolve(nil)
		case <-s.ctx.Done():
			return
		}
	}
}

// failPending resolves whatever is still queued after the writer stops.
func (s *Session) failPending() {
	for {
		select {
		case req := <-s.sendQ:
			req.resolve(s.opError("write", ErrSessionClosed))
		default:
			return
		}
	}
}

// readFailure maps a read error to the close reason surfaced to the
// owner. A clean remote shutdown is not an error.
func (s *Session) readFailure(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return s.opError("read", err)
}

// setState records a transition and logs it.
func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev != next {
		s.logger().WithFields(logrus.Fields{
			"from": prev.String(),
			"to":   next.String(),
		}).Debug("session state changed")
	}
}

// netConn returns the active connection, which Handshake swaps for the
// TLS stream.
func (s *Session) netConn() net.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// opError wraps an error with the session's operation context.
func (s *Session) opError(op string, err error) *SessionError {
	return &SessionError{Op: op, Addr: s.remote, Err: err}
}

// stateError picks the sentinel for an operation attempted in the wrong
// state.
func stateError(st State) error {
	if st == StateClosed {
		return ErrSessionClosed
	}
	return ErrAlreadyStarted
}

func (s *Session) logger() *logrus.Entry {
	fields := logrus.Fields{
		"component": "session",
		"remote":    s.remote,
		"initiator": s.cfg.Initiator,
	}
	if id := s.NodeID(); id != (crypto.NodeID{}) {
		fields["node_id"] = id.Short()
	}
	return logrus.WithFields(fields)
}
