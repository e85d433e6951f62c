package xrplsynth

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/xrplsynth/crypto"
	"github.com/opd-ai/xrplsynth/handshake"
	"github.com/opd-ai/xrplsynth/limits"
	"github.com/opd-ai/xrplsynth/metrics"
	"github.com/opd-ai/xrplsynth/protocol"
	"github.com/opd-ai/xrplsynth/transport"
)

// Envelope is a decoded message paired with its sender.
type Envelope = transport.Envelope

// Node is a synthetic peer instance. It is safe for concurrent use.
type Node struct {
	options *Options
	keyPair *crypto.KeyPair
	tlsID   *crypto.TLSIdentity

	inbound chan transport.Envelope

	sessionsMutex sync.RWMutex
	sessions      map[string]*transport.Session

	listenerMutex sync.Mutex
	listener      net.Listener

	callbackMutex sync.RWMutex
	onDisconnect  func(remote string, reason error)

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once
}

// New builds a node and its identities eagerly, so a bad configuration
// fails here rather than at the first connect.
func New(options *Options) (*Node, error) {
	if options == nil {
		options = NewOptions()
	}
	opts := *options

	var keyPair *crypto.KeyPair
	var err error
	switch {
	case opts.GenerateKeys:
		keyPair, err = crypto.GenerateKeyPair()
	case opts.StaticKey != nil:
		keyPair = opts.StaticKey
	default:
		return nil, ErrNoIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("generate identity: %w", err)
	}

	if opts.Identifier == "" {
		opts.Identifier = "xrplsynth-" + keyPair.NodeID().Short()
	}
	tlsID, err := crypto.NewTLSIdentity(opts.Identifier)
	if err != nil {
		return nil, fmt.Errorf("build TLS identity: %w", err)
	}

	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxPeers <= 0 {
		opts.MaxPeers = limits.DefaultMaxPeers
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = limits.DefaultQueueDepth
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		options:  &opts,
		keyPair:  keyPair,
		tlsID:    tlsID,
		inbound:  make(chan transport.Envelope, opts.QueueDepth),
		sessions: make(map[string]*transport.Session),
		ctx:      ctx,
		cancel:   cancel,
	}
	n.logger().WithField("identifier", opts.Identifier).Debug("node created")
	return n, nil
}

// NodeID returns this node's identity.
func (n *Node) NodeID() crypto.NodeID {
	return n.keyPair.NodeID()
}

// NodePublic returns the base58 token form of this node's public key.
func (n *Node) NodePublic() string {
	return crypto.EncodeNodePublic(n.keyPair.Public())
}

// Identifier returns the string sent as User-Agent / Server.
func (n *Node) Identifier() string {
	return n.options.Identifier
}

// Metrics returns the sink the node records into, so callers can put
// their own measurements next to it.
func (n *Node) Metrics() metrics.Sink {
	return n.options.Metrics
}

// OnDisconnect registers a callback for session teardown, including
// connections that never completed their handshake. reason is nil on
// clean closes.
func (n *Node) OnDisconnect(cb func(remote string, reason error)) {
	n.callbackMutex.Lock()
	defer n.callbackMutex.Unlock()
	n.onDisconnect = cb
}

// StartListening binds the configured address and begins admitting
// peers. It returns the bound address.
func (n *Node) StartListening() (net.Addr, error) {
	if n.isShutDown() {
		return nil, ErrShutdown
	}

	n.listenerMutex.Lock()
	defer n.listenerMutex.Unlock()
	if n.listener != nil {
		return nil, ErrAlreadyListening
	}

	listener, err := net.Listen("tcp", n.options.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", n.options.ListenAddr, err)
	}
	n.listener = listener

	n.wg.Add(1)
	go n.acceptLoop(listener)

	n.logger().WithField("addr", listener.Addr().String()).Info("listening")
	return listener.Addr(), nil
}

// acceptLoop admits inbound connections until the listener closes.
// Connections over MaxPeers are refused by closing the socket before
// any TLS work.
func (n *Node) acceptLoop(listener net.Listener) {
	defer n.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if !n.isShutDown() {
				n.logger().WithError(err).Debug("accept loop stopped")
			}
			return
		}

		if n.NumConnected() >= n.options.MaxPeers {
			n.options.Metrics.IncCounter(metrics.CounterPeersRefused, 1)
			n.logger().WithField("remote", conn.RemoteAddr().String()).Debug("peer refused, at capacity")
			conn.Close()
			continue
		}

		n.options.Metrics.IncCounter(metrics.CounterPeersAccepted, 1)
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if _, err := n.admit(n.ctx, conn, false); err != nil {
				n.logger().WithError(err).Debug("inbound peer failed")
			}
		}()
	}
}

// Connect dials addr and resolves once the session is ready.
func (n *Node) Connect(ctx context.Context, addr string) error {
	return n.connect(ctx, addr, "")
}

// ConnectFrom dials addr from a caller-chosen local address, for runs
// that fan out across many source sockets.
func (n *Node) ConnectFrom(ctx context.Context, addr, local string) error {
	return n.connect(ctx, addr, local)
}

func (n *Node) connect(ctx context.Context, addr, local string) error {
	if n.isShutDown() {
		return ErrShutdown
	}
	n.options.Metrics.IncCounter(metrics.CounterPeersDialed, 1)

	var dialer net.Dialer
	if local != "" {
		laddr, err := net.ResolveTCPAddr("tcp", local)
		if err != nil {
			return fmt.Errorf("connect from %s: %w", local, err)
		}
		dialer.LocalAddr = laddr
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	if _, err := n.admit(ctx, conn, true); err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	return nil
}

// admit wraps a connection in a session and brings it to ready. The
// session registers only after the handshake, so half-open peers are
// never addressable.
func (n *Node) admit(ctx context.Context, conn net.Conn, initiator bool) (*transport.Session, error) {
	sess := transport.NewSession(conn, transport.Config{
		Inbound:    n.inbound,
		Sink:       n.options.Metrics,
		OnClose:    n.sessionClosed,
		QueueDepth: n.options.QueueDepth,
		Initiator:  initiator,
	})

	if !n.options.Handshake {
		if err := sess.StartRaw(); err != nil {
			return nil, err
		}
		n.addSession(sess)
		return sess, nil
	}

	hs := handshake.Config{
		Identity:   n.keyPair,
		Identifier: n.options.Identifier,
		NetworkID:  n.options.NetworkID,
		Timeout:    n.options.HandshakeTimeout,
	}
	tlsConf := n.tlsID.ServerConfig()
	if initiator {
		tlsConf = n.tlsID.ClientConfig()
	}
	if _, err := sess.Handshake(ctx, tlsConf, hs); err != nil {
		return nil, err
	}
	n.addSession(sess)
	return sess, nil
}

// Unicast frames a payload for one connected peer. The returned channel
// resolves when the bytes hit the socket.
func (n *Node) Unicast(addr string, p protocol.Payload) (<-chan error, error) {
	sess, ok := n.session(addr)
	if !ok {
		return nil, fmt.Errorf("unicast %s: %w", addr, ErrUnknownPeer)
	}
	return sess.Send(p)
}

// UnicastBytes sends arbitrary bytes to one connected peer, bypassing
// the codec.
func (n *Node) UnicastBytes(addr string, raw []byte) (<-chan error, error) {
	sess, ok := n.session(addr)
	if !ok {
		return nil, fmt.Errorf("unicast %s: %w", addr, ErrUnknownPeer)
	}
	return sess.SendRaw(raw)
}

// RecvMessage takes the next inbound message. Queued messages win over
// an already-expired context, so drains complete before deadline
// errors surface.
func (n *Node) RecvMessage(ctx context.Context) (Envelope, error) {
	select {
	case env := <-n.inbound:
		return env, nil
	default:
	}

	select {
	case env := <-n.inbound:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	case <-n.ctx.Done():
		return Envelope{}, ErrShutdown
	}
}

// RecvMessageTimeout is RecvMessage with a deadline. The error is
// context.DeadlineExceeded once it passes.
func (n *Node) RecvMessageTimeout(d time.Duration) (Envelope, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return n.RecvMessage(ctx)
}

// ExpectMessage consumes inbound messages until one matches pred or the
// timeout passes. Non-matching messages are discarded.
func (n *Node) ExpectMessage(pred func(Envelope) bool, timeout time.Duration) (Envelope, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		env, err := n.RecvMessage(ctx)
		if err != nil {
			return Envelope{}, false
		}
		if pred(env) {
			return env, true
		}
	}
}

// IsConnected reports whether a ready session exists for addr.
func (n *Node) IsConnected(addr string) bool {
	n.sessionsMutex.RLock()
	defer n.sessionsMutex.RUnlock()
	_, ok := n.sessions[addr]
	return ok
}

// IsConnectedIP reports whether any connected peer has the given host.
func (n *Node) IsConnectedIP(ip string) bool {
	n.sessionsMutex.RLock()
	defer n.sessionsMutex.RUnlock()
	for addr := range n.sessions {
		host, _, err := net.SplitHostPort(addr)
		if err == nil && host == ip {
			return true
		}
	}
	return false
}

// NumConnected reports how many sessions are registered.
func (n *Node) NumConnected() int {
	n.sessionsMutex.RLock()
	defer n.sessionsMutex.RUnlock()
	return len(n.sessions)
}

// ListeningAddr returns the bound address, or nil before
// StartListening.
func (n *Node) ListeningAddr() net.Addr {
	n.listenerMutex.Lock()
	defer n.listenerMutex.Unlock()
	if n.listener == nil {
		return nil
	}
	return n.listener.Addr()
}

// ShutDown stops the listener and closes every session. It is
// idempotent and returns once the accept loop has stopped.
func (n *Node) ShutDown() {
	n.shutdown.Do(func() {
		n.cancel()

		n.listenerMutex.Lock()
		if n.listener != nil {
			n.listener.Close()
		}
		n.listenerMutex.Unlock()

		n.sessionsMutex.RLock()
		open := make([]*transport.Session, 0, len(n.sessions))
		for _, sess := range n.sessions {
			open = append(open, sess)
		}
		n.sessionsMutex.RUnlock()
		for _, sess := range open {
			sess.Close()
		}

		n.logger().Debug("node shut down")
	})
	n.wg.Wait()
}

// sessionClosed runs on each session's teardown goroutine.
func (n *Node) sessionClosed(sess *transport.Session, reason error) {
	n.removeSession(sess)

	n.callbackMutex.RLock()
	cb := n.onDisconnect
	n.callbackMutex.RUnlock()
	if cb != nil {
		cb(sess.RemoteAddr(), reason)
	}
}

func (n *Node) addSession(sess *transport.Session) {
	if sess.State() == transport.StateClosed {
		return
	}
	n.sessionsMutex.Lock()
	defer n.sessionsMutex.Unlock()
	n.sessions[sess.RemoteAddr()] = sess
}

func (n *Node) removeSession(sess *transport.Session) {
	n.sessionsMutex.Lock()
	defer n.sessionsMutex.Unlock()
	if current, ok := n.sessions[sess.RemoteAddr()]; ok && current == sess {
		delete(n.sessions, sess.RemoteAddr())
	}
}

func (n *Node) session(addr string) (*transport.Session, bool) {
	n.sessionsMutex.RLock()
	defer n.sessionsMutex.RUnlock()
	sess, ok := n.sessions[addr]
	return sess, ok
}

func (n *Node) isShutDown() bool {
	select {
	case <-n.ctx.Done():
		return true
	default:
		return false
	}
}

func (n *Node) logger() *logrus.Entry {
	return n.options.Logger.WithFields(logrus.Fields{
		"component": "node",
		"node_id":   n.keyPair.NodeID().Short(),
	})
}
