package xrplsynth

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/xrplsynth/crypto"
	"github.com/opd-ai/xrplsynth/limits"
	"github.com/opd-ai/xrplsynth/metrics"
)

// Options configures a synthetic node.
type Options struct {
	// GenerateKeys creates a fresh node key during New. Disable it to
	// adopt StaticKey instead.
	GenerateKeys bool

	// StaticKey is the identity to reuse when GenerateKeys is off.
	StaticKey *crypto.KeyPair

	// Handshake runs the TLS upgrade exchange on every connection.
	// When off, sessions are raw byte pipes.
	Handshake bool

	// ListenAddr is the bind address for StartListening.
	ListenAddr string

	// Identifier is the User-Agent / Server string. Empty means
	// "xrplsynth-<short node id>".
	Identifier string

	// MaxPeers caps inbound admission.
	MaxPeers int

	// QueueDepth bounds the inbound queue and each session's send
	// queue.
	QueueDepth int

	// HandshakeTimeout bounds the whole upgrade exchange per peer.
	HandshakeTimeout time.Duration

	// NetworkID is sent in the Network-ID header when nonzero, and
	// enforced against peers that send one.
	NetworkID uint32

	// Metrics receives the node's counters and timings.
	Metrics metrics.Sink

	// Logger carries the node's structured logs.
	Logger *logrus.Logger
}

// NewOptions returns the default configuration.
func NewOptions() *Options {
	return &Options{
		GenerateKeys:     true,
		Handshake:        true,
		ListenAddr:       "127.0.0.1:0",
		MaxPeers:         limits.DefaultMaxPeers,
		QueueDepth:       limits.DefaultQueueDepth,
		HandshakeTimeout: 15 * time.Second,
		Metrics:          metrics.Nop{},
		Logger:           logrus.StandardLogger(),
	}
}
