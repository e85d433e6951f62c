package xrplsynth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/xrplsynth/handshake"
	"github.com/opd-ai/xrplsynth/metrics"
	"github.com/opd-ai/xrplsynth/protocol"
)

// newTestNode builds a node with an in-memory sink and a short
// handshake timeout.
func newTestNode(t *testing.T, mutate func(*Options)) (*Node, *metrics.Memory) {
	t.Helper()

	sink := metrics.NewMemory()
	opts := NewOptions()
	opts.HandshakeTimeout = 5 * time.Second
	opts.Metrics = sink
	if mutate != nil {
		mutate(opts)
	}

	node, err := New(opts)
	require.NoError(t, err, "New should succeed")
	t.Cleanup(node.ShutDown)
	return node, sink
}

// startPair returns a listening node, a node connected to it, and the
// listener's address as the dialer addresses it.
func startPair(t *testing.T) (*Node, *metrics.Memory, *Node, *metrics.Memory, string) {
	t.Helper()

	listener, listenerSink := newTestNode(t, nil)
	addr, err := listener.StartListening()
	require.NoError(t, err, "StartListening should succeed")

	dialer, dialerSink := newTestNode(t, nil)
	target := addr.String()
	require.NoError(t, dialer.Connect(context.Background(), target), "Connect should succeed")

	// The responder registers on its own goroutine; wait for it.
	require.Eventually(t, func() bool { return listener.NumConnected() == 1 },
		2*time.Second, 10*time.Millisecond, "listener should register the peer")
	return listener, listenerSink, dialer, dialerSink, target
}

func TestLoopbackPingPong(t *testing.T) {
	listener, listenerSink, dialer, dialerSink, target := startPair(t)

	assert.True(t, dialer.IsConnected(target), "dialer should know the target")
	assert.True(t, listener.IsConnectedIP("127.0.0.1"), "listener should know the dialer's IP")
	assert.Equal(t, 1, dialer.NumConnected())

	done, err := dialer.Unicast(target, &protocol.Ping{Kind: protocol.PingTypePing, Seq: 1})
	require.NoError(t, err, "Unicast should accept a connected peer")
	require.NoError(t, <-done, "the ping should reach the socket")

	env, err := listener.RecvMessageTimeout(2 * time.Second)
	require.NoError(t, err, "listener should receive the ping")
	require.Equal(t, protocol.TypePing, env.Type)
	assert.Equal(t, dialer.NodeID(), env.Peer, "envelope should carry the dialer's node ID")
	require.NotEmpty(t, env.From, "envelope should carry the sender address")

	ping := env.Payload.(*protocol.Ping)
	_, err = listener.Unicast(env.From, &protocol.Ping{Kind: protocol.PingTypePong, Seq: ping.Seq})
	require.NoError(t, err, "listener should answer over the inbound session")

	reply, err := dialer.RecvMessageTimeout(2 * time.Second)
	require.NoError(t, err, "dialer should receive the pong")
	pong := reply.Payload.(*protocol.Ping)
	assert.Equal(t, protocol.PingTypePong, pong.Kind)
	assert.Equal(t, uint32(1), pong.Seq)
	assert.Equal(t, listener.NodeID(), reply.Peer)
	assert.Equal(t, target, reply.From, "replies come from the dialed address")

	assert.Equal(t, uint64(1), dialerSink.Counter(metrics.CounterPeersDialed))
	assert.Equal(t, uint64(1), listenerSink.Counter(metrics.CounterPeersAccepted))
	assert.Len(t, dialerSink.Samples(metrics.HistogramHandshakeMillis), 1,
		"dialer should time its handshake")
}

func TestExpectMessageScansInArrivalOrder(t *testing.T) {
	listener, _, dialer, _, target := startPair(t)

	for seq := uint32(1); seq <= 3; seq++ {
		done, err := dialer.Unicast(target, &protocol.Ping{Kind: protocol.PingTypePing, Seq: seq})
		require.NoError(t, err)
		require.NoError(t, <-done)
	}

	env, ok := listener.ExpectMessage(func(e Envelope) bool {
		p, isPing := e.Payload.(*protocol.Ping)
		return isPing && p.Seq == 3
	}, 2*time.Second)
	require.True(t, ok, "the third ping should match")
	assert.Equal(t, uint32(3), env.Payload.(*protocol.Ping).Seq)

	// The scan consumed the two non-matching messages.
	_, err := listener.RecvMessageTimeout(100 * time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "queue should be empty after the scan")
}

func TestMaxPeersRefusesExcessConnections(t *testing.T) {
	listener, listenerSink := newTestNode(t, func(o *Options) { o.MaxPeers = 1 })
	addr, err := listener.StartListening()
	require.NoError(t, err)
	target := addr.String()

	first, _ := newTestNode(t, nil)
	require.NoError(t, first.Connect(context.Background(), target))
	require.Eventually(t, func() bool { return listener.NumConnected() == 1 },
		2*time.Second, 10*time.Millisecond)

	second, _ := newTestNode(t, nil)
	err = second.Connect(context.Background(), target)
	require.Error(t, err, "a peer over the limit must not come up")
	require.ErrorIs(t, err, handshake.ErrTLSHandshake,
		"refusal happens before TLS, so the dialer sees a dead stream")

	assert.Eventually(t, func() bool {
		return listenerSink.Counter(metrics.CounterPeersRefused) == 1
	}, 2*time.Second, 10*time.Millisecond, "the refusal should be counted")
	assert.Equal(t, 1, listener.NumConnected(), "the first peer keeps its slot")
}

func TestRawBytesAgainstHandshakingPeer(t *testing.T) {
	listener, listenerSink := newTestNode(t, nil)
	addr, err := listener.StartListening()
	require.NoError(t, err)
	target := addr.String()

	raw, _ := newTestNode(t, func(o *Options) { o.Handshake = false })
	require.NoError(t, raw.Connect(context.Background(), target),
		"raw connect is ready as soon as TCP is")
	require.True(t, raw.IsConnected(target))

	// Not a TLS record, so the listener's handshake dies at once and
	// the stream closes under the raw session.
	junk := []byte{0xDB, 0xAD, 0xC0, 0xDE, 0x00, 0x00, 0x00, 0x00}
	_, err = raw.UnicastBytes(target, junk)
	require.NoError(t, err, "raw bytes enqueue on a ready session")

	assert.Eventually(t, func() bool {
		return listenerSink.Counter(metrics.CounterHandshakeFailures) == 1
	}, 2*time.Second, 10*time.Millisecond, "the listener should record the failed upgrade")
	assert.Eventually(t, func() bool { return !raw.IsConnected(target) },
		2*time.Second, 10*time.Millisecond, "the raw session should observe the close")
	assert.Equal(t, 0, listener.NumConnected(), "no session should register from garbage")
}

func TestShutdownDisconnectsPeers(t *testing.T) {
	listener, _, dialer, _, _ := startPair(t)

	type closeEvent struct {
		remote string
		reason error
	}
	closedCh := make(chan closeEvent, 4)
	listener.OnDisconnect(func(remote string, reason error) {
		closedCh <- closeEvent{remote: remote, reason: reason}
	})

	dialer.ShutDown()

	select {
	case ev := <-closedCh:
		assert.NotEmpty(t, ev.remote, "disconnect should name the peer")
		assert.NoError(t, ev.reason, "a shut-down peer is a clean close")
	case <-time.After(2 * time.Second):
		t.Fatal("listener never observed the disconnect")
	}

	assert.Eventually(t, func() bool { return listener.NumConnected() == 0 },
		2*time.Second, 10*time.Millisecond, "the session should deregister")
}

func TestNetworkIDMismatchAcrossNodes(t *testing.T) {
	listener, listenerSink := newTestNode(t, func(o *Options) { o.NetworkID = 2 })
	addr, err := listener.StartListening()
	require.NoError(t, err)

	dialer, _ := newTestNode(t, func(o *Options) { o.NetworkID = 3 })
	err = dialer.Connect(context.Background(), addr.String())
	require.Error(t, err, "chain mismatch must not connect")
	require.ErrorIs(t, err, handshake.ErrBadUpgrade,
		"the responder answers the mismatch with a refusal")

	assert.Eventually(t, func() bool {
		return listenerSink.Counter(metrics.CounterHandshakeFailures) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnectFromLocalAddress(t *testing.T) {
	listener, _ := newTestNode(t, nil)
	addr, err := listener.StartListening()
	require.NoError(t, err)
	target := addr.String()

	dialer, _ := newTestNode(t, nil)
	require.NoError(t, dialer.ConnectFrom(context.Background(), target, "127.0.0.1:0"),
		"ConnectFrom with an ephemeral local socket should work")
	assert.True(t, dialer.IsConnected(target))
}

func TestPingStreamStaysOrdered(t *testing.T) {
	const count = 50

	listener, _, dialer, dialerSink, target := startPair(t)

	// Echo every ping back as a pong with the same sequence.
	echoErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for i := 0; i < count; i++ {
			env, err := listener.RecvMessage(ctx)
			if err != nil {
				echoErr <- fmt.Errorf("echo recv %d: %w", i, err)
				return
			}
			ping, ok := env.Payload.(*protocol.Ping)
			if !ok {
				echoErr <- fmt.Errorf("echo %d: unexpected %T", i, env.Payload)
				return
			}
			if _, err := listener.Unicast(env.From, &protocol.Ping{
				Kind: protocol.PingTypePong,
				Seq:  ping.Seq,
			}); err != nil {
				echoErr <- fmt.Errorf("echo send %d: %w", i, err)
				return
			}
		}
		echoErr <- nil
	}()

	sentAt := make(map[uint32]time.Time, count)
	for seq := uint32(1); seq <= count; seq++ {
		sentAt[seq] = time.Now()
		_, err := dialer.Unicast(target, &protocol.Ping{Kind: protocol.PingTypePing, Seq: seq})
		require.NoError(t, err, "ping %d should enqueue", seq)
	}

	for want := uint32(1); want <= count; want++ {
		env, err := dialer.RecvMessageTimeout(2 * time.Second)
		require.NoError(t, err, "pong %d should arrive", want)
		pong := env.Payload.(*protocol.Ping)
		require.Equal(t, want, pong.Seq, "pongs must arrive in ping order")
		dialerSink.ObserveHistogram(metrics.HistogramPingRTTMillis,
			float64(env.Received.Sub(sentAt[pong.Seq]))/float64(time.Millisecond))
	}

	require.NoError(t, <-echoErr, "the echo side should process every ping")
	assert.Len(t, dialerSink.Samples(metrics.HistogramPingRTTMillis), count)
	assert.GreaterOrEqual(t, dialerSink.Counter(metrics.CounterMessagesOut), uint64(count))
}
