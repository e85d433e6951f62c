// Package xrplsynth implements a synthetic XRPL peer.
//
// A synthetic peer is a node that speaks the rippled peer wire protocol
// well enough to connect, be connected to, and exchange any protocol
// message, while staying fully scriptable from tests. This package
// provides the main API facade that integrates the subsystems of this
// module: node identity and session-binding cryptography, the binary
// frame codec, the HTTP upgrade handshake, and per-peer session
// transport.
//
// # Getting Started
//
// Create a node with options, dial a peer, and drive the wire directly:
//
//	options := xrplsynth.NewOptions()
//	options.Identifier = "probe/0.1"
//
//	node, err := xrplsynth.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.ShutDown()
//
//	if err := node.Connect(ctx, "203.0.113.7:51235"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Send a ping and wait for the matching pong.
//	node.Unicast("203.0.113.7:51235", &protocol.Ping{
//	    Kind: protocol.PingTypePing,
//	    Seq:  1,
//	})
//	env, ok := node.ExpectMessage(func(e xrplsynth.Envelope) bool {
//	    p, isPing := e.Payload.(*protocol.Ping)
//	    return isPing && p.Kind == protocol.PingTypePong && p.Seq == 1
//	}, 5*time.Second)
//
// # Accepting Peers
//
// The node also runs the responder side of the handshake:
//
//	addr, err := node.StartListening()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("accepting peers on", addr)
//
//	env, err := node.RecvMessage(ctx)
//
// Inbound admission is capped by Options.MaxPeers; excess connections
// are closed before any TLS work happens.
//
// # Resistance Testing
//
// Disabling the handshake turns sessions raw: the TCP stream is used
// as-is, outbound bytes bypass the codec, and inbound bytes are counted
// and discarded. This is how arbitrary garbage is pushed at a target
// while its reaction is observed:
//
//	options := xrplsynth.NewOptions()
//	options.Handshake = false
//
//	node, _ := xrplsynth.New(options)
//	node.Connect(ctx, target)
//	node.UnicastBytes(target, junk)
//
// # Identity
//
// Each node owns a secp256k1 node key. By default a fresh key is
// generated per node; performance and conformance runs that need a
// stable identity pass one in:
//
//	key, _ := crypto.GenerateKeyPair()
//
//	options := xrplsynth.NewOptions()
//	options.GenerateKeys = false
//	options.StaticKey = key
//
// # Metrics
//
// Every counter and timing the node records flows through the
// configured metrics sink. Tests use the in-memory sink and read it
// back:
//
//	sink := metrics.NewMemory()
//	options.Metrics = sink
//	...
//	counters, _ := sink.Snapshot()
//
// # Thread Safety
//
// Node is safe for concurrent use. Sessions run their own read and
// write goroutines; a stuck writer never blocks the reader and session
// failures never affect sibling sessions.
//
// # Integration Architecture
//
// This package orchestrates:
//
//   - [crypto]: node keys, base58 tokens, TLS identity, session binding
//   - [protocol]: frame headers, message registry, payload codecs
//   - [handshake]: the HTTP upgrade exchange on both sides
//   - [transport]: per-peer sessions, queues, and lifecycle
//   - [metrics]: pluggable counters and timings
package xrplsynth
