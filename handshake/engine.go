package handshake

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/xrplsynth/crypto"
	"github.com/opd-ai/xrplsynth/limits"
)

// offeredProtocols lists the versions this node speaks, oldest first.
// Negotiation picks the highest version both sides share.
var offeredProtocols = []string{"XRPL/2.0", "XRPL/2.1", "XRPL/2.2"}

// rippleEpoch offsets the network clock: seconds between the Unix epoch
// and 2000-01-01 00:00:00 UTC.
const rippleEpoch = 946684800

// Config parameterizes one handshake.
type Config struct {
	// Identity signs the session binding and names this node.
	Identity *crypto.KeyPair

	// Identifier goes out as User-Agent (initiator) or Server
	// (responder). At most limits.MaxIdentifier bytes.
	Identifier string

	// NetworkID is advertised when nonzero and checked against the
	// peer's advertisement.
	NetworkID uint32

	// Timeout bounds the whole exchange when the context carries no
	// deadline of its own.
	Timeout time.Duration
}

// Info describes the authenticated peer after a completed upgrade.
type Info struct {
	// PublicKey is the peer's secp256k1 node key.
	PublicKey *secp256k1.PublicKey

	// NodeID is the short identifier derived from PublicKey.
	NodeID crypto.NodeID

	// Protocol is the negotiated version, "XRPL/2.2" against a current
	// peer.
	Protocol string

	// Identifier is the peer's User-Agent or Server value.
	Identifier string

	// Leftover holds frame bytes the peer pipelined after its header
	// block. They must reach the frame decoder before any stream reads.
	Leftover []byte
}

// Initiate dials the upgrade as the connecting side: TLS client
// handshake, request out, response validated. The returned TLS stream is
// ready for binary frames. conn is not closed on failure; that is the
// caller's job.
func Initiate(ctx context.Context, conn net.Conn, tlsConf *tls.Config, cfg Config) (*tls.Conn, *Info, error) {
	tconn := tls.Client(conn, tlsConf)
	info, err := run(ctx, tconn, cfg, true)
	if err != nil {
		return nil, nil, err
	}
	return tconn, info, nil
}

// Respond answers the upgrade as the accepting side: TLS server
// handshake, request validated, response out. Malformed requests are
// answered with a 400 before the error returns; failed crypto just
// closes the exchange.
func Respond(ctx context.Context, conn net.Conn, tlsConf *tls.Config, cfg Config) (*tls.Conn, *Info, error) {
	tconn := tls.Server(conn, tlsConf)
	info, err := run(ctx, tconn, cfg, false)
	if err != nil {
		return nil, nil, err
	}
	return tconn, info, nil
}

func run(ctx context.Context, tconn *tls.Conn, cfg Config, initiator bool) (*Info, error) {
	if err := limits.ValidateIdentifier(cfg.Identifier); err != nil {
		return nil, err
	}

	clear, err := applyDeadline(ctx, tconn, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	defer clear()

	if err := tconn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTLSHandshake, err)
	}
	binding, err := crypto.SessionBinding(tconn.ConnectionState(), initiator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTLSHandshake, err)
	}

	token := crypto.EncodeNodePublic(cfg.Identity.Public())
	signature := cfg.Identity.SignDigest(binding)

	br := bufio.NewReaderSize(tconn, limits.MaxHandshakeBlock)
	var info *Info
	if initiator {
		info, err = exchangeAsInitiator(tconn, br, cfg, token, signature, binding)
	} else {
		info, err = exchangeAsResponder(tconn, br, cfg, token, signature, binding)
	}
	if err != nil {
		return nil, err
	}

	if info.Leftover, err = drainBuffered(br); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"peer":      info.NodeID.Short(),
		"protocol":  info.Protocol,
		"initiator": initiator,
		"leftover":  len(info.Leftover),
		"component": "handshake",
	}).Debug("Upgrade exchange complete")

	return info, nil
}

// applyDeadline pins the connection deadline to the context's, or to the
// configured timeout when the context has none. The returned func clears
// the deadline again.
func applyDeadline(ctx context.Context, conn net.Conn, fallback time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dl, ok := ctx.Deadline()
	if !ok {
		if fallback <= 0 {
			return func() {}, nil
		}
		dl = time.Now().Add(fallback)
	}
	if err := conn.SetDeadline(dl); err != nil {
		return nil, err
	}
	return func() { _ = conn.SetDeadline(time.Time{}) }, nil
}

func exchangeAsInitiator(w io.Writer, br *bufio.Reader, cfg Config, token string, signature []byte, binding [crypto.BindingSize]byte) (*Info, error) {
	if _, err := w.Write(buildRequest(cfg, token, signature)); err != nil {
		return nil, fmt.Errorf("send upgrade request: %w", err)
	}

	resp, err := ReadResponse(br)
	if err != nil {
		return nil, err
	}
	return validateResponse(resp, cfg, binding)
}

func exchangeAsResponder(w io.Writer, br *bufio.Reader, cfg Config, token string, signature []byte, binding [crypto.BindingSize]byte) (*Info, error) {
	req, err := ReadRequest(br)
	if err != nil {
		writeRefusal(w, 400)
		return nil, err
	}

	proto, ident, err := validateRequest(req, cfg)
	if err != nil {
		writeRefusal(w, 400)
		return nil, err
	}

	// Past this point failures are cryptographic; answering them would
	// leak an oracle, so the connection just closes.
	pub, err := peerCredentials(req.Headers, binding)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(buildResponse(cfg, proto, token, signature)); err != nil {
		return nil, fmt.Errorf("send upgrade response: %w", err)
	}

	return &Info{
		PublicKey:  pub,
		NodeID:     crypto.NodeIDFromPublic(pub),
		Protocol:   proto,
		Identifier: ident,
	}, nil
}

func buildRequest(cfg Config, token string, signature []byte) []byte {
	var b bytes.Buffer
	b.WriteString("GET / HTTP/1.1\r\n")
	b.WriteString("User-Agent: ")
	b.WriteString(cfg.Identifier)
	b.WriteString("\r\n")
	b.WriteString("Upgrade: ")
	b.WriteString(strings.Join(offeredProtocols, ", "))
	b.WriteString("\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Connect-As: Peer\r\n")
	b.WriteString("Crawl: private\r\n")
	fmt.Fprintf(&b, "Network-Time: %d\r\n", networkTime())
	if cfg.NetworkID != 0 {
		fmt.Fprintf(&b, "Network-ID: %d\r\n", cfg.NetworkID)
	}
	b.WriteString("Public-Key: ")
	b.WriteString(token)
	b.WriteString("\r\n")
	b.WriteString("Session-Signature: ")
	b.WriteString(base64.StdEncoding.EncodeToString(signature))
	b.WriteString("\r\n")
	b.WriteString("X-Protocol-Ctl: txrr=1\r\n")
	b.WriteString("\r\n")
	return b.Bytes()
}

func buildResponse(cfg Config, proto, token string, signature []byte) []byte {
	var b bytes.Buffer
	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Upgrade: ")
	b.WriteString(proto)
	b.WriteString("\r\n")
	b.WriteString("Connect-As: Peer\r\n")
	b.WriteString("Server: ")
	b.WriteString(cfg.Identifier)
	b.WriteString("\r\n")
	b.WriteString("Crawl: private\r\n")
	if cfg.NetworkID != 0 {
		fmt.Fprintf(&b, "Network-ID: %d\r\n", cfg.NetworkID)
	}
	b.WriteString("Public-Key: ")
	b.WriteString(token)
	b.WriteString("\r\n")
	b.WriteString("Session-Signature: ")
	b.WriteString(base64.StdEncoding.EncodeToString(signature))
	b.WriteString("\r\n")
	b.WriteString("X-Protocol-Ctl: txrr=1\r\n")
	b.WriteString("\r\n")
	return b.Bytes()
}

func validateRequest(req *Request, cfg Config) (proto, ident string, err error) {
	if req.Method != "GET" || req.Target != "/" || req.Proto != "HTTP/1.1" {
		return "", "", fmt.Errorf("%w: %s %s %s", ErrBadUpgrade, req.Method, req.Target, req.Proto)
	}
	if !headerContains(req.Headers.Get("Connection"), "upgrade") {
		return "", "", fmt.Errorf("%w: Connection: Upgrade", ErrMissingHeader)
	}

	upgrade := req.Headers.Get("Upgrade")
	if upgrade == "" {
		return "", "", fmt.Errorf("%w: Upgrade", ErrMissingHeader)
	}
	proto, ok := negotiate(upgrade)
	if !ok {
		return "", "", fmt.Errorf("%w: peer offered %q", ErrProtocolMismatch, upgrade)
	}

	role := req.Headers.Get("Connect-As")
	if role == "" {
		return "", "", fmt.Errorf("%w: Connect-As", ErrMissingHeader)
	}
	if !strings.EqualFold(role, "peer") {
		return "", "", fmt.Errorf("%w: %q", ErrBadRole, role)
	}

	ident = req.Headers.Get("User-Agent")
	if err := limits.ValidateIdentifier(ident); err != nil {
		return "", "", err
	}
	if err := checkNetworkID(req.Headers, cfg); err != nil {
		return "", "", err
	}
	return proto, ident, nil
}

func validateResponse(resp *Response, cfg Config, binding [crypto.BindingSize]byte) (*Info, error) {
	if resp.StatusCode != 101 {
		return nil, fmt.Errorf("%w: status %d %s", ErrBadUpgrade, resp.StatusCode, resp.Reason)
	}
	if !headerContains(resp.Headers.Get("Connection"), "upgrade") {
		return nil, fmt.Errorf("%w: Connection: Upgrade", ErrMissingHeader)
	}

	proto, ok := negotiate(resp.Headers.Get("Upgrade"))
	if !ok {
		return nil, fmt.Errorf("%w: peer selected %q", ErrProtocolMismatch, resp.Headers.Get("Upgrade"))
	}

	ident := resp.Headers.Get("Server")
	if err := limits.ValidateIdentifier(ident); err != nil {
		return nil, err
	}
	if err := checkNetworkID(resp.Headers, cfg); err != nil {
		return nil, err
	}

	pub, err := peerCredentials(resp.Headers, binding)
	if err != nil {
		return nil, err
	}

	return &Info{
		PublicKey:  pub,
		NodeID:     crypto.NodeIDFromPublic(pub),
		Protocol:   proto,
		Identifier: ident,
	}, nil
}

// peerCredentials decodes the peer's node key and verifies its signature
// over the locally computed session binding.
func peerCredentials(h Header, binding [crypto.BindingSize]byte) (*secp256k1.PublicKey, error) {
	token := h.Get("Public-Key")
	if token == "" {
		return nil, fmt.Errorf("%w: Public-Key", ErrMissingHeader)
	}
	pub, err := crypto.DecodeNodePublic(token)
	if err != nil {
		return nil, err
	}

	sig64 := h.Get("Session-Signature")
	if sig64 == "" {
		return nil, fmt.Errorf("%w: Session-Signature", ErrMissingHeader)
	}
	der, err := base64.StdEncoding.DecodeString(sig64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if !crypto.VerifyDigest(pub, binding, der) {
		return nil, ErrSignature
	}
	return pub, nil
}

// negotiate picks the highest offered protocol this node speaks.
func negotiate(offered string) (string, bool) {
	for i := len(offeredProtocols) - 1; i >= 0; i-- {
		if headerContains(offered, offeredProtocols[i]) {
			return offeredProtocols[i], true
		}
	}
	return "", false
}

func checkNetworkID(h Header, cfg Config) error {
	raw := h.Get("Network-ID")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: Network-ID %q", ErrHTTPParse, raw)
	}
	if cfg.NetworkID != 0 && uint32(id) != cfg.NetworkID {
		return fmt.Errorf("%w: peer %d, local %d", ErrNetworkMismatch, id, cfg.NetworkID)
	}
	return nil
}

// networkTime is the wall clock on the network's epoch.
func networkTime() uint64 {
	return uint64(time.Now().Unix() - rippleEpoch)
}

// writeRefusal answers a rejected request with a bare status line so the
// peer sees a definite refusal instead of a silent close.
func writeRefusal(w io.Writer, code int) {
	reason := "Bad Request"
	if code == 503 {
		reason = "Service Unavailable"
	}
	_, _ = fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n\r\n", code, reason)
}

func drainBuffered(br *bufio.Reader) ([]byte, error) {
	n := br.Buffered()
	if n == 0 {
		return nil, nil
	}
	left := make([]byte, n)
	if _, err := io.ReadFull(br, left); err != nil {
		return nil, err
	}
	return left, nil
}
