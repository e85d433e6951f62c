package crypto

import (
	"crypto/tls"
	"net"
	"testing"
	"time"
)

func TestMixFinishedSymmetry(t *testing.T) {
	local := []byte("local finished material for the mixing test")
	peer := []byte("peer finished material for the mixing test")

	forward := MixFinished(local, peer)
	reverse := MixFinished(peer, local)
	if forward != reverse {
		t.Error("MixFinished() is not symmetric in its arguments")
	}

	if forward != MixFinished(local, peer) {
		t.Error("MixFinished() is not deterministic")
	}

	other := MixFinished(local, []byte("different peer material"))
	if forward == other {
		t.Error("MixFinished() ignored a changed input")
	}

	// Identical halves XOR to zero; the binding is still well defined.
	same := MixFinished(local, local)
	if same == (([BindingSize]byte{})) {
		t.Error("MixFinished() of identical inputs returned the zero digest")
	}
}

func TestSessionBindingRequiresHandshake(t *testing.T) {
	var cs tls.ConnectionState
	if _, err := SessionBinding(cs, true); err != ErrHandshakeIncomplete {
		t.Errorf("SessionBinding() on incomplete handshake: error = %v, want %v", err, ErrHandshakeIncomplete)
	}
}

func TestSessionBindingAgreesAcrossRoles(t *testing.T) {
	clientID, err := NewTLSIdentity("binding-client")
	if err != nil {
		t.Fatalf("NewTLSIdentity() error: %v", err)
	}
	serverID, err := NewTLSIdentity("binding-server")
	if err != nil {
		t.Fatalf("NewTLSIdentity() error: %v", err)
	}

	clientRaw, serverRaw := net.Pipe()
	defer clientRaw.Close()
	defer serverRaw.Close()

	client := tls.Client(clientRaw, clientID.ClientConfig())
	server := tls.Server(serverRaw, serverID.ServerConfig())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Handshake()
	}()
	if err := client.Handshake(); err != nil {
		t.Fatalf("client handshake error: %v", err)
	}
	select {
	case err := <-serverErr:
		if err != nil {
			t.Fatalf("server handshake error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server handshake did not complete")
	}

	clientBinding, err := SessionBinding(client.ConnectionState(), true)
	if err != nil {
		t.Fatalf("client SessionBinding() error: %v", err)
	}
	serverBinding, err := SessionBinding(server.ConnectionState(), false)
	if err != nil {
		t.Fatalf("server SessionBinding() error: %v", err)
	}

	if clientBinding != serverBinding {
		t.Errorf("bindings disagree: client %x, server %x", clientBinding, serverBinding)
	}
	if clientBinding == ([BindingSize]byte{}) {
		t.Error("binding is the zero digest")
	}

	// A binding signature from one side must verify on the other.
	keyPair, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	sig := keyPair.SignDigest(clientBinding)
	if !VerifyDigest(keyPair.Public(), serverBinding, sig) {
		t.Error("signature over the client binding fails against the server binding")
	}
}
