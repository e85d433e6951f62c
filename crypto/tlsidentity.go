package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"
)

// rsaKeyBits is the modulus size of the per-instance TLS key.
const rsaKeyBits = 2048

// certValidity is how long a generated certificate stays valid. Peers do
// not verify certificates, so the window only has to cover a test run.
const certValidity = 365 * 24 * time.Hour

// TLSIdentity is a per-instance TLS identity: a fresh RSA key and a
// self-signed certificate presented on both dial and accept. Peer
// authentication happens at the session-binding layer, not here.
type TLSIdentity struct {
	cert tls.Certificate
}

// NewTLSIdentity generates a fresh RSA-2048 key and self-signed
// certificate for the given common name.
func NewTLSIdentity(commonName string) (*TLSIdentity, error) {
	logger := NewLogger("NewTLSIdentity").WithField("common_name", commonName)
	logger.Entry("generating TLS identity")

	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate TLS key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate certificate serial: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"xrplsynth"},
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	logger.Exit()
	return &TLSIdentity{
		cert: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  priv,
		},
	}, nil
}

// ClientConfig returns a TLS config for dialing a peer. The peer's
// certificate is accepted without verification.
func (id *TLSIdentity) ClientConfig() *tls.Config {
	return &tls.Config{
		Certificates:       []tls.Certificate{id.cert},
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
	}
}

// ServerConfig returns a TLS config for accepting a peer. A client
// certificate is requested but never verified.
func (id *TLSIdentity) ServerConfig() *tls.Config {
	return &tls.Config{
		Certificates:       []tls.Certificate{id.cert},
		ClientAuth:         tls.RequestClientCert,
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
	}
}

// Leaf parses and returns the generated certificate.
func (id *TLSIdentity) Leaf() (*x509.Certificate, error) {
	return x509.ParseCertificate(id.cert.Certificate[0])
}
