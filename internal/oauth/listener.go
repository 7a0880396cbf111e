package oauth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

const successPage = "<html><body><h1>Authorization successful!</h1><p>You can close this tab.</p></body></html>"

// callbackListener accepts TLS connections on a loopback port and returns
// the raw text of the first readable request. The TLS identity is a
// throwaway self-signed certificate generated per login attempt and never
// written to disk.
type callbackListener struct {
	ln        net.Listener
	tlsConfig *tls.Config
}

// newCallbackListener generates an ephemeral TLS identity and binds addr.
func newCallbackListener(addr string) (*callbackListener, error) {
	cert, err := generateEphemeralCert()
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", addr, err)
	}

	return &callbackListener{
		ln:        ln,
		tlsConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}, nil
}

// Addr returns the bound address.
func (l *callbackListener) Addr() net.Addr { return l.ln.Addr() }

// Close closes the listening socket.
func (l *callbackListener) Close() error { return l.ln.Close() }

// Wait blocks until a connection delivers a readable request. Connections
// whose TLS handshake fails or that yield zero bytes are discarded and the
// listener keeps waiting; this tolerates stray probes ahead of the genuine
// browser redirect. The valid request is answered with a static success
// page. There is no timeout: a login attempt blocks until the user finishes
// the browser step or the process is killed.
func (l *callbackListener) Wait() (string, error) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return "", fmt.Errorf("accepting connection: %w", err)
		}

		request, ok := l.readRequest(conn)
		if !ok {
			continue
		}
		return request, nil
	}
}

// readRequest terminates TLS on conn and reads one request. Returns false
// when the connection should be discarded.
func (l *callbackListener) readRequest(conn net.Conn) (string, bool) {
	tlsConn := tls.Server(conn, l.tlsConfig)
	defer tlsConn.Close()

	if err := tlsConn.Handshake(); err != nil {
		return "", false
	}

	buf := make([]byte, 2048)
	n, err := tlsConn.Read(buf)
	if err != nil || n == 0 {
		return "", false
	}

	response := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		len(successPage), successPage)
	tlsConn.Write([]byte(response))

	return string(buf[:n]), true
}

// generateEphemeralCert builds a self-signed ECDSA certificate bound to the
// loopback address, valid for one hour and held only in memory.
func generateEphemeralCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating key pair: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating self-signed cert: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}, nil
}
