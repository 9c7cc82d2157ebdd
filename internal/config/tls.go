package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TemporalTLS loads the mTLS material for the Temporal connection. A nil
// config with a nil error means TLS is not configured and the dial stays
// plaintext. Validate enforces that cert and key are set together.
func (c *Config) TemporalTLS() (*tls.Config, error) {
	if c.TemporalTLSCert == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(c.TemporalTLSCert, c.TemporalTLSKey)
	if err != nil {
		return nil, fmt.Errorf("load temporal client cert: %w", err)
	}
	out := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ServerName:   c.TemporalTLSServerName,
	}

	if c.TemporalTLSCACert != "" {
		pem, err := os.ReadFile(c.TemporalTLSCACert)
		if err != nil {
			return nil, fmt.Errorf("read temporal CA cert: %w", err)
		}
		out.RootCAs = x509.NewCertPool()
		if !out.RootCAs.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("parse temporal CA cert %s: no certificates found", c.TemporalTLSCACert)
		}
	}

	return out, nil
}
