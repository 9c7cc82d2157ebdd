package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemporalTLS_Disabled(t *testing.T) {
	cfg := &Config{}
	tlsCfg, err := cfg.TemporalTLS()
	require.NoError(t, err)
	assert.Nil(t, tlsCfg)
}

func TestTemporalTLS_CertAndKey(t *testing.T) {
	certPath, keyPath, _ := testCertFiles(t)

	cfg := &Config{
		TemporalTLSCert: certPath,
		TemporalTLSKey:  keyPath,
	}
	tlsCfg, err := cfg.TemporalTLS()
	require.NoError(t, err)
	require.NotNil(t, tlsCfg)
	assert.Len(t, tlsCfg.Certificates, 1)
	assert.Nil(t, tlsCfg.RootCAs)
	assert.Empty(t, tlsCfg.ServerName)
}

func TestTemporalTLS_BadCertPath(t *testing.T) {
	cfg := &Config{
		TemporalTLSCert: "/nonexistent/cert.pem",
		TemporalTLSKey:  "/nonexistent/key.pem",
	}
	_, err := cfg.TemporalTLS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load temporal client cert")
}

func TestTemporalTLS_CustomCA(t *testing.T) {
	certPath, keyPath, caPath := testCertFiles(t)

	cfg := &Config{
		TemporalTLSCert:   certPath,
		TemporalTLSKey:    keyPath,
		TemporalTLSCACert: caPath,
	}
	tlsCfg, err := cfg.TemporalTLS()
	require.NoError(t, err)
	require.NotNil(t, tlsCfg)
	assert.NotNil(t, tlsCfg.RootCAs)
}

func TestTemporalTLS_ServerNameOverride(t *testing.T) {
	certPath, keyPath, _ := testCertFiles(t)

	cfg := &Config{
		TemporalTLSCert:       certPath,
		TemporalTLSKey:        keyPath,
		TemporalTLSServerName: "temporal.internal",
	}
	tlsCfg, err := cfg.TemporalTLS()
	require.NoError(t, err)
	require.NotNil(t, tlsCfg)
	assert.Equal(t, "temporal.internal", tlsCfg.ServerName)
}

func TestTemporalTLS_GarbageCA(t *testing.T) {
	certPath, keyPath, _ := testCertFiles(t)

	badCA := filepath.Join(t.TempDir(), "bad-ca.pem")
	require.NoError(t, os.WriteFile(badCA, []byte("not a cert"), 0o600))

	cfg := &Config{
		TemporalTLSCert:   certPath,
		TemporalTLSKey:    keyPath,
		TemporalTLSCACert: badCA,
	}
	_, err := cfg.TemporalTLS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse temporal CA cert")
}

// testCertFiles writes a throwaway CA and client certificate to a temp dir
// and returns the paths (cert, key, ca).
func testCertFiles(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "catalog test ca"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)

	caPath := filepath.Join(dir, "ca.pem")
	writeTestPEM(t, caPath, "CERTIFICATE", caDER)

	clientKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	clientTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "catalog-worker"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTemplate, caTemplate, &clientKey.PublicKey, caKey)
	require.NoError(t, err)

	certPath := filepath.Join(dir, "cert.pem")
	writeTestPEM(t, certPath, "CERTIFICATE", clientDER)

	keyDER, err := x509.MarshalECPrivateKey(clientKey)
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "key.pem")
	writeTestPEM(t, keyPath, "EC PRIVATE KEY", keyDER)

	return certPath, keyPath, caPath
}

func writeTestPEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}))
}
