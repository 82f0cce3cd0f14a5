package tls

import (
	stdtls "crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	require.NoError(t, GenerateSelfSignedCert(certPath, keyPath, []string{"localhost", "127.0.0.1"}))

	pair, err := stdtls.LoadX509KeyPair(certPath, keyPath)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())
	assert.Equal(t, []string{"Serverless Workflow Dev"}, cert.Subject.Organization)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnsureCertKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	created, err := EnsureCert(certPath, keyPath, []string{"localhost"})
	require.NoError(t, err)
	assert.True(t, created)

	before, err := os.ReadFile(certPath)
	require.NoError(t, err)

	created, err = EnsureCert(certPath, keyPath, []string{"localhost"})
	require.NoError(t, err)
	assert.False(t, created)

	after, err := os.ReadFile(certPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGenerateSelfSignedCertBadPath(t *testing.T) {
	err := GenerateSelfSignedCert(filepath.Join(t.TempDir(), "missing", "cert.pem"), "key.pem", nil)
	assert.Error(t, err)
}
