package tlsutil

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T) (certFile, keyFile string) {
	t.Helper()
	certPEM, keyPEM, err := SelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "server.pem")
	keyFile = filepath.Join(dir, "server-key.pem")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	return certFile, keyFile
}

func TestServerConfig(t *testing.T) {
	certFile, keyFile := writeSelfSigned(t)

	t.Run("server only", func(t *testing.T) {
		cfg, err := ServerConfig(certFile, keyFile, "")
		require.NoError(t, err)
		assert.Len(t, cfg.Certificates, 1)
		assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
		assert.Equal(t, tls.NoClientCert, cfg.ClientAuth)
	})

	t.Run("mutual tls", func(t *testing.T) {
		cfg, err := ServerConfig(certFile, keyFile, certFile)
		require.NoError(t, err)
		assert.Equal(t, tls.RequireAndVerifyClientCert, cfg.ClientAuth)
		assert.NotNil(t, cfg.ClientCAs)
	})

	t.Run("missing files", func(t *testing.T) {
		_, err := ServerConfig("missing.pem", "missing-key.pem", "")
		assert.Error(t, err)
	})

	t.Run("bad client ca", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))
		_, err := ServerConfig(certFile, keyFile, bad)
		assert.Error(t, err)
	})
}

func TestServerCredentials(t *testing.T) {
	certFile, keyFile := writeSelfSigned(t)

	creds, err := ServerCredentials(certFile, keyFile, "")
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)
}
