package storage

import (
	"crypto/tls"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/civica/internal/certgen"
)

func TestNewHTTPClient_NoCA(t *testing.T) {
	c, err := NewHTTPClient("", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Nil(t, c.Transport)
}

func TestNewHTTPClient_MissingCA(t *testing.T) {
	_, err := NewHTTPClient(filepath.Join(t.TempDir(), "nope.pem"), time.Second)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewHTTPClient_InvalidCA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	_, err := NewHTTPClient(path, time.Second)
	assert.ErrorContains(t, err, "failed to parse CA cert")
}

func TestNewHTTPClient_TrustsPrivateCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(path, certPEM, 0600))

	c, err := NewHTTPClient(path, 5*time.Second)
	require.NoError(t, err)

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewHTTPClient_DevCA(t *testing.T) {
	ca, err := certgen.NewCA("Test CA", time.Hour)
	require.NoError(t, err)
	certPEM, keyPEM, err := ca.IssueServer([]string{"127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}}
	srv.StartTLS()
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(path, ca.CertPEM(), 0600))

	c, err := NewHTTPClient(path, 5*time.Second)
	require.NoError(t, err)
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A client that does not trust the dev CA rejects the certificate.
	other, err := NewHTTPClient("", 5*time.Second)
	require.NoError(t, err)
	_, err = other.Get(srv.URL)
	assert.Error(t, err)
}
