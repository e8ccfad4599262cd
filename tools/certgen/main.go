// Package main writes a development certificate authority and a server
// certificate signed by it. Start the backend with -tls-cert/-tls-key and the
// client with -ca pointing at the generated ca.crt.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/civica/internal/certgen"
)

const (
	caValidity     = 10 * 365 * 24 * time.Hour
	serverValidity = 365 * 24 * time.Hour
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server names and IPs")
	flag.Parse()

	if err := run(*dir, strings.Split(*hosts, ",")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
}

// run reuses ca.crt/ca.key from dir when present, so reissuing the server
// certificate does not invalidate clients that already trust the authority.
func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	caCert := filepath.Join(dir, "ca.crt")
	caKey := filepath.Join(dir, "ca.key")

	ca, err := certgen.LoadCA(caCert, caKey)
	if err != nil {
		if ca, err = certgen.NewCA("Civica Dev CA", caValidity); err != nil {
			return err
		}
		keyPEM, err := ca.KeyPEM()
		if err != nil {
			return err
		}
		if err := writePair(caCert, ca.CertPEM(), caKey, keyPEM); err != nil {
			return err
		}
	}

	var names []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	certPEM, keyPEM, err := ca.IssueServer(names, serverValidity)
	if err != nil {
		return err
	}
	return writePair(filepath.Join(dir, "server.crt"), certPEM, filepath.Join(dir, "server.key"), keyPEM)
}

func writePair(certPath string, certPEM []byte, keyPath string, keyPEM []byte) error {
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", keyPath, err)
	}
	return nil
}
