// Package certs creates the self-signed TLS certificate served by the
// reverse proxy.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"
)

const (
	// KeyBits is the RSA key size.
	KeyBits = 2048

	DefaultDays       = 365
	DefaultCommonName = "localhost"
)

// Options describe the certificate to create.
type Options struct {
	KeyPath  string
	CertPath string
	// Days until expiry. Zero means DefaultDays.
	Days       int
	CommonName string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Generate writes a new RSA key (PKCS#8 PEM, mode 0600) and a self-signed
// certificate (PEM) to the paths in opts, creating parent directories.
func Generate(opts Options) (*x509.Certificate, error) {
	if opts.KeyPath == "" || opts.CertPath == "" {
		return nil, errors.New("key and certificate paths are required")
	}
	if opts.Days < 0 {
		return nil, fmt.Errorf("days must not be negative, got %d", opts.Days)
	}
	if opts.Days == 0 {
		opts.Days = DefaultDays
	}
	if opts.CommonName == "" {
		opts.CommonName = DefaultCommonName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := opts.Now().UTC()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: opts.CommonName},
		DNSNames:              []string{opts.CommonName},
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(0, 0, opts.Days),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(opts.KeyPath, "PRIVATE KEY", keyDER, 0o600); err != nil {
		return nil, err
	}
	if err := writePEM(opts.CertPath, "CERTIFICATE", der, 0o644); err != nil {
		return nil, err
	}

	return x509.ParseCertificate(der)
}

// Load reads a PEM certificate.
func Load(path string) (*x509.Certificate, error) {
	// #nosec G304 -- path comes from the operator's config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%s does not contain a PEM certificate", path)
	}
	return x509.ParseCertificate(block.Bytes)
}

func writePEM(path, blockType string, der []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
