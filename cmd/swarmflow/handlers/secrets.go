package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/imamik/swarmflow/internal/certs"
	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/platform/gcloud"
	"github.com/imamik/swarmflow/internal/platform/s3"
	"github.com/imamik/swarmflow/internal/platform/shell"
	"github.com/imamik/swarmflow/internal/secrets"
)

// BackupStore is the bucket encrypted secrets are pushed to.
type BackupStore interface {
	secrets.Uploader
	EnsureBucket(ctx context.Context) error
	Bucket() string
}

var (
	// newEncrypter creates the Cloud KMS client.
	newEncrypter = func(runner shell.Runner, cfg *config.Config) secrets.Encrypter {
		return gcloud.New(runner, cfg.GCP.Project, cfg.GCP.Zone)
	}

	// newBackupStore creates the S3 client for the backup bucket.
	newBackupStore = func(ctx context.Context, cfg config.BackupConfig) (BackupStore, error) {
		return s3.NewClient(ctx, cfg)
	}

	// generateCert writes the reverse proxy certificate.
	generateCert = certs.Generate
)

// EncryptRequest holds the encrypt command's arguments. Empty fields take
// their defaults from the configuration.
type EncryptRequest = gcloud.EncryptRequest

// Encrypt encrypts one file with Cloud KMS.
func Encrypt(ctx context.Context, configPath string, req EncryptRequest) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return secretsManager(cfg).Encrypt(ctx, req)
}

// EncryptFiles encrypts every file listed under encrypt.files.
func EncryptFiles(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateKMS(); err != nil {
		return err
	}
	if len(cfg.Encrypt.Files) == 0 {
		log.Printf("[Secrets] No files configured under encrypt.files")
		return nil
	}
	return secretsManager(cfg).EncryptFiles(ctx)
}

// SecretsPush uploads the ciphertext of every configured file to the
// backup bucket.
func SecretsPush(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Backup.Enabled() {
		return errors.New("backup.bucket is not configured")
	}

	store, err := newBackupStore(ctx, cfg.Backup)
	if err != nil {
		return fmt.Errorf("failed to create backup client: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	keys, err := secretsManager(cfg).Push(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to push secrets: %w", err)
	}
	log.Printf("[Secrets] Pushed %d files to s3://%s/%s/", len(keys), store.Bucket(), cfg.StackName)
	return nil
}

// GenCert writes a self-signed certificate for the reverse proxy. days
// overrides tls.days when positive.
func GenCert(configPath string, days int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return genCert(cfg, days)
}

// Bootstrap prepares a fresh checkout: it generates the certificate and
// creates every missing secret file empty.
func Bootstrap(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := genCert(cfg, 0); err != nil {
		return err
	}

	created, err := secretsManager(cfg).TouchMissing()
	for _, f := range created {
		log.Printf("[Bootstrap] Created empty %s", f)
	}
	if err != nil {
		return err
	}
	if len(created) > 0 {
		log.Printf("[Bootstrap] Fill in the created files, then run encrypt-files")
	}
	return nil
}

func genCert(cfg *config.Config, days int) error {
	if days <= 0 {
		days = cfg.TLS.Days
	}

	cert, err := generateCert(certs.Options{
		KeyPath:  cfg.TLS.KeyPath,
		CertPath: cfg.TLS.CertPath,
		Days:     days,
	})
	if err != nil {
		return fmt.Errorf("failed to generate certificate: %w", err)
	}

	log.Printf("[Certs] Wrote %s and %s (CN=%s, expires %s)",
		cfg.TLS.CertPath, cfg.TLS.KeyPath, cert.Subject.CommonName, cert.NotAfter.Format("2006-01-02"))
	return nil
}

func secretsManager(cfg *config.Config) *secrets.Manager {
	return secrets.New(newEncrypter(newRunner(false), cfg), cfg.GCP.KMS, cfg.Encrypt.Files, cfg.StackName)
}
