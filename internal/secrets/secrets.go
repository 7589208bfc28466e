// Package secrets encrypts the files that hold credentials with Cloud KMS,
// stubs them out on a fresh checkout and backs the ciphertexts up to S3.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/platform/gcloud"
	"github.com/imamik/swarmflow/internal/util/async"
	"github.com/imamik/swarmflow/internal/util/naming"
)

// EncryptedSuffix is appended to a plaintext path to name its ciphertext.
const EncryptedSuffix = ".enc"

const uploadParallelism = 4

// Encrypter encrypts one file.
type Encrypter interface {
	Encrypt(ctx context.Context, req gcloud.EncryptRequest) error
}

// Uploader stores a local file under an object key.
type Uploader interface {
	UploadFile(ctx context.Context, key, path string) error
}

// Manager handles the configured secret files of one stack.
type Manager struct {
	enc   Encrypter
	kms   config.KMSConfig
	files []string
	stack string
}

// New returns a Manager. enc may be nil when nothing is encrypted.
func New(enc Encrypter, kms config.KMSConfig, files []string, stack string) *Manager {
	return &Manager{enc: enc, kms: kms, files: files, stack: stack}
}

// Files returns the configured secret files.
func (m *Manager) Files() []string {
	return m.files
}

// Request fills the unset fields of req: the destination defaults to the
// source plus ".enc" and the key coordinates default to the configured KMS
// key.
func (m *Manager) Request(req gcloud.EncryptRequest) gcloud.EncryptRequest {
	if req.Destination == "" {
		req.Destination = req.Source + EncryptedSuffix
	}
	if req.Location == "" {
		req.Location = m.kms.Location
	}
	if req.Keyring == "" {
		req.Keyring = m.kms.Keyring
	}
	if req.Key == "" {
		req.Key = m.kms.Key
	}
	return req
}

// Encrypt encrypts req.Source after filling defaults.
func (m *Manager) Encrypt(ctx context.Context, req gcloud.EncryptRequest) error {
	if m.enc == nil {
		return errors.New("no encrypter configured")
	}
	req = m.Request(req)
	if req.Source == "" {
		return errors.New("source file is required")
	}
	if req.Key == "" || req.Keyring == "" || req.Location == "" {
		return fmt.Errorf("kms key, keyring and location are required to encrypt %s", req.Source)
	}
	log.Printf("[Secrets] Encrypting %s -> %s", req.Source, req.Destination)
	return m.enc.Encrypt(ctx, req)
}

// EncryptFiles encrypts every configured file in order and stops at the
// first failure.
func (m *Manager) EncryptFiles(ctx context.Context) error {
	for _, f := range m.files {
		if err := m.Encrypt(ctx, gcloud.EncryptRequest{Source: filepath.Clean(f)}); err != nil {
			return err
		}
	}
	return nil
}

// TouchMissing creates an empty file for every configured file that does
// not exist yet and returns the created paths.
func (m *Manager) TouchMissing() ([]string, error) {
	var created []string
	for _, f := range m.files {
		_, err := os.Stat(f)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return created, fmt.Errorf("failed to stat %s: %w", f, err)
		}
		if err := os.MkdirAll(filepath.Dir(f), 0o750); err != nil {
			return created, fmt.Errorf("failed to create directory for %s: %w", f, err)
		}
		if err := os.WriteFile(f, nil, 0o600); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", f, err)
		}
		created = append(created, f)
	}
	return created, nil
}

// Push uploads the ciphertext of every configured file to
// <stack>/<file>.enc. A file whose key would leave <stack>/ fails the push
// before anything is uploaded. All uploads are attempted; failures are
// joined.
func (m *Manager) Push(ctx context.Context, up Uploader) ([]string, error) {
	tasks := make([]async.Task, 0, len(m.files))
	keys := make([]string, 0, len(m.files))
	for _, f := range m.files {
		path := filepath.Clean(f) + EncryptedSuffix
		key, err := naming.BackupObject(m.stack, filepath.ToSlash(path))
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		tasks = append(tasks, async.Task{
			Name: path,
			Func: func(ctx context.Context) error {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("missing ciphertext, run encrypt-files first: %w", err)
				}
				log.Printf("[Secrets] Uploading %s", key)
				return up.UploadFile(ctx, key, path)
			},
		})
	}

	if err := async.RunParallel(ctx, tasks, uploadParallelism); err != nil {
		return nil, err
	}
	return keys, nil
}
