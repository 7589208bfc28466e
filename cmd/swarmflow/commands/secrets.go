package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmflow/cmd/swarmflow/handlers"
)

// Encrypt returns the command that encrypts one file with Cloud KMS.
func Encrypt() *cobra.Command {
	var configPath string
	var req handlers.EncryptRequest

	cmd := &cobra.Command{
		Use:   "encrypt <source>",
		Short: "Encrypt a file with Cloud KMS",
		Long: `Encrypt a file with gcloud kms encrypt.

The ciphertext is written next to the source with a .enc suffix unless
--destination is given. The key defaults to gcp.kms in swarmflow.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Source = args[0]
			return handlers.Encrypt(cmd.Context(), configPath, req)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&req.Destination, "destination", "", "Ciphertext path (default: <source>.enc)")
	cmd.Flags().StringVar(&req.Key, "key", "", "KMS key (default: gcp.kms.key)")
	cmd.Flags().StringVar(&req.Keyring, "keyring", "", "KMS keyring (default: gcp.kms.keyring)")
	cmd.Flags().StringVar(&req.Location, "location", "", "KMS location (default: gcp.kms.location)")

	return cmd
}

// EncryptFiles returns the command that encrypts every configured secret.
func EncryptFiles() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "encrypt-files",
		Short: "Encrypt every file listed under encrypt.files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.EncryptFiles(cmd.Context(), configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// Secrets returns the parent command for secret storage.
func Secrets() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage encrypted secrets",
	}
	cmd.AddCommand(SecretsPush())
	return cmd
}

// SecretsPush returns the command that uploads the encrypted secrets.
func SecretsPush() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload encrypted secrets to the backup bucket",
		Long: `Upload <file>.enc for every file under encrypt.files to the S3-compatible
bucket configured under backup, below the <stack>/ prefix.

Credentials are read from backup.access_key and backup.secret_key or from
AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SecretsPush(cmd.Context(), configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// Bootstrap returns the command that prepares a fresh checkout.
func Bootstrap() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Generate the TLS certificate and create missing secret files",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Bootstrap(configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// GenCert returns the command that writes a self-signed certificate.
func GenCert() *cobra.Command {
	var configPath string
	var days int

	cmd := &cobra.Command{
		Use:   "gen-cert",
		Short: "Generate a self-signed certificate for the reverse proxy",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.GenCert(configPath, days)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVar(&days, "days", 0, "Validity in days (default: tls.days, 365)")

	return cmd
}
