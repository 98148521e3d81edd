package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xmtp/vodozemac/internal/store"
	"github.com/xmtp/vodozemac/megolm"
)

var (
	home       string
	passphrase string

	keys  *store.KeyStore
	suite megolm.Suite
)

func Execute() error {
	root := &cobra.Command{
		Use:   "vodozemac",
		Short: "Megolm group session CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".vodozemac")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			keys = store.New(home)
			suite = megolm.DefaultSuite()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.vodozemac)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase to protect keys")

	root.AddCommand(initCmd(), fingerprintCmd(), importCmd(), decryptCmd(), exportCmd())
	return root.Execute()
}

func requirePassphrase() error {
	if passphrase == "" {
		return errPassphraseRequired
	}
	return nil
}
