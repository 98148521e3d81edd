package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmtp/vodozemac/types"
)

var errPassphraseRequired = errors.New("passphrase required (-p)")

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}

			signing, err := types.NewEd25519Keypair()
			if err != nil {
				return err
			}
			dh, err := types.NewCurve25519Keypair()
			if err != nil {
				return err
			}

			if err := keys.SaveSigningKeypair(passphrase, signing); err != nil {
				return err
			}
			if err := keys.SaveDHKeypair(passphrase, dh); err != nil {
				return err
			}

			fmt.Printf("Identity created.\nFingerprint: %s\n", types.Fingerprint(signing.PublicKey().Slice()))
			return nil
		},
	}
}
