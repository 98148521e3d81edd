package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmtp/vodozemac/types"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the signing key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			kp, err := keys.LoadSigningKeypair(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", types.Fingerprint(kp.PublicKey().Slice()))
			fmt.Printf("Public key:  %s\n", kp.PublicKey())
			return nil
		},
	}
}
