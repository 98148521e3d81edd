package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <name> <message>",
		Short: "Decrypt a group message with a stored session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			name, message := args[0], args[1]

			sess, err := keys.LoadSession(passphrase, name, suite)
			if err != nil {
				return err
			}

			decrypted, err := sess.Decrypt(message)
			if err != nil {
				return err
			}

			// Decrypting may have advanced the working ratchet; persist the
			// new state so later messages resume from here.
			if err := keys.SaveSession(passphrase, name, sess); err != nil {
				return err
			}

			fmt.Printf("[%d] %s\n", decrypted.MessageIndex, decrypted.Plaintext)
			return nil
		},
	}
}
