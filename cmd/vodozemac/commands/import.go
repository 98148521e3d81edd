package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmtp/vodozemac/megolm"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <name> <session-key>",
		Short: "Import a group session from a session key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			name, sessionKey := args[0], args[1]

			sess, err := megolm.NewInboundGroupSession(suite, sessionKey)
			if err != nil {
				return err
			}
			if err := keys.SaveSession(passphrase, name, sess); err != nil {
				return err
			}

			fmt.Printf("Session %q imported.\nSender key:        %s\nFirst known index: %d\n",
				name, sess.SigningKey(), sess.FirstKnownIndex())
			return nil
		},
	}
}
