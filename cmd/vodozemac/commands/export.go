package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var index uint32

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a stored session at a message index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			name := args[0]

			sess, err := keys.LoadSession(passphrase, name, suite)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("index") {
				index = sess.FirstKnownIndex()
			}

			exported, err := sess.ExportAt(index)
			if err != nil {
				return err
			}

			fmt.Println(exported.Encode())
			return nil
		},
	}

	cmd.Flags().Uint32Var(&index, "index", 0, "message index to export at (default first known)")
	return cmd
}
