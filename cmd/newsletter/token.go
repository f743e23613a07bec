package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantonganh/newsletter/pkg/hash"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "hash <secret>",
		Short: "Print the digest to store in the access tokens file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := hash.SHA256(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	})

	return cmd
}
