package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			user, err := a.auth.Register(cmd.Context(), args[0], password(flags))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", user.Username)
			return nil
		},
	}
}
