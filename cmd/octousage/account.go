package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Check credentials and show the account number",
	Long:  `Logs in with the configured email and password and prints the first account number visible to them.`,
	Args:  cobra.NoArgs,
	RunE:  runAccount,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func runAccount(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer sess.finish()

	if err := sess.login(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Account: %s\n", sess.account)
	return nil
}
