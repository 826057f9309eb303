package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recorded adjustments",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringP("format", "f", "table", "Output format (table, yaml)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	configure()

	dispatcher, closeAudit, err := configureAudit(conf.Audit)
	if err != nil {
		return err
	}
	defer closeAudit()

	entries, err := dispatcher.Entries()
	if err != nil {
		return err
	}

	return renderAudit(cmd.OutOrStdout(), format, entries)
}
