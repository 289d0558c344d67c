package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asrvd/repo-guardian/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		set, err := rules.Active(cfg)
		if err != nil {
			return fmt.Errorf("failed to build rule set: %w", err)
		}

		for _, r := range set {
			fmt.Printf("%-28s %-8s %s\n", r.ID, strings.ToUpper(r.Severity.String()), r.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
