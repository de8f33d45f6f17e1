// cmd/agentctl/check.go
package main

import (
	"github.com/spf13/cobra"

	"insurance-agent/internal/compliance"
)

var checkKeywords []string

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Run the outbound compliance check on a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := compliance.NewChecker(checkKeywords).Check(args[0])
		if res.IsCompliant {
			cmd.Println("compliant")
			return nil
		}
		cmd.Printf("not compliant (risk: %s)\n", res.RiskLevel)
		for _, issue := range res.Issues {
			cmd.Printf("  - %s\n", issue)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringSliceVar(&checkKeywords, "keyword", nil, "prohibited phrase (repeatable, replaces the defaults)")
	rootCmd.AddCommand(checkCmd)
}
