// cmd/agentctl/classify.go
package main

import (
	"github.com/spf13/cobra"

	"insurance-agent/internal/agent/intent"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Show the intent a query maps to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := intent.Classify(args[0])
		cmd.Printf("intent: %s\n", in.Type)
		if name := in.PersonName(); name != "" {
			cmd.Printf("name:   %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
