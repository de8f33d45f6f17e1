// cmd/agentctl/query.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"insurance-agent/internal/models"
)

var (
	queryContext map[string]string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Run one agent query",
	Long: `Runs the full pipeline for one query: classification, knowledge retrieval,
database context, generation and parsing. Caller context is passed with
repeated --context key=value flags, e.g. --context customerEmail=a@b.in.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringToStringVar(&queryContext, "context", nil, "caller context key=value pairs")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	resp := app.Agent.ProcessAgentQuery(cmd.Context(), args[0], callerContext(queryContext))
	return printResponse(cmd, resp, queryJSON)
}

func callerContext(flags map[string]string) map[string]interface{} {
	if len(flags) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(flags))
	for k, v := range flags {
		out[k] = v
	}
	return out
}

func printResponse(cmd *cobra.Command, resp models.AgentResponse, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, section := range []struct{ label, text string }{
		{"agent_reply", resp.AgentReply},
		{"whatsapp", resp.WhatsApp},
		{"email", resp.Email},
		{"voice_text", resp.VoiceText},
	} {
		cmd.Printf("%s:\n%s\n\n", section.label, section.text)
	}
	return nil
}
