// cmd/agentctl/parse.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"insurance-agent/internal/agent/parser"
)

var (
	parseQuery     string
	parseVoiceText int
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Split a raw model reply into the four channel artifacts",
	Long: `Reads a raw model reply from file, or from stdin when file is "-" or
omitted, and prints the parsed sections with defaults applied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseQuery, "query", "q", "", "original query, used for defaulted sections")
	parseCmd.Flags().IntVar(&parseVoiceText, "voice-limit", parser.DefaultVoiceTextLimit, "voice_text length limit in characters")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open reply: %w", err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	resp := parser.New(parseVoiceText, nil).Parse(string(raw), parseQuery)
	return printResponse(cmd, resp, true)
}
