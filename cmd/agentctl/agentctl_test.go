package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		checkKeywords = nil
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestClassifyCmd(t *testing.T) {
	out, err := execute(t, "", "classify", "Find Rajesh Kumar")
	require.NoError(t, err)
	assert.Contains(t, out, "intent: person_search")
	assert.Contains(t, out, "name:   Rajesh Kumar")

	out, err = execute(t, "", "classify", "How do I file a claim?")
	require.NoError(t, err)
	assert.Contains(t, out, "intent: claim_process")
}

func TestClassifyCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "", "classify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestParseCmd_Stdin(t *testing.T) {
	reply := "agent_reply: Term plans are cheap.\nwhatsapp: Hi!\nemail: Dear Sir\nvoice_text: Term plans are cheap."
	out, err := execute(t, reply, "parse")
	require.NoError(t, err)

	assert.Contains(t, out, `"agent_reply": "Term plans are cheap."`)
	assert.Contains(t, out, `"whatsapp": "Hi!"`)
}

func TestParseCmd_Defaults(t *testing.T) {
	out, err := execute(t, "Just a plain answer.", "parse", "-q", "term plan?")
	require.NoError(t, err)
	assert.Contains(t, out, `"agent_reply": "Just a plain answer."`)
	assert.NotContains(t, out, `"whatsapp": ""`)
}

func TestCheckCmd(t *testing.T) {
	out, err := execute(t, "", "check", "Please renew your term plan. Thank you.")
	require.NoError(t, err)
	assert.Contains(t, out, "compliant")

	out, err = execute(t, "", "check", "Guaranteed returns on this ULIP")
	require.NoError(t, err)
	assert.Contains(t, out, "not compliant (risk: medium)")
	assert.Contains(t, out, `Prohibited term detected: "guaranteed returns"`)
}

func TestCheckCmd_CustomKeyword(t *testing.T) {
	out, err := execute(t, "", "check", "--keyword", "double your money", "Double your money fast")
	require.NoError(t, err)
	assert.Contains(t, out, "not compliant")
}

func TestQueryCmd_Flags(t *testing.T) {
	flag := queryCmd.Flags().Lookup("context")
	require.NotNil(t, flag)
	assert.Equal(t, "[]", flag.DefValue)

	assert.Equal(t, map[string]interface{}{"age": "34"}, callerContext(map[string]string{"age": "34"}))
	assert.Nil(t, callerContext(nil))
}

func TestBackfillCmd_Flags(t *testing.T) {
	assert.Equal(t, "50", backfillCmd.Flags().Lookup("batch").DefValue)
	assert.Equal(t, "100ms", backfillCmd.Flags().Lookup("interval").DefValue)
}
