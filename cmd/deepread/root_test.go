package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/pipeline"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFlagSelectionErrorsAreConfigErrors(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", "")
	t.Setenv("LEDGER_DSN", "")

	tests := []struct {
		name string
		args []string
	}{
		{"neither file nor all", nil},
		{"file and all", []string{"-f", "a.png", "--all"}},
		{"all with process type", []string{"--all", "-p", "form"}},
		{"report without all", []string{"-f", "a.png", "--report", "r.xlsx"}},
		{"unknown language", []string{"-f", "a.png", "-l", "fr"}},
		{"unknown process type", []string{"-f", "a.png", "-p", "letter"}},
		{"unknown flag", []string{"--bogus"}},
		{"missing key", []string{"--all", "--outputs", "out"}},
		{"history without ledger", []string{"history"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, common.IsConfigError(err), "got %v", err)
			assert.Equal(t, 2, common.ExitCode(err))
		})
	}
}

func TestOutcomeRows(t *testing.T) {
	rows := outcomeRows([]pipeline.Outcome{
		{
			Path: "samples/invoice/invoice-ja.pdf", Language: constants.Japanese, ProcessType: constants.Invoice,
			Status: constants.RunStatusOK, JSONPath: "outputs/invoice/invoice-ja.json", Duration: time.Second,
		},
		{Path: "samples/form/a.png", Status: constants.RunStatusFailed, Err: errors.New("boom")},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "ja", rows[0].Language)
	assert.Equal(t, "OK", rows[0].Status)
	assert.Empty(t, rows[0].Error)
	assert.Equal(t, time.Second, rows[0].Duration)
	assert.Equal(t, "boom", rows[1].Error)
	assert.Equal(t, "FAILED", rows[1].Status)
}

func TestPrintOutcome(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	printOutcome(cmd, pipeline.Outcome{
		Path: "a.png", Language: constants.English, ProcessType: constants.Form,
		JSONPath: "outputs/form/a.json", ImagePath: "outputs/form/a.png",
	})
	printOutcome(cmd, pipeline.Outcome{Path: "b.png", Err: errors.New("nope")})

	assert.Equal(t,
		"OK     a.png (en/form) -> outputs/form/a.json, outputs/form/a.png\nFAILED b.png: nope\n",
		out.String())
}
