package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dronectl/internal/console"
	"github.com/roach88/dronectl/internal/ui"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitFailure, "failed")), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to open script", cause)

	assert.Equal(t, "failed to open script: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}

func TestOutputFormatter_Result(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Styles: ui.NoColorStyles()}

	f.Result(console.Result{Success: true, Message: "Vehicle state: Preflight\n"})
	f.Result(console.Result{Success: true})
	f.Result(console.Result{Success: false, Message: "Enable failed: unknown subsystem 'Ghost'"})

	assert.Equal(t, "Vehicle state: Preflight\nEnable failed: unknown subsystem 'Ghost'\n", buf.String())
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeGeneric, "something broke", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeGeneric, resp.Error.Code)
	assert.Equal(t, "something broke", resp.Error.Message)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true, Styles: ui.NoColorStyles()}

	require.NoError(t, f.Error(ErrCodeProfile, "invalid profile", "E206"))
	assert.Equal(t, "Error [E002]: invalid profile\nDetails: E206\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	quiet := &OutputFormatter{Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	loud := &OutputFormatter{Writer: out, ErrWriter: errOut, Verbose: true}
	loud.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())

	noErr := &OutputFormatter{Writer: out, Verbose: true}
	assert.Same(t, out, noErr.GetErrWriter())
}

func TestOutputFormatter_ResultMultiline(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Styles: ui.NoColorStyles()}

	f.Result(console.Result{Success: true, Message: "Enabled subsystems:\n  IMU\n"})
	assert.Equal(t, "Enabled subsystems:\n  IMU\n", buf.String())
}
