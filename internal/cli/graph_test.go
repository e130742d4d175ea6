package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeGraph(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewGraphCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestGraphCommand_Dependencies(t *testing.T) {
	out, err := executeGraph(t, &RootOptions{Format: "text"})
	require.NoError(t, err)

	assert.Contains(t, out, "digraph subsystems {")
	assert.Contains(t, out, `label="FlightModes";`)
	assert.Contains(t, out, `"MotorMix"`)
}

func TestGraphCommand_FSM(t *testing.T) {
	out, err := executeGraph(t, &RootOptions{Format: "text"}, "--fsm")
	require.NoError(t, err)

	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "Preflight")
	assert.Contains(t, out, "Emergency")
	assert.NotContains(t, out, "MotorMix")
}

func TestGraphCommand_JSON(t *testing.T) {
	out, err := executeGraph(t, &RootOptions{Format: "json"}, "--fsm")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "fsm", resp.Data["kind"])
	assert.Contains(t, resp.Data["dot"], "Landing")
}

func TestGraphCommand_RejectsArgs(t *testing.T) {
	_, err := executeGraph(t, &RootOptions{Format: "text"}, "extra")
	require.Error(t, err)
}
