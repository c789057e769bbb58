package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motif/internal/graphfile"
	"github.com/roach88/motif/internal/pattern"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E304", "pattern rejected", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E304", resp.Error.Code)
	assert.Equal(t, "pattern rejected", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]any{"pos": 3, "fragment": "(a)<-[e]-(b)"}
	err := formatter.Error("E203", "reversed direction", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("All patterns valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "All patterns valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E304", "pattern rejected", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E304]")
	assert.Contains(t, buf.String(), "pattern rejected")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]any{"kind": "parse"}
	err := formatter.Error("E304", "pattern rejected", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E304]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		wantLog  bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Loaded %s", "graph.yaml")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Loaded graph.yaml")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E301",
		Message: "role conflict",
		Details: []string{"(a)-[a]->(b)"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E301", decoded.Code)
	assert.Equal(t, "role conflict", decoded.Message)
}

func TestOutputFormatter_Fail(t *testing.T) {
	_, parseErr := pattern.Parse("(a)<-[e]-(b)")
	require.Error(t, parseErr)

	tests := []struct {
		name     string
		err      error
		code     string
		exitCode int
	}{
		{"parse error", parseErr, pattern.ErrCodeReversedDirection, ExitFailure},
		{"load error", &graphfile.LoadError{Code: graphfile.ErrCodeNotFound, Path: "x.yaml", Message: "missing"}, graphfile.ErrCodeNotFound, ExitCommandError},
		{"command error", &CommandError{Code: ErrCodeNoGraph, Message: "no graph"}, ErrCodeNoGraph, ExitCommandError},
		{"other", errors.New("disk on fire"), ErrCodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestOutputFormatter_FailParseDetails(t *testing.T) {
	_, parseErr := pattern.Parse("(a)-[e]->(b); (c-d)")
	require.Error(t, parseErr)

	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}
	_ = formatter.Fail(parseErr)

	var resp struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, pattern.ErrCodeInvalidCharacter, resp.Error.Code)
	assert.Equal(t, float64(16), resp.Error.Details["pos"])
	assert.Equal(t, "(c-d)", resp.Error.Details["fragment"])
	assert.Equal(t, "parse", resp.Error.Details["kind"])
}

func TestExitError(t *testing.T) {
	err := WrapExitError(ExitCommandError, "load failed", errors.New("boom"))
	assert.Equal(t, "load failed: boom", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
