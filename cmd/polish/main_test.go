package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polish/internal/app"
	"go.trai.ch/polish/internal/core/domain"
)

func graphProvider(ctx context.Context) (*app.Components, error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	return c, err
}

func TestRun(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name         string
		setup        func(t *testing.T, root string)
		args         func(root string) []string
		expectedExit int
		stdout       string
	}{
		{
			name:         "version",
			args:         func(string) []string { return []string{"version"} },
			expectedExit: 0,
			stdout:       "polish version",
		},
		{
			name:         "sweep without candidates",
			args:         func(root string) []string { return []string{"sweep", "--root", root, "--yes"} },
			expectedExit: 0,
			stdout:       "No supported files found to format",
		},
		{
			name: "sweep of a disabled workspace",
			setup: func(t *testing.T, root string) {
				t.Helper()
				writeFile(t, filepath.Join(root, domain.SettingsFileName), "enable: false\n")
				writeFile(t, filepath.Join(root, "a.ts"), "let a = 1\n")
			},
			args:         func(root string) []string { return []string{"sweep", "--root", root} },
			expectedExit: 0,
			stdout:       "polish is disabled",
		},
		{
			name: "format with a missing formatter",
			setup: func(t *testing.T, root string) {
				t.Helper()
				writeFile(t, filepath.Join(root, domain.SettingsFileName),
					"formatter:\n  command: [\"polish-missing-formatter\"]\n")
				writeFile(t, filepath.Join(root, "a.ts"), "let a = 1\n")
			},
			args: func(root string) []string {
				return []string{"format", "--root", root, filepath.Join(root, "a.ts")}
			},
			expectedExit: 1,
		},
		{
			name:         "unknown command",
			args:         func(string) []string { return []string{"explode"} },
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, root)
			}

			stdout := new(bytes.Buffer)
			exitCode := run(context.Background(), tt.args(root), strings.NewReader(""), stdout, new(bytes.Buffer), graphProvider)

			assert.Equal(t, tt.expectedExit, exitCode)
			assert.Contains(t, stdout.String(), tt.stdout)
		})
	}
}

func TestRun_FormatFailureKeepsDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, domain.SettingsFileName), "formatter:\n  command: [\"false\"]\n")
	doc := filepath.Join(root, "a.ts")
	writeFile(t, doc, "let a = 1\n")

	exitCode := run(context.Background(), []string{"format", "--root", root, doc},
		strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer), graphProvider)
	assert.Equal(t, 1, exitCode)

	content, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "let a = 1\n", string(content))
}

func TestRun_ProviderError(t *testing.T) {
	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, strings.NewReader(""), new(bytes.Buffer), stderr,
		func(context.Context) (*app.Components, error) {
			return nil, errors.New("graph failed")
		})

	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "Error: graph failed\n", stderr.String())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
