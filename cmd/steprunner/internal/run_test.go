package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCmdExecutesPlanSequentially(t *testing.T) {
	cacheDir := t.TempDir()
	configDir := t.TempDir()

	manifest := `
steps:
  - name: build
    run: "true"
    productions: ["binary"]
  - name: test
    run: "true"
    dependencies: ["binary"]
`
	seedFixtureNamespace(t, cacheDir, "acme", "toolkit", "main", manifest)
	configPath := writeFixtureConfig(t, configDir, "github.com/acme/toolkit@main", "github.com/acme/toolkit@main:test")

	root := NewRootCmd()
	out := bytes.NewBufferString("")
	root.SetOut(out)
	root.SetArgs([]string{"--cache-dir", cacheDir, "run", "--config", configPath})

	require.NoError(t, root.Execute())
}
