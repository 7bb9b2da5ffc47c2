package definition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/facepay/flowgate/flow"
	"github.com/stretchr/testify/require"
)

func TestBuiltinDefinitionsCompile(t *testing.T) {
	for _, def := range Builtin() {
		def := def
		t.Run(def.Name, func(t *testing.T) {
			_, err := flow.Compile(&def)
			require.NoError(t, err)
		})
	}
}

const pinChangeYaml = `
name: pin_change
entry: enter_pin
stages:
  - id: enter_pin
    fields: [pin, pin_confirm]
    script: "$.pin === $.pin_confirm"
    effect: submit_step
    effectArg: change_pin
    onSuccess:
      kind: terminal
      payload:
        status: changed
    onFailure:
      action: retry
    failureMessage: pin change rejected
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pin_change.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pinChangeYaml), 0644))

	def, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "pin_change", def.Name)
	require.Equal(t, "enter_pin", def.Entry)
	require.Len(t, def.Stages, 1)
	require.Equal(t, "pin change rejected", def.Stages[0].FailureMessage)
}

func TestLoadFileRejectsUnknownRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	bad := `
name: bad
entry: only
stages:
  - id: only
    fields: [pin]
    rules:
      pin: no_such_rule
    onSuccess:
      kind: terminal
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0644))
	_, err := LoadFile(path)
	require.ErrorContains(t, err, "unknown validation rule")
}

func TestLoadFileRejectsDanglingTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dangling.yaml")
	bad := `
name: dangling
entry: first
stages:
  - id: first
    onSuccess:
      kind: next
      next: ghost
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0644))
	_, err := LoadFile(path)
	require.ErrorContains(t, err, "unknown stage ghost")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pin_change.yaml"), []byte(pinChangeYaml), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a definition"), 0644))

	defs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "pin_change", defs[0].Name)
}
