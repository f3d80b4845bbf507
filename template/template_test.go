package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndExecute(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load("greet", "Xin chào {{.Name}}"))
	assert.True(t, e.Has("greet"))

	out, err := e.Execute("greet", map[string]any{"Name": "An"})
	require.NoError(t, err)
	assert.Equal(t, "Xin chào An", out)
}

func TestExecuteUnknownTemplate(t *testing.T) {
	e := NewEngine()
	_, err := e.Execute("missing", nil)
	assert.Error(t, err)
}

func TestLoadInvalidTemplate(t *testing.T) {
	e := NewEngine()
	assert.Error(t, e.Load("bad", "{{.Name"))
}

func TestExecuteStringWithFuncs(t *testing.T) {
	out, err := Prompt(`{{join .Items ", "}}`, map[string]any{
		"Items": []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a, b, c", out)
}
