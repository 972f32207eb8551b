package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfmedicos/mailagent/internal/mcptool"
)

func testBinding(t *testing.T) *mcptool.Binding {
	t.Helper()
	b, err := mcptool.NewGmailBinding("ya29.test")
	require.NoError(t, err)
	return b
}

func TestNewDefinition(t *testing.T) {
	def, err := NewDefinition("gpt-4.1-mini", testBinding(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultName, def.Name())
	assert.Equal(t, "gpt-4.1-mini", def.Model())
	assert.Len(t, def.Tools(), 1)
	assert.NotEmpty(t, def.OutputSchema())

	settings := def.Settings()
	assert.Equal(t, 0.15, settings.Temperature)
	assert.Equal(t, float64(1), settings.TopP)
	assert.Equal(t, 2048, settings.MaxOutputTokens)
	assert.True(t, settings.Store)
}

func TestNewDefinitionValidation(t *testing.T) {
	_, err := NewDefinition("", testBinding(t))
	assert.ErrorContains(t, err, "model")

	_, err = NewDefinition("gpt-4.1-mini")
	assert.ErrorContains(t, err, "tool binding")

	_, err = NewDefinition("gpt-4.1-mini", nil)
	assert.ErrorContains(t, err, "nil")
}

func TestDefinitionToolsIsACopy(t *testing.T) {
	def, err := NewDefinition("gpt-4.1-mini", testBinding(t))
	require.NoError(t, err)

	tools := def.Tools()
	tools[0] = nil

	assert.NotNil(t, def.Tools()[0])
}

func TestInstructionsForThreadsContext(t *testing.T) {
	def, err := NewDefinition("gpt-4.1-mini", testBinding(t))
	require.NoError(t, err)

	text := def.InstructionsFor(NewRunContext("MEDICALS"))
	assert.Contains(t, text, "NF-MEDICOS/MEDICALS")
}
