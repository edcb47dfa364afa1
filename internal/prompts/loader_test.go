package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	ClearCache()

	prompt, err := Get("outreach.json", "analyze-lead")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.LeadData}}")
}

func TestGet_UnknownKey(t *testing.T) {
	ClearCache()

	_, err := Get("outreach.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent-key")
}

func TestGet_UnknownFile(t *testing.T) {
	ClearCache()

	_, err := Get("missing.json", "any-key")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("outreach.json", "nonexistent-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}. Bye {{.Name}}."

	result := Format(template, map[string]string{
		"Name":    "Jane",
		"Company": "Acme",
	})

	assert.Equal(t, "Hello Jane, welcome to Acme. Bye Jane.", result)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	result := Format("Hello {{.Name}}", map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Name}}", result)
}

func TestAllPromptKeysPresent(t *testing.T) {
	ClearCache()

	keys := []string{"analyze-lead", "generate-email", "generate-variants", "generate-followup"}
	for _, key := range keys {
		prompt, err := Get("outreach.json", key)
		require.NoError(t, err, "key %s", key)
		assert.NotEmpty(t, prompt)
	}
}
