package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	childhood := c.ForCategory("Barndom & Oppvekst")
	require.Len(t, childhood, 2)
	assert.Equal(t, "1", childhood[0].ID)
	assert.True(t, childhood[0].Cultural)
	assert.Len(t, childhood[0].FollowUp, 2)

	family := c.ForCategory("Familie & Forhold")
	require.Len(t, family, 1)
	assert.Contains(t, family[0].FollowUp[1], `"den rette"`)

	assert.Empty(t, c.ForCategory("Ukjent"))
	assert.NotNil(t, c.ForCategory("Ukjent"))
	assert.Equal(t, []string{"Barndom & Oppvekst", "Familie & Forhold"}, c.Categories())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: x1
  category: Reise
  question: Hvor dro du på din første utenlandstur?
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.ForCategory("Reise"), 1)
}

func TestParseRejectsIncompletePrompts(t *testing.T) {
	_, err := Parse([]byte(`- id: "1"
  category: Reise
`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
