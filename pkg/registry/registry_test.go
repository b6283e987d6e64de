// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01T00:00:00Z",
		Activities: []Activity{
			{
				ID:          "generate-storyline",
				DisplayName: "Generate Storyline",
				Category:    "content",
				TaskType:    "generate-storyline",
			},
			{
				ID:          "validate-content",
				DisplayName: "Validate Content",
				Category:    "content",
				TaskType:    "validate-content",
			},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	reg := contentRegistry()
	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Version, loaded.Version)
	require.Len(t, loaded.Activities, 2)
	assert.Equal(t, "generate-storyline", loaded.Activities[0].ID)
}

func TestValidate(t *testing.T) {
	reg := contentRegistry()
	assert.NoError(t, reg.Validate())

	empty := &ActivityRegistry{}
	assert.Error(t, empty.Validate())

	dup := contentRegistry()
	dup.Activities = append(dup.Activities, dup.Activities[0])
	assert.Error(t, dup.Validate())

	missing := contentRegistry()
	missing.Activities[1].TaskType = ""
	assert.Error(t, missing.Validate())
}

func TestFindAndTaskTypes(t *testing.T) {
	reg := contentRegistry()

	found := reg.Find("validate-content")
	require.NotNil(t, found)
	assert.Equal(t, "Validate Content", found.DisplayName)

	assert.Nil(t, reg.Find("missing"))
	assert.Equal(t, []string{"generate-storyline", "validate-content"}, reg.TaskTypes())
}
