package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnegrim/meshmap/config"
)

func TestParseCouplingConfigAndBuildEachMapping(t *testing.T) {
	fileInput := []byte(`
Title: Test Coupling
Dimensions: 2
Ranks: 1
Mappings:
  - Name: nn
    Family: nearest-neighbor
    Constraint: consistent
  - Name: rbf
    Family: rbf-direct
    Constraint: conservative
    Kernel: multiquadrics
    Epsilon: 2
`)
	var c config.Coupling
	require.NoError(t, c.Parse(fileInput))
	assert.Equal(t, "Test Coupling", c.Title)
	require.Len(t, c.Mappings, 2)

	for _, m := range c.Mappings {
		_, err := config.BuildMapping(m, c.Dimensions)
		assert.NoError(t, err)
	}
}
