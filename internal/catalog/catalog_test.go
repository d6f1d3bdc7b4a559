package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{
		"Anthracnose",
		"Bacterial Canker",
		"Cutting Weevil",
		"Die Back",
		"Gall Midge",
		"Healthy",
		"Powdery Mildew",
		"Sooty Mould",
	}, c.Labels())

	d, err := c.Details("Anthracnose")
	require.NoError(t, err)
	assert.Contains(t, d.Description, "dark, sunken lesions")
	assert.Equal(t, "Caused by the fungus *Colletotrichum gloeosporioides*.", d.Causes)

	healthy, err := c.Details("Healthy")
	require.NoError(t, err)
	assert.Empty(t, healthy.Symptoms)
	assert.Empty(t, healthy.Causes)
	assert.Empty(t, healthy.Control)
}

func TestDetails_Missing(t *testing.T) {
	c := Default()

	_, err := c.Details("Cutting Weevil")
	assert.ErrorIs(t, err, ErrNoDetails)

	_, err = c.Details("Leaf Rust")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDetails)
}

func TestDetails_ReturnsCopy(t *testing.T) {
	c := Default()
	d, err := c.Details("Die Back")
	require.NoError(t, err)
	d.Impact = "changed"

	again, _ := c.Details("Die Back")
	assert.Equal(t, "Can kill branches and reduce yield.", again.Impact)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "diseases: []"},
		{"no label", "diseases:\n  - centroid: \"#000000\""},
		{"duplicate", "diseases:\n  - label: A\n    centroid: \"#000000\"\n  - label: A\n    centroid: \"#ffffff\""},
		{"bad color", "diseases:\n  - label: A\n    centroid: green"},
		{"bad yaml", "diseases: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
diseases:
  - label: Blight
    centroid: "#804020"
    details:
      description: d
      impact: i
      control: c
  - label: Healthy
    centroid: "#00ff00"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blight", "Healthy"}, c.Labels())

	rgb, err := c.Diseases[0].RGB()
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, rgb[0], 1e-9)
	assert.InDelta(t, 64.0/255, rgb[1], 1e-9)
	assert.InDelta(t, 32.0/255, rgb[2], 1e-9)

	def, err := Load("")
	require.NoError(t, err)
	assert.Len(t, def.Labels(), 8)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
