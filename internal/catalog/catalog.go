// Package catalog holds the disease labels known to the classifier and the
// descriptive details returned with a prediction.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leafscan/backend/internal/models"
)

//go:embed diseases.yaml
var defaultCatalog []byte

// ErrNoDetails is returned when a label exists but carries no details.
var ErrNoDetails = errors.New("no details for label")

// Entry is one disease class.
type Entry struct {
	Label    string                 `yaml:"label"`
	Centroid string                 `yaml:"centroid"`
	Details  *models.DiseaseDetails `yaml:"details,omitempty"`
}

// RGB returns the centroid as normalized [0,1] channels.
func (e Entry) RGB() ([3]float64, error) {
	return parseHexColor(e.Centroid)
}

// Catalog is an ordered list of disease classes.
type Catalog struct {
	Diseases []Entry `yaml:"diseases"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("built-in disease catalog: %v", err))
	}
	return c
}

// Load parses a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a catalog from an io.Reader.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Diseases) == 0 {
		return errors.New("catalog has no diseases")
	}
	seen := make(map[string]bool, len(c.Diseases))
	for i, e := range c.Diseases {
		if e.Label == "" {
			return fmt.Errorf("disease %d: empty label", i)
		}
		if seen[e.Label] {
			return fmt.Errorf("disease %q: duplicate label", e.Label)
		}
		seen[e.Label] = true
		if _, err := e.RGB(); err != nil {
			return fmt.Errorf("disease %q: %w", e.Label, err)
		}
	}
	return nil
}

// Labels returns the class labels in output order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.Diseases))
	for i, e := range c.Diseases {
		labels[i] = e.Label
	}
	return labels
}

// Details returns a copy of the details of label.
func (c *Catalog) Details(label string) (*models.DiseaseDetails, error) {
	for _, e := range c.Diseases {
		if e.Label != label {
			continue
		}
		if e.Details == nil {
			return nil, fmt.Errorf("%w %q", ErrNoDetails, label)
		}
		d := *e.Details
		return &d, nil
	}
	return nil, fmt.Errorf("unknown label %q", label)
}

func parseHexColor(s string) ([3]float64, error) {
	var rgb [3]float64
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return rgb, fmt.Errorf("invalid centroid color %q", s)
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return rgb, fmt.Errorf("invalid centroid color %q", s)
		}
		rgb[i] = float64(v) / 255
	}
	return rgb, nil
}
