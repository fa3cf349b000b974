// Package lexicon loads domain vocabulary that extends the VADER lexicon.
package lexicon

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxValence bounds overlay valences to the range VADER's own lexicon uses.
const MaxValence = 4.0

var ErrInvalidOverlay = errors.New("invalid lexicon overlay")

// Overlay is a set of word valences merged over the base lexicon.
type Overlay struct {
	Domain   string             `yaml:"domain"`
	Valences map[string]float64 `yaml:"valences"`
}

// LoadOverlay reads and validates a YAML overlay file.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon overlay %s: %w", path, err)
	}
	return ParseOverlay(data)
}

func ParseOverlay(data []byte) (*Overlay, error) {
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOverlay, err)
	}
	if err := o.normalize(); err != nil {
		return nil, err
	}
	return &o, nil
}

// normalize lowercases entries and rejects empty words or out of range valences.
func (o *Overlay) normalize() error {
	normalized := make(map[string]float64, len(o.Valences))
	for word, valence := range o.Valences {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			return fmt.Errorf("%w: empty word", ErrInvalidOverlay)
		}
		if math.IsNaN(valence) || math.Abs(valence) > MaxValence {
			return fmt.Errorf("%w: valence %v for %q outside [-%v, %v]",
				ErrInvalidOverlay, valence, word, MaxValence, MaxValence)
		}
		normalized[key] = valence
	}
	o.Valences = normalized
	return nil
}

func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Valences)
}
