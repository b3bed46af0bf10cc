// Package persona holds the rhetorical characters each side can field.
package persona

import (
	_ "embed"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Side is one of the two debate factions.
type Side string

const (
	// Takenoko argues first.
	Takenoko Side = "takenoko"
	Kinoko   Side = "kinoko"
)

// Sides lists both factions in speaking order.
var Sides = [2]Side{Takenoko, Kinoko}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Takenoko {
		return Kinoko
	}
	return Takenoko
}

// Label is the human-readable faction name.
func (s Side) Label() string {
	switch s {
	case Takenoko:
		return "たけのこ派"
	case Kinoko:
		return "きのこ派"
	}
	return string(s)
}

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == Takenoko || s == Kinoko
}

// ErrUnknownSide is returned when a lookup names a side the store does not know.
var ErrUnknownSide = errors.New("persona: unknown side")

// Persona is a named instruction template for one side.
type Persona struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Instruction string `yaml:"instruction"`
}

// Store maps each side to its ordered personas. It is immutable after loading.
type Store struct {
	sides map[Side][]Persona
}

//go:embed personas.yaml
var embedded []byte

// Default returns the built-in persona set.
func Default() *Store {
	s, err := Parse(bytes.NewReader(embedded))
	if err != nil {
		panic(fmt.Sprintf("persona: embedded set is invalid: %v", err))
	}
	return s
}

// LoadFile reads a persona set from a YAML file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("persona: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML document keyed by side.
func Parse(r io.Reader) (*Store, error) {
	var raw map[Side][]Persona
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("persona: decoding: %w", err)
	}
	return New(raw)
}

// New validates sides and builds a Store. Both sides need at least one persona,
// ids must be unique within a side and every persona needs an instruction.
func New(sides map[Side][]Persona) (*Store, error) {
	s := &Store{sides: make(map[Side][]Persona, len(Sides))}
	for side, list := range sides {
		if !side.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
		}
		list = append([]Persona(nil), list...)
		seen := make(map[string]bool, len(list))
		for i, p := range list {
			if p.ID == "" {
				return nil, fmt.Errorf("persona: %s[%d] has no id", side, i)
			}
			if seen[p.ID] {
				return nil, fmt.Errorf("persona: duplicate id %q for %s", p.ID, side)
			}
			seen[p.ID] = true
			if strings.TrimSpace(p.Instruction) == "" {
				return nil, fmt.Errorf("persona: %s/%s has no instruction", side, p.ID)
			}
			if p.Label == "" {
				list[i].Label = p.ID
			}
		}
		s.sides[side] = list
	}
	for _, side := range Sides {
		if len(s.sides[side]) == 0 {
			return nil, fmt.Errorf("persona: %s has no personas", side)
		}
	}
	return s, nil
}

// List returns a copy of side's personas in display order.
func (s *Store) List(side Side) []Persona {
	return append([]Persona(nil), s.sides[side]...)
}

// Resolve looks up id for side. An empty or unknown id falls back to the side's first persona.
func (s *Store) Resolve(side Side, id string) (Persona, error) {
	list, ok := s.sides[side]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return list[0], nil
}

// Lookup is Resolve without the fallback.
func (s *Store) Lookup(side Side, id string) (Persona, bool) {
	for _, p := range s.sides[side] {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}
