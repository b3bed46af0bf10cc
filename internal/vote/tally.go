// Package vote keeps the persistent kinoko/takenoko tally.
package vote

import (
	"errors"
	"fmt"
)

// Faction is a side a visitor can vote for.
type Faction string

const (
	Kinoko   Faction = "kinoko"
	Takenoko Faction = "takenoko"
)

var (
	// ErrInvalidFaction is returned for votes naming anything but the two factions.
	ErrInvalidFaction = errors.New("vote: invalid faction")
	// ErrNoTally is returned by a Store that holds no usable state.
	ErrNoTally = errors.New("vote: no stored tally")
)

// ParseFaction validates s.
func ParseFaction(s string) (Faction, error) {
	switch f := Faction(s); f {
	case Kinoko, Takenoko:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFaction, s)
}

// Tally is the vote count of both factions.
type Tally struct {
	Kinoko   int `json:"kinoko"`
	Takenoko int `json:"takenoko"`
}

// Count returns the votes for f.
func (t Tally) Count(f Faction) int {
	switch f {
	case Kinoko:
		return t.Kinoko
	case Takenoko:
		return t.Takenoko
	}
	return 0
}

// Valid reports whether both counts are non-negative.
func (t Tally) Valid() bool {
	return t.Kinoko >= 0 && t.Takenoko >= 0
}

func (t Tally) increment(f Faction) Tally {
	switch f {
	case Kinoko:
		t.Kinoko++
	case Takenoko:
		t.Takenoko++
	}
	return t
}
