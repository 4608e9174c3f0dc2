// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsm holds small, strict transition tables. Unknown transitions are
// errors; tables are immutable and safe for concurrent use.
package fsm

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for an event that has no edge from the
// current state.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition describes a single edge.
type Transition[S ~string, E ~string] struct {
	From  S
	Event E
	To    S
}

// Table maps (state, event) to the next state.
type Table[S ~string, E ~string] struct {
	index map[string]S
}

// New builds a table, rejecting duplicate edges.
func New[S ~string, E ~string](transitions []Transition[S, E]) (*Table[S, E], error) {
	idx := make(map[string]S, len(transitions))
	for _, t := range transitions {
		k := key(t.From, t.Event)
		if _, exists := idx[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Event)
		}
		idx[k] = t.To
	}
	return &Table[S, E]{index: idx}, nil
}

// MustNew is New for package-level tables.
func MustNew[S ~string, E ~string](transitions []Transition[S, E]) *Table[S, E] {
	t, err := New(transitions)
	if err != nil {
		panic(err)
	}
	return t
}

// Next returns the state reached from `from` on event.
func (t *Table[S, E]) Next(from S, event E) (S, error) {
	to, ok := t.index[key(from, event)]
	if !ok {
		return from, fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, from, event)
	}
	return to, nil
}

// Can reports whether event is legal from `from`.
func (t *Table[S, E]) Can(from S, event E) bool {
	_, ok := t.index[key(from, event)]
	return ok
}

func key[S ~string, E ~string](from S, event E) string {
	return string(from) + "|" + string(event)
}
