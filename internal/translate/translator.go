// Package translate sends batches of subtitle cues to a hosted
// text-generation endpoint and maps the reply back onto the cues, keeping
// the original text for anything the reply does not address.
package translate

import (
	"context"

	"github.com/vaibh/v2srt/internal/subtitle"
)

// Mode selects what happens to a cue when its translation arrives.
type Mode string

const (
	// ModeReplace swaps the original text for the translation.
	ModeReplace Mode = "replace"
	// ModeAppend keeps the original and adds the translation below it,
	// producing a bilingual cue.
	ModeAppend Mode = "append"
)

// Valid reports whether m is a known output mode.
func (m Mode) Valid() bool {
	return m == ModeReplace || m == ModeAppend
}

// BatchSize bounds how many cues go into a single translation call, keeping
// prompts small and index references short-lived.
const BatchSize = 50

// Translator translates one batch of cues in place, keyed by cue index.
type Translator interface {
	TranslateBatch(ctx context.Context, entries map[int]*subtitle.Entry) error
}

// Noop leaves every cue untouched. It stands in for the real translator
// when no API credential is configured, so callers never branch on a nil
// client.
type Noop struct{}

// TranslateBatch does nothing.
func (Noop) TranslateBatch(ctx context.Context, entries map[int]*subtitle.Entry) error {
	return nil
}
