// Package autoformat decides whether a pending keystroke rewrites typed
// shorthand in the current block, and handles the editor's key commands.
//
// The engine keeps no per-document state. Each call is a pure decision over
// the snapshot it is given.
package autoformat

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/scribe/internal/document"
)

// Outcome tags a Decision.
type Outcome uint8

const (
	// NotHandled leaves the keystroke to the caller.
	NotHandled Outcome = iota
	// Handled means the engine consumed the keystroke and produced a new snapshot.
	Handled
)

func (o Outcome) String() string {
	if o == Handled {
		return "handled"
	}
	return "not-handled"
}

// Decision is the result of offering a keystroke or command to the engine.
// Snapshot is only meaningful when Outcome is Handled.
type Decision struct {
	Outcome  Outcome
	Snapshot document.Snapshot
}

// IsHandled reports whether the engine claimed the input.
func (d Decision) IsHandled() bool { return d.Outcome == Handled }

func handled(s document.Snapshot) Decision {
	return Decision{Outcome: Handled, Snapshot: s}
}

var notHandled = Decision{Outcome: NotHandled}

// Engine evaluates the shorthand trigger table.
type Engine struct {
	styles   document.StyleMap
	triggers []Trigger
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTriggers replaces the default trigger table.
func WithTriggers(triggers []Trigger) Option {
	return func(e *Engine) { e.triggers = slices.Clone(triggers) }
}

// WithLogger sets the logger used to report internal failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New builds an engine. Every style a trigger may apply must be present in
// styles.
func New(styles document.StyleMap, opts ...Option) (*Engine, error) {
	if err := styles.Validate(); err != nil {
		return nil, fmt.Errorf("autoformat: %w", err)
	}
	e := &Engine{
		styles:   styles,
		triggers: DefaultTriggers(),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	for _, t := range e.triggers {
		if err := t.validate(styles); err != nil {
			return nil, err
		}
	}
	if err := checkShadowing(e.triggers); err != nil {
		return nil, err
	}
	return e, nil
}

// Triggers returns a copy of the engine's trigger table in evaluation order.
func (e *Engine) Triggers() []Trigger {
	return slices.Clone(e.triggers)
}

// HandleBeforeInput inspects the block holding the selection start before
// chars is inserted. When chars is a single space and the block text matches
// a trigger, the marker is stripped, the trigger's toggle is applied and the
// space is consumed. Otherwise the decision is NotHandled and the caller
// inserts chars itself.
func (e *Engine) HandleBeforeInput(chars string, s document.Snapshot) Decision {
	if chars != " " {
		return notHandled
	}
	block := s.StartBlock()
	for _, t := range e.triggers {
		if !t.matches(block.Text) {
			continue
		}
		next, err := e.apply(t, block, s)
		if err != nil {
			e.logger.Error("autoformat: apply trigger",
				slog.String("marker", t.Marker),
				slog.String("block", block.Key),
				slog.String("error", err.Error()))
			return notHandled
		}
		return handled(next)
	}
	return notHandled
}

func (e *Engine) apply(t Trigger, block document.Block, s document.Snapshot) (document.Snapshot, error) {
	n := block.Len()
	m := len([]rune(t.Marker))

	var next document.Snapshot
	if t.Anchor == Suffix {
		doc, err := document.ReplaceTextInRange(s.Document(), document.Span(block.Key, n-m, n), "")
		if err != nil {
			return document.Snapshot{}, err
		}
		if next, err = document.ForceSelection(doc, document.Caret(block.Key, n-m)); err != nil {
			return document.Snapshot{}, err
		}
	} else {
		rest := string([]rune(block.Text)[m:])
		doc, err := document.ReplaceTextInRange(s.Document(), document.Span(block.Key, 0, n), rest)
		if err != nil {
			return document.Snapshot{}, err
		}
		if next, err = document.ForceSelection(doc, document.Span(block.Key, 0, n-m)); err != nil {
			return document.Snapshot{}, err
		}
	}

	if t.BlockType != "" {
		return document.ToggleBlockType(next, t.BlockType), nil
	}
	return document.ToggleInlineStyle(next, t.Style), nil
}
