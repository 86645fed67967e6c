package autoformat

import (
	"fmt"
	"strings"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/document"
)

// Anchor says where in the block text a trigger marker must appear.
type Anchor uint8

const (
	// Prefix markers must start at offset 0 of the block.
	Prefix Anchor = iota
	// Suffix markers must end the block text.
	Suffix
)

func (a Anchor) String() string {
	if a == Suffix {
		return "suffix"
	}
	return "prefix"
}

// Trigger is one row of the shorthand table. Exactly one of BlockType and
// Style is set.
type Trigger struct {
	Marker    string
	Anchor    Anchor
	BlockType document.BlockType
	Style     document.Style
}

// DefaultTriggers returns the shorthand table in evaluation order. Longer
// markers come before shorter ones that are textual prefixes of them.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{Marker: "#", Anchor: Prefix, BlockType: document.HeaderOne},
		{Marker: "***", Anchor: Prefix, Style: document.Underline},
		{Marker: "**", Anchor: Prefix, Style: document.Red},
		{Marker: "*", Anchor: Prefix, Style: document.Bold},
		{Marker: "```", Anchor: Suffix, BlockType: document.CodeBlock},
	}
}

// Describe renders the trigger as a short human-readable rule.
func (t Trigger) Describe() string {
	where := "starts with"
	if t.Anchor == Suffix {
		where = "ends with"
	}
	action := "toggle inline style " + string(t.Style)
	if t.BlockType != "" {
		action = "toggle block type " + string(t.BlockType)
	}
	return fmt.Sprintf("block %s %q then space: strip it, %s", where, t.Marker, action)
}

func (t Trigger) matches(text string) bool {
	if t.Anchor == Suffix {
		return strings.HasSuffix(text, t.Marker)
	}
	return strings.HasPrefix(text, t.Marker)
}

func (t Trigger) validate(styles document.StyleMap) error {
	if t.Marker == "" {
		return fmt.Errorf("autoformat: trigger has empty marker")
	}
	switch {
	case t.BlockType != "" && t.Style != "":
		return fmt.Errorf("autoformat: trigger %q sets both a block type and a style", t.Marker)
	case t.BlockType != "":
		if !t.BlockType.Valid() {
			return fmt.Errorf("autoformat: trigger %q: unknown block type %q", t.Marker, t.BlockType)
		}
	case t.Style != "":
		if !t.Style.Valid() || !styles.Has(t.Style) {
			return fmt.Errorf("autoformat: trigger %q: style %q: %w", t.Marker, t.Style, apperr.ErrInvalidStyle)
		}
	default:
		return fmt.Errorf("autoformat: trigger %q has no action", t.Marker)
	}
	return nil
}

// checkShadowing rejects a table in which an earlier trigger matches every
// text a later one matches, leaving the later one unreachable.
func checkShadowing(triggers []Trigger) error {
	for j, later := range triggers {
		for _, earlier := range triggers[:j] {
			if earlier.Anchor != later.Anchor {
				continue
			}
			shadowed := strings.HasPrefix(later.Marker, earlier.Marker)
			if later.Anchor == Suffix {
				shadowed = strings.HasSuffix(later.Marker, earlier.Marker)
			}
			if shadowed {
				return fmt.Errorf("autoformat: %s trigger %q is shadowed by earlier %q", later.Anchor, later.Marker, earlier.Marker)
			}
		}
	}
	return nil
}
