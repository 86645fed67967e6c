package document

import "fmt"

// StyleAttrs holds the presentation attributes of one inline style.
type StyleAttrs struct {
	Color           string `yaml:"color,omitempty" json:"color,omitempty"`
	BackgroundColor string `yaml:"background_color,omitempty" json:"backgroundColor,omitempty"`
	FontWeight      string `yaml:"font_weight,omitempty" json:"fontWeight,omitempty"`
	FontStyle       string `yaml:"font_style,omitempty" json:"fontStyle,omitempty"`
	TextDecoration  string `yaml:"text_decoration,omitempty" json:"textDecoration,omitempty"`
	FontFamily      string `yaml:"font_family,omitempty" json:"fontFamily,omitempty"`
}

// StyleMap maps style names to presentation attributes. Its key set is the
// set of styles an autoformat engine may apply.
type StyleMap map[Style]StyleAttrs

// DefaultStyleMap returns presentation attributes for every known style.
func DefaultStyleMap() StyleMap {
	return StyleMap{
		Bold:          {FontWeight: "bold"},
		Italic:        {FontStyle: "italic"},
		Underline:     {TextDecoration: "underline"},
		Code:          {FontFamily: "monospace", BackgroundColor: "rgba(0, 0, 0, 0.05)"},
		Strikethrough: {TextDecoration: "line-through"},
		Red:           {Color: "red"},
	}
}

// Has reports whether the map carries style.
func (m StyleMap) Has(style Style) bool {
	_, ok := m[style]
	return ok
}

// Validate rejects style names outside the closed style set.
func (m StyleMap) Validate() error {
	for st := range m {
		if !st.Valid() {
			return fmt.Errorf("document: style map: unknown inline style %q", st)
		}
	}
	return nil
}
