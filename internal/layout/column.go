package layout

import "github.com/soltixdb/roly/internal/interp"

// Column is the logical description of one column: how its bytes are
// interpreted, plus an optional title. An empty title means none.
type Column struct {
	Interpretation interp.Interpretation
	Title          string
}

// NewColumn creates a column
func NewColumn(desc interp.Interpretation, title string) (Column, error) {
	if desc == nil {
		return Column{}, layoutErrorf("column", "interpretation is required")
	}
	return Column{Interpretation: desc, Title: title}, nil
}

// Equal reports whether both columns interpret bytes the same way and
// carry the same title
func (c Column) Equal(o Column) bool {
	return c.Title == o.Title && interp.Equal(c.Interpretation, o.Interpretation)
}
