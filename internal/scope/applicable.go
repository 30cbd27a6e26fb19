package scope

// Lookup resolves a syntax identifier to its definition.
type Lookup interface {
	ByPath(path string) (Syntax, bool)
}

// Checker decides whether buffers of a given syntax are observed.
type Checker struct {
	lookup    Lookup
	selectors []Selector
}

// NewChecker compiles activeScopes against the syntaxes in lookup.
// Blank selectors are ignored; with none left every check fails.
func NewChecker(lookup Lookup, activeScopes []string) *Checker {
	c := &Checker{lookup: lookup}
	for _, s := range activeScopes {
		sel := ParseSelector(s)
		if !sel.IsEmpty() {
			c.selectors = append(c.selectors, sel)
		}
	}
	return c
}

// Applicable returns true if the syntax identified by syntaxPath scores
// above zero against at least one active selector.
func (c *Checker) Applicable(syntaxPath string) bool {
	if c == nil || len(c.selectors) == 0 || c.lookup == nil {
		return false
	}

	syntax, ok := c.lookup.ByPath(syntaxPath)
	if !ok {
		return false
	}
	for _, sel := range c.selectors {
		if sel.Score(syntax.Scope) > 0 {
			return true
		}
	}
	return false
}

// Selectors returns the compiled active selectors.
func (c *Checker) Selectors() []Selector {
	out := make([]Selector, len(c.selectors))
	copy(out, c.selectors)
	return out
}
