package scope

import "strings"

// Selector is a compiled scope selector.
type Selector struct {
	source string
	alts   []alternative
}

type alternative struct {
	include []element
	exclude [][]element
}

// element is one dot-separated scope name, split into atoms.
type element []string

// ParseSelector compiles a selector string. Blank alternatives are
// dropped, so an empty string never matches anything.
func ParseSelector(s string) Selector {
	sel := Selector{source: s}

	for _, raw := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		parts := strings.Split(raw, " - ")
		include := parsePath(parts[0])
		if len(include) == 0 {
			continue
		}
		alt := alternative{include: include}
		for _, ex := range parts[1:] {
			if path := parsePath(ex); len(path) > 0 {
				alt.exclude = append(alt.exclude, path)
			}
		}
		sel.alts = append(sel.alts, alt)
	}
	return sel
}

func parsePath(s string) []element {
	fields := strings.Fields(s)
	path := make([]element, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		path = append(path, element(strings.Split(f, ".")))
	}
	return path
}

// String returns the selector source text.
func (s Selector) String() string {
	return s.source
}

// IsEmpty returns true if the selector has no usable alternative.
func (s Selector) IsEmpty() bool {
	return len(s.alts) == 0
}

// Score rates how well scope matches the selector. Zero means no match;
// deeper and more specific matches score higher. scope may be a single
// scope name or a space-separated scope stack, outermost first.
func (s Selector) Score(scope string) int {
	stack := parseStack(scope)
	if len(stack) == 0 {
		return 0
	}

	best := 0
	for _, alt := range s.alts {
		score := scorePath(alt.include, stack)
		if score == 0 {
			continue
		}
		excluded := false
		for _, ex := range alt.exclude {
			if scorePath(ex, stack) > 0 {
				excluded = true
				break
			}
		}
		if !excluded && score > best {
			best = score
		}
	}
	return best
}

// Matches returns true if Score(scope) > 0.
func (s Selector) Matches(scope string) bool {
	return s.Score(scope) > 0
}

// Score is a convenience for ParseSelector(selector).Score(scope).
func Score(scope, selector string) int {
	return ParseSelector(selector).Score(scope)
}

func parseStack(scope string) [][]string {
	fields := strings.Fields(scope)
	stack := make([][]string, 0, len(fields))
	for _, f := range fields {
		stack = append(stack, strings.Split(f, "."))
	}
	return stack
}

// scorePath matches path elements, in order, against the scope stack.
// Elements need not be adjacent. Each matched element contributes its
// atom count weighted by the stack depth it matched at.
func scorePath(path []element, stack [][]string) int {
	score := 0
	depth := 0
	for _, el := range path {
		matched := false
		for depth < len(stack) {
			if atomsMatch(el, stack[depth]) {
				score += len(el) << (3 * depth)
				matched = true
				depth++
				break
			}
			depth++
		}
		if !matched {
			return 0
		}
	}
	return score
}

// atomsMatch returns true if el is an atom-wise prefix of scope.
func atomsMatch(el element, scope []string) bool {
	if len(el) > len(scope) {
		return false
	}
	for i, atom := range el {
		if atom != "*" && atom != scope[i] {
			return false
		}
	}
	return true
}
