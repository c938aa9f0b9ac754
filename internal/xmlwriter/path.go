package xmlwriter

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// PATH SELECTION
// =============================================================================
//
// Select understands the small XPath subset needed to address a node in a
// generated document:
//
//   /Document/CstmrDrctDbtInitn/GrpHdr     absolute child steps
//   //PmtInf                               descendant steps
//   GrpHdr/InitgPty                        relative to the root element
//   *                                      any element name
//   PmtInf[2]                              1-based position among matches
//   PmtInf[PmtInfId='ABC']                 child element text equality
//   InstdAmt[@Ccy='EUR']                   attribute equality
//
// Names match the local element name; namespaces are not considered.
//
// =============================================================================

type axis int

const (
	axisChild axis = iota
	axisDescendant
)

type predicate struct {
	// position is set for [n] predicates.
	position int

	// child or attr names the node compared against value.
	child string
	attr  string
	value string
}

type step struct {
	axis       axis
	name       string
	predicates []predicate
}

// Path is a compiled path expression.
type Path struct {
	expr     string
	absolute bool
	steps    []step
}

// Compile parses a path expression.
func Compile(expr string) (*Path, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty path expression")
	}

	path := &Path{expr: expr, absolute: strings.HasPrefix(expr, "/")}

	rest := expr
	first := true
	for len(rest) > 0 || first {
		var s step

		switch {
		case strings.HasPrefix(rest, "//"):
			s.axis = axisDescendant
			rest = rest[2:]
		case strings.HasPrefix(rest, "/"):
			s.axis = axisChild
			rest = rest[1:]
		case first:
			s.axis = axisChild
		default:
			return nil, fmt.Errorf("path %q: unexpected %q", expr, rest)
		}
		first = false

		end := strings.IndexAny(rest, "/[")
		if end < 0 {
			end = len(rest)
		}
		s.name = rest[:end]
		rest = rest[end:]

		if s.name == "" {
			return nil, fmt.Errorf("path %q: empty step", expr)
		}
		if !ValidName(s.name) {
			return nil, fmt.Errorf("path %q: invalid step name %q", expr, s.name)
		}

		for strings.HasPrefix(rest, "[") {
			closing := closingBracket(rest)
			if closing < 0 {
				return nil, fmt.Errorf("path %q: unterminated predicate", expr)
			}

			pred, err := parsePredicate(rest[1:closing])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", expr, err)
			}

			s.predicates = append(s.predicates, pred)
			rest = rest[closing+1:]
		}

		path.steps = append(path.steps, s)
	}

	return path, nil
}

// MustCompile is like Compile but panics on a malformed expression.
func MustCompile(expr string) *Path {
	path, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return path
}

// String returns the source expression.
func (p *Path) String() string {
	return p.expr
}

// Select evaluates the path against the tree rooted at root and returns the
// matching elements in document order without duplicates.
func (p *Path) Select(root *Element) []*Element {
	if root == nil {
		return nil
	}

	var contexts []*Element
	if p.absolute {
		// The document node has the root element as its only child.
		contexts = []*Element{{Children: []*Element{root}}}
	} else {
		contexts = []*Element{root}
	}

	for _, s := range p.steps {
		seen := make(map[*Element]bool)
		var next []*Element

		for _, ctx := range contexts {
			for _, match := range s.apply(ctx) {
				if !seen[match] {
					seen[match] = true
					next = append(next, match)
				}
			}
		}

		contexts = next
		if len(contexts) == 0 {
			return nil
		}
	}

	return contexts
}

// Select compiles expr and evaluates it against root.
func Select(root *Element, expr string) ([]*Element, error) {
	path, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return path.Select(root), nil
}

// apply returns the nodes reached from ctx by one step. Positions count
// among the matching children of each parent, as in XPath.
func (s step) apply(ctx *Element) []*Element {
	parents := []*Element{ctx}
	if s.axis == axisDescendant {
		parents = nil
		ctx.Walk(func(el *Element) bool {
			parents = append(parents, el)
			return true
		})
	}

	var out []*Element
	for _, parent := range parents {
		var matches []*Element
		for _, child := range parent.Children {
			if s.name == "*" || child.Name == s.name {
				matches = append(matches, child)
			}
		}

		for _, pred := range s.predicates {
			matches = pred.filter(matches)
		}

		out = append(out, matches...)
	}

	return out
}

func (p predicate) filter(nodes []*Element) []*Element {
	if p.position > 0 {
		if p.position > len(nodes) {
			return nil
		}
		return nodes[p.position-1 : p.position]
	}

	var kept []*Element
	for _, node := range nodes {
		if p.attr != "" {
			if value, ok := node.Attr(p.attr); ok && value == p.value {
				kept = append(kept, node)
			}
			continue
		}

		for _, child := range node.Children {
			if child.Name == p.child && child.Value == p.value {
				kept = append(kept, node)
				break
			}
		}
	}

	return kept
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parsePredicate(body string) (predicate, error) {
	body = strings.TrimSpace(body)

	if n, err := strconv.Atoi(body); err == nil {
		if n < 1 {
			return predicate{}, fmt.Errorf("position %d must be at least 1", n)
		}
		return predicate{position: n}, nil
	}

	name, quoted, ok := strings.Cut(body, "=")
	if !ok {
		return predicate{}, fmt.Errorf("unsupported predicate [%s]", body)
	}

	name = strings.TrimSpace(name)
	value, err := unquote(strings.TrimSpace(quoted))
	if err != nil {
		return predicate{}, err
	}

	if attr, isAttr := strings.CutPrefix(name, "@"); isAttr {
		if !ValidName(attr) {
			return predicate{}, fmt.Errorf("invalid attribute name %q", attr)
		}
		return predicate{attr: attr, value: value}, nil
	}

	if !ValidName(name) || name == "*" {
		return predicate{}, fmt.Errorf("invalid element name %q", name)
	}
	return predicate{child: name, value: value}, nil
}

func unquote(s string) (string, error) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], nil
	}
	return "", fmt.Errorf("predicate value %s must be quoted", s)
}

// closingBracket returns the index of the "]" closing the predicate that
// opens at s[0], skipping brackets inside quoted values.
func closingBracket(s string) int {
	var quote byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

// ValidName reports whether name is usable as an element or attribute name
// in a path or a generated document. "*" is accepted as a wildcard.
func ValidName(name string) bool {
	if name == "*" {
		return true
	}
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.' || r == ':'):
		default:
			return false
		}
	}
	return name != ""
}
