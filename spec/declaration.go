package spec

import "strings"

// Declaration lists the symbols of a grammar up front. A grammar rejects any token that is not
// declared here.
type Declaration struct {
	Terminals    []string
	NonTerminals []string
	Start        string
}

// IsNonTerminalName reports whether a name follows the angle-bracket convention for non-terminals,
// like `<expr>`.
func IsNonTerminalName(text string) bool {
	return len(text) > 2 && strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">")
}

// InferDeclaration derives a declaration from the productions themselves. Every left-hand side and
// every angle-bracketed token is a non-terminal; the remaining tokens except `null` and `ε` are
// terminals. When start is empty, the left-hand side of the first production becomes the start
// symbol. Symbols are listed in order of first appearance.
func InferDeclaration(root *RootNode, start string) *Declaration {
	decl := &Declaration{
		Start: start,
	}
	if len(root.Productions) == 0 {
		return decl
	}
	if decl.Start == "" {
		decl.Start = root.Productions[0].LHS.Name
	}

	lhs := map[string]struct{}{}
	for _, prod := range root.Productions {
		lhs[prod.LHS.Name] = struct{}{}
	}

	known := map[string]struct{}{}
	for _, prod := range root.Productions {
		if _, ok := known[prod.LHS.Name]; !ok {
			known[prod.LHS.Name] = struct{}{}
			decl.NonTerminals = append(decl.NonTerminals, prod.LHS.Name)
		}
		for _, sym := range prod.RHS {
			if IsNullName(sym.Name) {
				continue
			}
			if _, ok := known[sym.Name]; ok {
				continue
			}
			known[sym.Name] = struct{}{}
			_, isLHS := lhs[sym.Name]
			if isLHS || IsNonTerminalName(sym.Name) {
				decl.NonTerminals = append(decl.NonTerminals, sym.Name)
			} else {
				decl.Terminals = append(decl.Terminals, sym.Name)
			}
		}
	}

	return decl
}
