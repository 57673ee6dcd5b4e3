package solver

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// NormalizeIdent canonicalizes an identifier or type-constructor name
// before it is stored in a Content or Term (a Flex's Name, an Alias's
// AliasName, an App1's Head, a record field key). Two names that the
// elaborator spells differently but that denote the same identifier —
// a stray BOM, or the same glyph under a different Unicode
// normalization form — must compare equal once inside the graph, or
// unification silently fails to unify what the programmer wrote as one
// name.
func NormalizeIdent(name string) string {
	b := bytes.TrimPrefix([]byte(name), bomUTF8)
	if !norm.NFC.IsNormal(b) {
		b = norm.NFC.Bytes(b)
	}
	return string(b)
}
