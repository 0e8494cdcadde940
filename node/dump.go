package node

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders the tree rooted at n as an indented path/value listing,
// primarily for debug logging. Any leaf tagged isSecret (directly or via
// TemporarySecretProcessor) is shown as "***" instead of its
// real value — even a leaf whose access budget hasn't run out yet — so a
// tree dump can never be the channel that leaks a credential.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, "", n)
	return b.String()
}

func dump(b *strings.Builder, path string, n Node) {
	if n == nil {
		fmt.Fprintf(b, "%s = <nil>\n", path)
		return
	}
	switch v := n.(type) {
	case *Array:
		for i, e := range v.Elements {
			dump(b, fmt.Sprintf("%s[%d]", path, i), e)
		}
	case *Map:
		keys := append([]string(nil), v.Keys()...)
		sort.Strings(keys)
		for _, k := range keys {
			child, _ := v.Get(k)
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			dump(b, childPath, child)
		}
	default:
		fmt.Fprintf(b, "%s = %s\n", path, leafDisplay(n))
	}
}

func leafDisplay(n Node) string {
	if isSecretNode(n) {
		return "***"
	}
	if src, ok := n.(LeafSource); ok {
		if v, ok := src.ReadLeafValue(); ok {
			return v
		}
		return "<empty>"
	}
	if l, ok := n.(*Leaf); ok && l.Value != nil {
		return *l.Value
	}
	return "<empty>"
}

func isSecretNode(n Node) bool {
	if _, ok := n.(*Leaf); !ok {
		if _, ok := n.(LeafSource); ok {
			return true
		}
	}
	meta := n.Metadata()
	_, tagged := meta["isSecret"]
	return tagged
}
