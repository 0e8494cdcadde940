// Package token implements the path lexer and token model (C1): parsing a
// dotted/bracketed path string such as "db.servers[2].host" into a sequence
// of Object/Array tokens, and rendering a token sequence back to its
// canonical string form.
package token

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikalinin1/gestalt/result"
)

// Kind distinguishes the two token variants.
type Kind int

const (
	KindObject Kind = iota
	KindArray
)

// Token is either Object(name) or Array(index).
type Token struct {
	Kind  Kind
	Name  string
	Index int
}

// Object builds an Object(name) token.
func Object(name string) Token { return Token{Kind: KindObject, Name: name} }

// Array builds an Array(index) token.
func Array(index int) Token { return Token{Kind: KindArray, Index: index} }

func (t Token) String() string {
	if t.Kind == KindArray {
		return fmt.Sprintf("[%d]", t.Index)
	}
	return t.Name
}

// Render renders a token sequence back to its canonical string form: `.`
// joins object tokens, `[i]` is appended directly to the preceding segment
// for array tokens.
func Render(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		switch t.Kind {
		case KindArray:
			b.WriteString(fmt.Sprintf("[%d]", t.Index))
		case KindObject:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(t.Name)
		}
	}
	return b.String()
}

// Tokenize splits path on "." at top level, and within each segment
// recognizes "name[i]" (possibly with more than one bracket group) producing
// an Object("name") followed by one Array(i) token per bracket pair.
// context is the surrounding config path this token is being resolved for
// and is used only to annotate errors.
func Tokenize(path, context string) result.R[[]Token] {
	if path == "" {
		return result.Invalid[[]Token](tokenizeErr(context, "empty path"))
	}

	var tokens []Token
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return result.Invalid[[]Token](tokenizeErr(context, "empty path segment in "+path))
		}
		segTokens, err := tokenizeSegment(segment)
		if err != "" {
			return result.Invalid[[]Token](tokenizeErr(context, err))
		}
		tokens = append(tokens, segTokens...)
	}
	return result.Valid(tokens)
}

func tokenizeSegment(segment string) ([]Token, string) {
	bracket := strings.IndexByte(segment, '[')
	if bracket == -1 {
		if strings.ContainsAny(segment, "]") {
			return nil, "unmatched bracket in segment " + segment
		}
		return []Token{Object(segment)}, ""
	}

	name := segment[:bracket]
	if name == "" {
		return nil, "missing object name before index in segment " + segment
	}
	tokens := []Token{Object(name)}

	rest := segment[bracket:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil, "unmatched bracket in segment " + segment
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return nil, "unmatched bracket in segment " + segment
		}
		idxStr := rest[1:end]
		idx, convErr := strconv.Atoi(idxStr)
		if convErr != nil {
			return nil, fmt.Sprintf("non-integer index %q in segment %s", idxStr, segment)
		}
		if idx < 0 {
			return nil, fmt.Sprintf("negative index %d in segment %s", idx, segment)
		}
		tokens = append(tokens, Array(idx))
		rest = rest[end+1:]
	}
	return tokens, ""
}

func tokenizeErr(context, msg string) result.ValidationError {
	return result.ValidationError{
		Level:   result.LevelError,
		Kind:    "FailedToTokenize",
		Path:    context,
		Message: msg,
	}
}
