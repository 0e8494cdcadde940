package postprocess

import (
	"regexp"
	"sync/atomic"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
)

// SecretChecker decides whether a leaf at path should be wrapped as a
// temporary (access-counted) secret.
type SecretChecker interface {
	IsSecret(path string, n *node.Leaf) bool
	AccessLimit() int
}

// patternSecretChecker is the default checker, adapting the teacher's
// credential-pattern regex set (originally used to scrub log lines in
// health/status.go) into a config-path/value secret detector.
type patternSecretChecker struct {
	pathPattern  *regexp.Regexp
	valuePattern *regexp.Regexp
	limit        int
}

// NewPatternSecretChecker builds a checker matching a leaf as secret when
// either its path or its value looks like a credential: keys containing
// password/secret/token/apikey/credential, or values that look like bearer
// tokens or connection strings with embedded credentials.
func NewPatternSecretChecker(accessLimit int) SecretChecker {
	return &patternSecretChecker{
		pathPattern:  regexp.MustCompile(`(?i)(password|secret|token|api[_-]?key|credential|private[_-]?key)`),
		valuePattern: regexp.MustCompile(`(?i)^(bearer\s+|[a-z]+://[^/]*:[^/@]*@)`),
		limit:        accessLimit,
	}
}

func (p *patternSecretChecker) AccessLimit() int { return p.limit }

func (p *patternSecretChecker) IsSecret(path string, n *node.Leaf) bool {
	if p.pathPattern.MatchString(path) {
		return true
	}
	if n.Value != nil && p.valuePattern.MatchString(*n.Value) {
		return true
	}
	if n.Meta != nil {
		if _, ok := n.Meta["isSecret"]; ok {
			return true
		}
	}
	return false
}

// TemporaryLeaf is an access-counted decorator over a Leaf's value: it
// returns the original value for up to N reads, then permanently returns
// empty and drops its inner reference so the plaintext can be reclaimed.
// It implements node.LeafSource directly, so its budget is shared across
// every getConfig call against this generation rather than being collapsed
// into a single read at generation-build time — grounded directly on
// TemporaryLeafNode.java, whose getValue() is likewise called once per
// read, not once per node construction.
type TemporaryLeaf struct {
	meta      map[string][]node.MetaValue
	remaining int32
	inner     *string
}

// NewTemporaryLeaf wraps value with an access budget of limit reads.
func NewTemporaryLeaf(value string, limit int) *TemporaryLeaf {
	v := value
	return &TemporaryLeaf{
		remaining: int32(limit),
		inner:     &v,
		meta:      map[string][]node.MetaValue{"isSecret": {{Kind: "isSecret", Value: "true"}}},
	}
}

func (t *TemporaryLeaf) Variant() node.Variant                 { return node.VariantLeaf }
func (t *TemporaryLeaf) Metadata() map[string][]node.MetaValue { return t.meta }

// ReadLeafValue consumes one access; once the budget is exhausted it drops
// the inner reference and every subsequent call returns ("", false).
func (t *TemporaryLeaf) ReadLeafValue() (string, bool) {
	for {
		cur := atomic.LoadInt32(&t.remaining)
		if cur <= 0 {
			t.inner = nil
			return "", false
		}
		if atomic.CompareAndSwapInt32(&t.remaining, cur, cur-1) {
			if cur == 1 {
				v := *t.inner
				t.inner = nil
				return v, true
			}
			return *t.inner, true
		}
	}
}

// TemporarySecretProcessor wraps leaves matching checker's rules in a
// TemporaryLeaf at generation-build time. Grounded directly on
// TemporarySecretConfigNodeProcessor.java's priority-200 applyConfig/process
// pair.
type TemporarySecretProcessor struct {
	Checker SecretChecker
}

func (TemporarySecretProcessor) Name() string  { return "temporary-secret" }
func (TemporarySecretProcessor) Priority() int { return 200 }

func (p TemporarySecretProcessor) Process(path string, n node.Node) result.R[node.Node] {
	leaf, ok := n.(*node.Leaf)
	if !ok || p.Checker == nil || !p.Checker.IsSecret(path, leaf) {
		return result.Valid(n)
	}
	if leaf.Value == nil {
		return result.Valid(n)
	}
	return result.Valid[node.Node](NewTemporaryLeaf(*leaf.Value, p.Checker.AccessLimit()))
}
