package postprocess

import (
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/ikalinin1/gestalt/node"
	"github.com/ikalinin1/gestalt/result"
	"github.com/ikalinin1/gestalt/token"
)

// Transform resolves a substitution key against some backing store. The
// `env`/`sys`/`node` names are shipped built-in; `map`/`file` ship as
// additional first-party transforms; more register via
// Substitution.RegisterTransform (Open Question c).
type Transform interface {
	Name() string
	Get(key string) (string, bool)
}

// EnvTransform resolves keys against process environment variables,
// generalizing config.Loader.applyEnvOverrides's STREAMKIT_-prefixed env
// lookup into a general-purpose substitution source.
type EnvTransform struct{}

func (EnvTransform) Name() string { return "env" }
func (EnvTransform) Get(key string) (string, bool) { return os.LookupEnv(key) }

// SysTransform resolves a small set of JVM-System-properties-like keys
// against Go's runtime/os equivalents.
type SysTransform struct{}

func (SysTransform) Name() string { return "sys" }

func (SysTransform) Get(key string) (string, bool) {
	switch key {
	case "os.name":
		return runtime.GOOS, true
	case "user.home":
		if h, err := os.UserHomeDir(); err == nil {
			return h, true
		}
		return "", false
	default:
		return "", false
	}
}

// MapTransform resolves keys against a static, builder-supplied map — the
// `map` transform named in Open Question (c).
type MapTransform struct {
	Name_ string
	Data  map[string]string
}

func (m MapTransform) Name() string { return m.Name_ }
func (m MapTransform) Get(key string) (string, bool) { v, ok := m.Data[key]; return v, ok }

// NodeTransform resolves keys by navigating the in-progress tree itself —
// the default transform when none is named, letting one leaf reference
// another (S5, S6, S7's "${db.host}" style references). Root is set by
// Substitution.SetRoot before each chain pass runs, not captured once at
// construction time, so a reference resolves against the tree currently
// being built rather than whatever generation was last published.
type NodeTransform struct {
	Root    node.Node
	Mappers *token.Registry
}

func (*NodeTransform) Name() string { return "node" }

func (n *NodeTransform) Get(key string) (string, bool) {
	toksR := n.Mappers.Map(key)
	if !toksR.HasValue() {
		return "", false
	}
	navR := node.Navigate(n.Root, toksR.MustValue())
	v, ok := navR.Value()
	if !ok {
		return "", false
	}
	leaf, ok := v.(*node.Leaf)
	if !ok || leaf.Value == nil {
		return "", false
	}
	return *leaf.Value, true
}

// FileTransform resolves a key as a path to a file whose trimmed contents
// become the substitution value, grounded on config/security.go's
// safeReadFile (path-traversal and size-limit checks) repurposed from
// "load the whole config file" to "load one substitution value."
type FileTransform struct {
	BaseDir string
	MaxSize int64
}

func (FileTransform) Name() string { return "file" }

func (f FileTransform) Get(key string) (string, bool) {
	clean := strings.TrimPrefix(key, "/")
	if strings.Contains(clean, "..") {
		return "", false
	}
	full := clean
	if f.BaseDir != "" {
		full = f.BaseDir + "/" + clean
	}
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	maxSize := f.MaxSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	if info.Size() > maxSize {
		return "", false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Substitution is the substitution engine post-processor: it rewrites leaf
// values containing `${...}` expressions, resolving leftmost-innermost
// first, re-scanning after each replacement up to MaxDepth, and detecting
// cycles over the (transform, key) pairs visited along one leaf's
// expansion.
type Substitution struct {
	OpenToken        string
	CloseToken       string
	MaxDepth         int
	DefaultTransform string

	// OnDepth, if set, is called with the number of expansions a single
	// leaf required — wired to metrics.Metrics.RecordSubstitutionDepth by
	// gestalt.Builder so operators can see how deep real configs nest.
	OnDepth func(depth int)

	transforms map[string]Transform
	logger     *slog.Logger
}

// NewSubstitution builds the engine with the default `${`/`}` tokens, depth
// 5, default transform `node`, and the env/sys/node transforms registered.
func NewSubstitution(mappers *token.Registry, logger *slog.Logger) *Substitution {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Substitution{
		OpenToken: "${", CloseToken: "}", MaxDepth: 5, DefaultTransform: "node",
		transforms: map[string]Transform{},
		logger:     logger,
	}
	s.RegisterTransform(EnvTransform{})
	s.RegisterTransform(SysTransform{})
	s.RegisterTransform(&NodeTransform{Mappers: mappers})
	return s
}

// RegisterTransform adds or replaces a transform by name.
func (s *Substitution) RegisterTransform(t Transform) {
	s.transforms[t.Name()] = t
}

// SetRoot points the node transform at the tree currently being built.
// Chain.Run calls this immediately before running Substitution on each
// pass, so "${db.host}"-style references resolve against the in-progress
// merge rather than the last published generation.
func (s *Substitution) SetRoot(root node.Node) {
	if nt, ok := s.transforms["node"].(*NodeTransform); ok {
		nt.Root = root
	}
}

// Priority is higher than TemporarySecretProcessor's so substitution
// resolves real values before a leaf is wrapped as a secret — wrapping
// first would freeze an unresolved "${...}" placeholder as the "secret."
func (Substitution) Name() string  { return "substitution" }
func (Substitution) Priority() int { return 300 }

// Process rewrites a single leaf's value; non-leaf nodes pass through
// unchanged (Chain.Run already recurses into containers).
func (s *Substitution) Process(path string, n node.Node) result.R[node.Node] {
	leaf, ok := n.(*node.Leaf)
	if !ok || leaf.Value == nil {
		return result.Valid(n)
	}

	current := *leaf.Value
	depth := 0
	visited := map[string]bool{}
	var errs []result.ValidationError

	for depth < s.MaxDepth {
		start, end, found := findInnermost(current, s.OpenToken, s.CloseToken)
		if !found {
			break
		}
		inner := current[start+len(s.OpenToken) : end]
		transformName, key, def, hasDefault := parseExpr(inner, s.DefaultTransform)

		cycleKey := transformName + ":" + key
		if visited[cycleKey] {
			errs = append(errs, result.ValidationError{
				Level: result.LevelError, Kind: "SubstitutionCycle", Path: path,
				Message: "substitution cycle detected at " + cycleKey,
			})
			s.recordDepth(depth)
			newLeaf := node.NewLeaf(current)
			newLeaf.Meta = leaf.Meta
			return result.Of[node.Node](nodePtr(node.Node(newLeaf)), errs)
		}
		visited[cycleKey] = true

		resolved, ok := s.resolve(transformName, key)
		if !ok {
			if hasDefault {
				resolved = def
				errs = append(errs, result.ValidationError{
					Level: result.LevelMissingOptionalValue, Kind: "SubstitutionMissingKey", Path: path,
					Message: "substitution key " + key + " missing, using default",
				})
			} else {
				errs = append(errs, result.ValidationError{
					Level: result.LevelMissingValue, Kind: "SubstitutionMissingKey", Path: path,
					Message: "substitution key " + key + " missing and no default given",
				})
				s.recordDepth(depth)
				newLeaf := node.NewLeaf(current)
				newLeaf.Meta = leaf.Meta
				return result.Of[node.Node](nodePtr(node.Node(newLeaf)), errs)
			}
		}

		current = current[:start] + resolved + current[end+len(s.CloseToken):]
		depth++
	}

	if depth >= s.MaxDepth {
		if _, _, found := findInnermost(current, s.OpenToken, s.CloseToken); found {
			errs = append(errs, result.ValidationError{
				Level: result.LevelError, Kind: "SubstitutionRecursionLimit", Path: path,
				Message: "substitution exceeded max depth",
			})
		}
	}

	s.recordDepth(depth)
	newLeaf := node.NewLeaf(current)
	newLeaf.Meta = leaf.Meta
	return result.Of[node.Node](nodePtr(node.Node(newLeaf)), errs)
}

func (s *Substitution) recordDepth(depth int) {
	if s.OnDepth != nil {
		s.OnDepth(depth)
	}
}

func (s *Substitution) resolve(transformName, key string) (string, bool) {
	t, ok := s.transforms[transformName]
	if !ok {
		return "", false
	}
	return t.Get(key)
}

// findInnermost locates the leftmost innermost `open...close` expression:
// the first close token found, matched against the most recently seen
// unmatched open token, which is exactly the innermost-leftmost expression
// under `${a:${b}}`-style nesting.
func findInnermost(s, open, close string) (start, end int, found bool) {
	var openStack []int
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], open) {
			openStack = append(openStack, i)
			i += len(open)
			continue
		}
		if strings.HasPrefix(s[i:], close) {
			if len(openStack) > 0 {
				start = openStack[len(openStack)-1]
				end = i
				return start, end, true
			}
			i += len(close)
			continue
		}
		i++
	}
	return 0, 0, false
}

// parseExpr splits `(transform:)?key(:=default)?` per §4.5's grammar.
func parseExpr(inner, defaultTransform string) (transform, key, def string, hasDefault bool) {
	transform = defaultTransform
	body := inner
	if idx := strings.Index(body, ":="); idx != -1 {
		def = body[idx+2:]
		hasDefault = true
		body = body[:idx]
	}
	if idx := strings.Index(body, ":"); idx != -1 {
		transform = body[:idx]
		key = body[idx+1:]
	} else {
		key = body
	}
	return transform, key, def, hasDefault
}

func nodePtr(n node.Node) *node.Node { return &n }
