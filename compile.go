package ticktree

import (
	"fmt"
	"math/rand/v2"

	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
)

// CompileError reports a malformed Spec. It is only ever produced by
// New; Run performs no validation.
type CompileError struct {
	// Kind is the kind of the offending node.
	Kind Kind
	// Index is the node's position in depth-first order from the root.
	Index int
	// Reason describes what was wrong.
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("ticktree: compile %s node %d: %s", e.Kind, e.Index, e.Reason)
}

// node is one entry of the compiled, index-addressed program. Nodes are
// laid out in depth-first order: node i owns the half-open descendant
// range (i, end), so whether a cursor lies inside a subtree is a bounds
// check, not a walk.
type node struct {
	kind Kind
	// end is one past the last descendant index.
	end int
	// children holds the direct child indices, in order.
	children []int

	weight      float64
	count       int
	breakOnFail bool

	onStart  StartHook
	onRun    RunHook
	onFinish FinishHook

	board string
	key   string
	value any

	// proto is the subtree prototype of a Subtree node; each Tree
	// instance embeds its own clone.
	proto *Tree
	// program is the compiled expression of a Condition node.
	program *vm.Program
}

// program is the immutable compiled form of a Spec graph, shared
// read-only across a Tree and all of its clones.
type program struct {
	nodes []node
}

// within reports whether cursor lies in the subtree rooted at i
// (including i itself).
func (p *program) within(i, cursor int) bool {
	return cursor >= i && cursor < p.nodes[i].end
}

// childContaining returns the position, within nodes[i].children, of the
// child whose subtree contains cursor, or -1.
func (p *program) childContaining(i, cursor int) int {
	for ci, child := range p.nodes[i].children {
		if p.within(child, cursor) {
			return ci
		}
	}
	return -1
}

// Option configures a Tree produced by New. Options apply to the
// instance, not the compiled program, and are inherited by clones.
type Option func(*Tree)

// WithRegistry attaches the registry used to resolve shared-board
// selectors. Without it, only BoardEntity resolves.
func WithRegistry(r *Registry) Option {
	return func(t *Tree) { t.registry = r }
}

// WithRand sets the random source used by Random nodes, e.g. for
// deterministic tests. Trees using a shared *rand.Rand must not tick
// concurrently; the default (nil) uses the concurrency-safe global
// source.
func WithRand(rng *rand.Rand) Option {
	return func(t *Tree) { t.rng = rng }
}

// New compiles a Spec graph into a runnable Tree. The spec graph is
// walked depth-first exactly once and validated as it is flattened;
// the resulting program is immutable and shared by clones.
func New(root *Spec, opts ...Option) (*Tree, error) {
	if root == nil {
		return nil, &CompileError{Index: 0, Reason: "nil root spec"}
	}
	p := &program{}
	if err := p.flatten(root); err != nil {
		return nil, err
	}
	t := &Tree{
		prog:   p,
		id:     uuid.NewString(),
		cursor: idle,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.instantiate()
	return t, nil
}

// flatten appends the spec and its descendants to p.nodes in depth-first
// order, recording child indices and descendant bounds.
func (p *program) flatten(s *Spec) error {
	i := len(p.nodes)
	p.nodes = append(p.nodes, node{})
	if err := validate(s, i); err != nil {
		return err
	}

	n := node{
		kind:        s.Kind,
		weight:      s.Weight,
		count:       s.Count,
		breakOnFail: s.BreakOnFail,
		onStart:     s.OnStart,
		onRun:       s.OnRun,
		onFinish:    s.OnFinish,
		board:       s.Board,
		key:         s.Key,
		value:       s.Value,
		proto:       s.Tree,
	}
	if n.weight == 0 {
		n.weight = 1
	}
	if s.Kind == Condition {
		compiled, err := compileExpr(s.Expr)
		if err != nil {
			return &CompileError{Kind: Condition, Index: i, Reason: err.Error()}
		}
		n.program = compiled
	}

	for _, child := range s.Children {
		n.children = append(n.children, len(p.nodes))
		if err := p.flatten(child); err != nil {
			return err
		}
	}
	n.end = len(p.nodes)
	p.nodes[i] = n
	return nil
}

// validate enforces per-kind arity and parameter requirements.
func validate(s *Spec, i int) error {
	fail := func(reason string) error {
		return &CompileError{Kind: s.Kind, Index: i, Reason: reason}
	}
	if s.Weight < 0 {
		return fail("negative weight")
	}
	for ci, child := range s.Children {
		if child == nil {
			return fail(fmt.Sprintf("nil child %d", ci))
		}
	}
	switch s.Kind {
	case Sequence, Selector, Random:
		if len(s.Children) == 0 {
			return fail("requires at least one child")
		}
	case While:
		if len(s.Children) != 2 {
			return fail(fmt.Sprintf("requires exactly two children (condition, action), got %d", len(s.Children)))
		}
	case Succeed, Fail, Invert, Repeat:
		if len(s.Children) != 1 {
			return fail(fmt.Sprintf("requires exactly one child, got %d", len(s.Children)))
		}
	case Task:
		if len(s.Children) != 0 {
			return fail("is a leaf and may not have children")
		}
		if s.OnRun == nil {
			return fail("requires an OnRun hook")
		}
	case Subtree:
		if len(s.Children) != 0 {
			return fail("is a leaf and may not have children")
		}
		if s.Tree == nil || s.Tree.prog == nil {
			return fail("requires a compiled Tree")
		}
	case Query:
		if len(s.Children) != 0 {
			return fail("is a leaf and may not have children")
		}
		if s.Key == "" {
			return fail("requires a Key")
		}
	case Condition:
		if len(s.Children) != 0 {
			return fail("is a leaf and may not have children")
		}
		if s.Expr == "" {
			return fail("requires an Expr")
		}
	default:
		return fail("unknown kind")
	}
	return nil
}
