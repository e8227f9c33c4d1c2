package ticktree

// Kind selects a node's behavior. The set is closed: the engine
// dispatches on Kind exhaustively, and adding a kind means extending the
// dispatch in (*Tree).eval, not subclassing.
type Kind int

const (
	_ Kind = iota
	// Sequence ticks children left to right, failing fast on the first
	// Failure and succeeding only once every child has succeeded.
	Sequence
	// Selector ticks children left to right, succeeding fast on the
	// first Success and failing only once every child has failed.
	Selector
	// Random picks one child with probability proportional to its
	// Weight. The pick is sticky: a Running child is re-entered on the
	// next tick, not re-rolled.
	Random
	// While requires exactly two children, condition then action. The
	// condition gates a single pass of the action; re-entry after the
	// While completes re-evaluates the condition from scratch.
	While
	// Succeed coerces its child's terminal status to Success. Running
	// propagates unchanged.
	Succeed
	// Fail coerces its child's terminal status to Failure. Running
	// propagates unchanged.
	Fail
	// Invert swaps its child's Success and Failure. Running propagates
	// unchanged.
	Invert
	// Repeat re-enters its single child until Count successes have
	// accumulated (Count <= 0 repeats forever). A child Failure does not
	// consume a count slot: unless BreakOnFail is set, the same
	// iteration is re-attempted on the next tick.
	Repeat
	// Task is a leaf driven by caller-supplied hooks: OnStart exactly
	// once on entry, OnRun every tick while active, OnFinish exactly
	// once on terminal status or abort.
	Task
	// Subtree delegates ticks to an embedded compiled tree, which keeps
	// its own cursor across ticks.
	Subtree
	// Query is a terminal leaf comparing a blackboard key against Value.
	Query
	// Condition is a terminal leaf evaluating an expr-lang expression
	// against the subject and its board.
	Condition
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Sequence:
		return "sequence"
	case Selector:
		return "selector"
	case Random:
		return "random"
	case While:
		return "while"
	case Succeed:
		return "succeed"
	case Fail:
		return "fail"
	case Invert:
		return "invert"
	case Repeat:
		return "repeat"
	case Task:
		return "task"
	case Subtree:
		return "subtree"
	case Query:
		return "query"
	case Condition:
		return "condition"
	default:
		return "unknown"
	}
}

// StartHook runs when a node is freshly entered (not on Running-resume).
type StartHook func(subject any, args ...any) error

// RunHook is a Task's tick. It receives the subject passed to Run plus
// the forwarded extra arguments, and must return a valid Status.
type RunHook func(subject any, args ...any) (Status, error)

// FinishHook runs exactly once when a node reaches a terminal status,
// or when a suspended Task is aborted (status Failure by convention).
type FinishHook func(subject any, status Status, args ...any) error

// Spec is the declarative, immutable description of one node. Specs are
// consumed by New; the engine never mutates or retains them beyond
// compilation, so a Spec graph may be reused across compilations.
//
// Hooks are stored function values attached to data, not methods: Task
// nodes require OnRun, and any node may carry OnStart and OnFinish.
type Spec struct {
	// Kind selects behavior and is required.
	Kind Kind

	// Children holds the ordered child specs of composites and
	// decorators. Leaves must have none.
	Children []*Spec

	// Weight biases Random selection. Zero means the default weight of
	// 1; negative weights are a compile error. Meaningful only for
	// children of a Random node.
	Weight float64

	// Count is the number of successes a Repeat accumulates before
	// returning Success. Zero or negative means repeat indefinitely.
	Count int

	// BreakOnFail makes a Repeat return Failure on the first child
	// Failure instead of re-attempting the iteration.
	BreakOnFail bool

	// OnStart, OnRun, OnFinish are the lifecycle hooks. OnRun is
	// required for Task nodes and ignored elsewhere.
	OnStart  StartHook
	OnRun    RunHook
	OnFinish FinishHook

	// Board selects the blackboard a Query or Condition reads. Empty
	// means BoardEntity.
	Board string

	// Key is the blackboard key a Query reads. Required for Query.
	Key string

	// Value is what a Query compares against: the keywords "set",
	// "unset", "true" and "false" test presence and truthiness, any
	// other value is matched by strict equality.
	Value any

	// Tree is the compiled tree a Subtree node delegates to. It is used
	// as a prototype: each compiled instance embeds its own clone, so
	// run state is never shared through the handle.
	Tree *Tree

	// Expr is the expr-lang source of a Condition node. Required for
	// Condition; compiled (and cached) at tree-compile time.
	Expr string
}
