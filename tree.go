package ticktree

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
)

// idle is the cursor sentinel meaning no node is suspended.
const idle = -1

// Tree is one run instance of a compiled behavior tree: the immutable
// program plus the mutable state one run needs (the resumption cursor,
// the last subject, Repeat counters, and embedded subtree instances).
//
// A Tree must be confined to a single goroutine; share work across
// goroutines by giving each its own Clone.
type Tree struct {
	prog     *program
	id       string
	registry *Registry
	rng      *rand.Rand

	cursor  int
	subject any
	// repeats holds the remaining success count per Repeat node index
	// (-1 while repeating indefinitely); values are (re)initialized on
	// fresh entry, so stale entries are harmless.
	repeats map[int]int
	// subtrees holds this instance's embedded tree per Subtree node
	// index, cloned from the spec's prototype so no run state is shared
	// through the handle.
	subtrees map[int]*Tree
}

// instantiate allocates the per-instance state derived from the program.
func (t *Tree) instantiate() {
	for i := range t.prog.nodes {
		n := &t.prog.nodes[i]
		switch n.kind {
		case Repeat:
			if t.repeats == nil {
				t.repeats = make(map[int]int)
			}
			t.repeats[i] = 0
		case Subtree:
			if t.subtrees == nil {
				t.subtrees = make(map[int]*Tree)
			}
			t.subtrees[i] = n.proto.Clone()
		}
	}
}

// ID returns the unique identifier of this instance. Clones get fresh
// identifiers.
func (t *Tree) ID() string { return t.id }

// Clone returns a new instance sharing the immutable compiled program
// but owning a fresh cursor, fresh counters, and fresh subtree
// instances. Clones never cross-mutate each other's run state.
func (t *Tree) Clone() *Tree {
	nt := &Tree{
		prog:     t.prog,
		id:       uuid.NewString(),
		registry: t.registry,
		rng:      t.rng,
		cursor:   idle,
	}
	nt.instantiate()
	return nt
}

// Run advances the tree exactly one logical step from its current cursor
// (or from the root if idle) and returns the resulting Status. A Running
// result suspends the tree; call Run again to resume at the suspended
// node rather than the root.
//
// The extra args are forwarded verbatim to every hook invoked this tick.
// Errors from hooks or board resolution propagate unchanged, with the
// cursor left where it was so the tick can be retried.
//
// On a zero-value Tree there is nothing to evaluate and Run returns the
// zero Status with a nil error.
func (t *Tree) Run(subject any, args ...any) (Status, error) {
	if t.prog == nil || len(t.prog.nodes) == 0 {
		return 0, nil
	}
	t.subject = subject
	status, cursor, err := t.eval(0, args)
	if err != nil {
		return 0, err
	}
	t.cursor = cursor
	return status, nil
}

// Abort finishes a suspended run without ticking: if the cursor
// addresses a Task, its finish hook is invoked exactly once with status
// Failure; a suspended Subtree is aborted recursively. Sibling and
// ancestor hooks are never touched. The cursor is reset to idle even if
// the finish hook errors, so a second Abort is a no-op.
func (t *Tree) Abort(args ...any) error {
	if t.cursor == idle {
		return nil
	}
	n := &t.prog.nodes[t.cursor]
	slog.Debug("ticktree: abort", "instance", t.id, "cursor", t.cursor, "kind", n.kind)
	var err error
	switch n.kind {
	case Task:
		if n.onFinish != nil {
			err = n.onFinish(t.subject, Failure, args...)
		}
	case Subtree:
		err = t.subtrees[t.cursor].Abort(args...)
	}
	t.cursor = idle
	return err
}

// eval evaluates the node at index i, resuming it when the current
// cursor lies within its subtree. It returns the node's status together
// with the index to suspend on (idle unless the status is Running).
// The tree's cursor field is only written by Run once the whole tick
// has completed without error.
func (t *Tree) eval(i int, args []any) (Status, int, error) {
	n := &t.prog.nodes[i]
	resume := t.cursor != idle && t.prog.within(i, t.cursor)
	if !resume && n.onStart != nil {
		if err := n.onStart(t.subject, args...); err != nil {
			return 0, idle, err
		}
	}

	switch n.kind {
	case Sequence:
		start := 0
		if resume {
			if ci := t.prog.childContaining(i, t.cursor); ci >= 0 {
				start = ci
			}
		}
		for ci := start; ci < len(n.children); ci++ {
			status, cursor, err := t.eval(n.children[ci], args)
			if err != nil {
				return 0, idle, err
			}
			switch status {
			case Running:
				return Running, cursor, nil
			case Failure:
				return t.finish(n, Failure, args)
			}
		}
		return t.finish(n, Success, args)

	case Selector:
		start := 0
		if resume {
			if ci := t.prog.childContaining(i, t.cursor); ci >= 0 {
				start = ci
			}
		}
		for ci := start; ci < len(n.children); ci++ {
			status, cursor, err := t.eval(n.children[ci], args)
			if err != nil {
				return 0, idle, err
			}
			switch status {
			case Running:
				return Running, cursor, nil
			case Success:
				return t.finish(n, Success, args)
			}
		}
		return t.finish(n, Failure, args)

	case Random:
		var child int
		if resume {
			// Sticky pick: re-enter the child that was suspended, never
			// re-roll.
			ci := t.prog.childContaining(i, t.cursor)
			if ci < 0 {
				ci = t.pickWeighted(n)
			}
			child = n.children[ci]
		} else {
			child = n.children[t.pickWeighted(n)]
		}
		status, cursor, err := t.eval(child, args)
		if err != nil {
			return 0, idle, err
		}
		if status == Running {
			return Running, cursor, nil
		}
		return t.finish(n, status, args)

	case While:
		condition, action := n.children[0], n.children[1]
		if !(resume && t.prog.within(action, t.cursor)) {
			status, cursor, err := t.eval(condition, args)
			if err != nil {
				return 0, idle, err
			}
			switch status {
			case Running:
				return Running, cursor, nil
			case Failure:
				return t.finish(n, Failure, args)
			}
		}
		status, cursor, err := t.eval(action, args)
		if err != nil {
			return 0, idle, err
		}
		if status == Running {
			return Running, cursor, nil
		}
		return t.finish(n, status, args)

	case Succeed, Fail, Invert:
		status, cursor, err := t.eval(n.children[0], args)
		if err != nil {
			return 0, idle, err
		}
		if status == Running {
			return Running, cursor, nil
		}
		switch n.kind {
		case Succeed:
			status = Success
		case Fail:
			status = Failure
		case Invert:
			if status == Success {
				status = Failure
			} else {
				status = Success
			}
		}
		return t.finish(n, status, args)

	case Repeat:
		if !resume {
			if n.count > 0 {
				t.repeats[i] = n.count
			} else {
				t.repeats[i] = -1
			}
		}
		status, cursor, err := t.eval(n.children[0], args)
		if err != nil {
			return 0, idle, err
		}
		switch status {
		case Running:
			return Running, cursor, nil
		case Failure:
			if n.breakOnFail {
				return t.finish(n, Failure, args)
			}
			// Uncounted retry: park on this node and re-attempt the same
			// iteration next tick.
			return Running, i, nil
		default:
			if t.repeats[i] > 0 {
				t.repeats[i]--
				if t.repeats[i] == 0 {
					return t.finish(n, Success, args)
				}
			}
			return Running, i, nil
		}

	case Task:
		status, err := n.onRun(t.subject, args...)
		if err != nil {
			return 0, idle, err
		}
		switch status {
		case Running:
			return Running, i, nil
		case Success, Failure:
			return t.finish(n, status, args)
		default:
			return 0, idle, fmt.Errorf("ticktree: task node %d returned invalid status %d", i, int(status))
		}

	case Subtree:
		status, err := t.subtrees[i].Run(t.subject, args...)
		if err != nil {
			return 0, idle, err
		}
		switch status {
		case Running:
			return Running, i, nil
		case Success, Failure:
			return t.finish(n, status, args)
		default:
			// Empty subtree no-op; nothing to combine.
			return t.finish(n, Success, args)
		}

	case Query:
		board, err := t.registry.Resolve(t.subject, n.board)
		if err != nil {
			return 0, idle, err
		}
		status := Failure
		if queryMatch(board, n.key, n.value) {
			status = Success
		}
		return t.finish(n, status, args)

	case Condition:
		board, err := t.conditionBoard(n)
		if err != nil {
			return 0, idle, err
		}
		ok, err := runExpr(n.program, t.subject, board)
		if err != nil {
			return 0, idle, err
		}
		status := Failure
		if ok {
			status = Success
		}
		return t.finish(n, status, args)

	default:
		return 0, idle, fmt.Errorf("ticktree: invalid node kind %d at %d", int(n.kind), i)
	}
}

// finish reports a terminal status, invoking the node's finish hook
// exactly once first.
func (t *Tree) finish(n *node, status Status, args []any) (Status, int, error) {
	if n.onFinish != nil {
		if err := n.onFinish(t.subject, status, args...); err != nil {
			return 0, idle, err
		}
	}
	return status, idle, nil
}

// conditionBoard resolves the board a Condition exposes to its
// expression. Any explicit selector, BoardEntity included, resolves
// strictly like Query; only the empty default is tolerant, since an
// expression need not touch the board at all.
func (t *Tree) conditionBoard(n *node) (*Blackboard, error) {
	if n.board != "" {
		return t.registry.Resolve(t.subject, n.board)
	}
	if h, ok := t.subject.(Holder); ok {
		return h.Blackboard(), nil
	}
	return nil, nil
}

// pickWeighted returns the position of the child selected with
// probability proportional to its weight.
func (t *Tree) pickWeighted(n *node) int {
	var total float64
	for _, child := range n.children {
		total += t.prog.nodes[child].weight
	}
	if total <= 0 {
		return 0
	}
	var f float64
	if t.rng != nil {
		f = t.rng.Float64()
	} else {
		f = rand.Float64()
	}
	target := f * total
	for ci, child := range n.children {
		target -= t.prog.nodes[child].weight
		if target < 0 {
			return ci
		}
	}
	return len(n.children) - 1
}
