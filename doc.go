/*
Package ticktree implements a compiled, resumable behavior tree engine.

# Architecture

Trees are described declaratively as a graph of Spec values and compiled
once, via New, into a flat, index-addressed node array. Each compiled node
records the half-open index range of its descendants, so resuming a
suspended subtree is a cursor-directed descent rather than a re-walk from
the root: every composite locates the child whose range contains the
cursor in O(1) and re-enters it directly, combining the result with its
remaining children under its normal rules.

A Tree value is one run instance: it shares the immutable compiled program
with its clones but owns its own cursor, repeat counters, and embedded
subtree instances. Clone never shares run state.

# Ticking

Run advances the tree by exactly one logical step and returns a Status.
A node that cannot complete synchronously returns Running; the caller is
the scheduler and is responsible for calling Run again later. All
evaluation for one Run call happens synchronously on the caller's
goroutine, and a single Tree instance must be confined to one goroutine
(the compiled program itself is read-only and safely shared).

# Node kinds

Composites: Sequence, Selector, Random (weighted pick, sticky across
resumption), While (condition/action pair, single pass per entry).
Decorators: Succeed, Fail, Invert, Repeat (counts successes only).
Leaves: Task (caller-supplied start/run/finish hooks), Subtree
(delegation to an independently cursored embedded tree), Query
(blackboard comparison), Condition (expr-lang expression, see below).

# Blackboards

A Blackboard is a mutex-guarded key-value store. Query nodes resolve
their board through a selector: BoardEntity addresses the subject's own
board (the subject implements Holder), any other selector addresses a
board registered on the Tree's Registry. Resolution failures surface as
*MissingBlackboardError / *UnknownBoardError from Run, with the cursor
left untouched so the tick can be retried.

# Conditions

Condition nodes evaluate an expr-lang expression against an environment
exposing the subject and the resolved board snapshot. Expressions are
compiled at tree-compile time and cached in a bounded LRU shared across
trees (see SetExprCacheSize).

# go-behaviortree interop

The engine composes with github.com/joeycumines/go-behaviortree in both
directions: Tree.Node exposes a compiled tree as a bt.Node leaf,
TaskFromNode wraps any bt.Node as a Task spec, and Tree.Ticker /
Tree.TickerStopOnFailure drive a tree on the go-behaviortree ticker
runners.

# Error handling

Malformed specs fail at compile time with *CompileError; Run never
validates. Errors returned by caller-supplied hooks are not swallowed:
they propagate to the caller of Run or Abort unchanged, and the engine
makes no attempt at partial recovery, since hook side effects are opaque
to it.
*/
package ticktree
