package ticktree

import (
	"context"
	"errors"
	"fmt"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
)

// Node exposes the tree as a go-behaviortree leaf: every tick of the
// returned node runs one tick of this tree with the given subject and
// args. Statuses map directly; an idle no-op tick maps to bt.Success.
//
// The returned node ticks this instance, so it inherits the instance's
// single-goroutine confinement.
func (t *Tree) Node(subject any, args ...any) bt.Node {
	return func() (bt.Tick, []bt.Node) {
		return func(children []bt.Node) (bt.Status, error) {
			status, err := t.Run(subject, args...)
			if err != nil {
				return bt.Failure, err
			}
			switch status {
			case Running:
				return bt.Running, nil
			case Failure:
				return bt.Failure, nil
			default:
				return bt.Success, nil
			}
		}, nil
	}
}

// TaskFromNode wraps a go-behaviortree node as a Task spec, so existing
// bt.Node implementations compose into compiled trees as leaves. The
// subject and args the engine forwards are not visible to the wrapped
// node; it keeps whatever state its closure carries.
func TaskFromNode(node bt.Node) *Spec {
	return &Spec{
		Kind: Task,
		OnRun: func(any, ...any) (Status, error) {
			if node == nil {
				return 0, errors.New("ticktree: nil go-behaviortree node")
			}
			status, err := node.Tick()
			if err != nil {
				return 0, err
			}
			switch status {
			case bt.Running:
				return Running, nil
			case bt.Success:
				return Success, nil
			case bt.Failure:
				return Failure, nil
			default:
				return 0, fmt.Errorf("ticktree: go-behaviortree node returned invalid status %v", status)
			}
		},
	}
}

// Ticker drives the tree on a go-behaviortree ticker, running one tick
// per interval until the context is cancelled or the ticker is stopped.
// The caller owns the returned ticker's lifecycle (Done, Err, Stop) and
// may register it on a bt.Manager.
func (t *Tree) Ticker(ctx context.Context, interval time.Duration, subject any, args ...any) bt.Ticker {
	return bt.NewTicker(ctx, interval, t.Node(subject, args...))
}

// TickerStopOnFailure is Ticker, stopping on the first Failure result.
func (t *Tree) TickerStopOnFailure(ctx context.Context, interval time.Duration, subject any, args ...any) bt.Ticker {
	return bt.NewTickerStopOnFailure(ctx, interval, t.Node(subject, args...))
}
