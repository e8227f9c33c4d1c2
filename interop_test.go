package ticktree

import (
	"context"
	"errors"
	"testing"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/require"
)

func btLeaf(status bt.Status, err error) bt.Node {
	return func() (bt.Tick, []bt.Node) {
		return func(children []bt.Node) (bt.Status, error) {
			return status, err
		}, nil
	}
}

func TestTree_Node_StatusMapping(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name   string
		status Status
		want   bt.Status
	}{
		{"success", Success, bt.Success},
		{"failure", Failure, bt.Failure},
		{"running", Running, bt.Running},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := &scriptedTask{statuses: []Status{tc.status}}
			tree, err := New(task.spec())
			require.NoError(t, err)

			status, err := tree.Node("subject").Tick()
			require.NoError(t, err)
			require.Equal(t, tc.want, status)
			require.Equal(t, 1, task.runs)
		})
	}
}

func TestTree_Node_PropagatesErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tree, err := New(&Spec{Kind: Task, OnRun: func(any, ...any) (Status, error) {
		return 0, boom
	}})
	require.NoError(t, err)

	status, err := tree.Node(nil).Tick()
	require.ErrorIs(t, err, boom)
	require.Equal(t, bt.Failure, status)
}

func TestTree_Node_ResumesAcrossTicks(t *testing.T) {
	t.Parallel()

	a := &scriptedTask{statuses: []Status{Success}}
	b := &scriptedTask{statuses: []Status{Running, Success}}
	tree, err := New(&Spec{Kind: Sequence, Children: []*Spec{a.spec(), b.spec()}})
	require.NoError(t, err)

	node := tree.Node(nil)
	status, err := node.Tick()
	require.NoError(t, err)
	require.Equal(t, bt.Running, status)

	status, err = node.Tick()
	require.NoError(t, err)
	require.Equal(t, bt.Success, status)
	require.Equal(t, 1, a.runs, "the wrapped tree resumes, it does not restart")
}

func TestTaskFromNode_ComposesIntoTrees(t *testing.T) {
	t.Parallel()

	tree, err := New(&Spec{Kind: Sequence, Children: []*Spec{
		TaskFromNode(btLeaf(bt.Success, nil)),
		TaskFromNode(btLeaf(bt.Failure, nil)),
	}})
	require.NoError(t, err)

	step(t, tree, nil, Failure)
}

func TestTaskFromNode_RunningAndErrors(t *testing.T) {
	t.Parallel()

	tree, err := New(TaskFromNode(btLeaf(bt.Running, nil)))
	require.NoError(t, err)
	step(t, tree, nil, Running)

	boom := errors.New("boom")
	tree, err = New(TaskFromNode(btLeaf(bt.Failure, boom)))
	require.NoError(t, err)
	_, err = tree.Run(nil)
	require.ErrorIs(t, err, boom)
}

func TestTree_Ticker_DrivesTree(t *testing.T) {
	t.Parallel()

	ticks := make(chan struct{}, 64)
	tree, err := New(&Spec{Kind: Task, OnRun: func(any, ...any) (Status, error) {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return Success, nil
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := tree.Ticker(ctx, time.Millisecond, nil)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for ticker to drive the tree")
		}
	}

	cancel()
	select {
	case <-ticker.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for ticker shutdown")
	}
}

func TestTree_TickerStopOnFailure_StopsOnFailure(t *testing.T) {
	t.Parallel()

	runs := 0
	tree, err := New(&Spec{Kind: Task, OnRun: func(any, ...any) (Status, error) {
		runs++
		if runs < 3 {
			return Success, nil
		}
		return Failure, nil
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := tree.TickerStopOnFailure(ctx, time.Millisecond, nil)
	defer ticker.Stop()

	select {
	case <-ticker.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for ticker to stop on failure")
	}
	require.GreaterOrEqual(t, runs, 3)
}
