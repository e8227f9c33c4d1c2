package ticktree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testSubject carries its own blackboard.
type testSubject struct {
	board *Blackboard
}

func (s *testSubject) Blackboard() *Blackboard { return s.board }

func TestRegistry_RegisterAndBoard(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.Empty(t, reg.Boards())

	squad := new(Blackboard)
	reg.Register("Squad", squad)

	got, ok := reg.Board("Squad")
	require.True(t, ok)
	require.Same(t, squad, got)
	require.ElementsMatch(t, []string{"Squad"}, reg.Boards())

	// Re-registration overwrites.
	replacement := new(Blackboard)
	reg.Register("Squad", replacement)
	got, _ = reg.Board("Squad")
	require.Same(t, replacement, got)
}

func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	squad := new(Blackboard)
	reg.Register("Squad", squad)

	subject := &testSubject{board: new(Blackboard)}

	board, err := reg.Resolve(subject, BoardEntity)
	require.NoError(t, err)
	require.Same(t, subject.board, board)

	// The empty selector defaults to the entity board.
	board, err = reg.Resolve(subject, "")
	require.NoError(t, err)
	require.Same(t, subject.board, board)

	board, err = reg.Resolve(subject, "Squad")
	require.NoError(t, err)
	require.Same(t, squad, board)
}

func TestRegistry_ResolveMissingEntityBoard(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	_, err := reg.Resolve("not a holder", BoardEntity)
	var missing *MissingBlackboardError
	require.ErrorAs(t, err, &missing)

	_, err = reg.Resolve(&testSubject{}, BoardEntity)
	require.ErrorAs(t, err, &missing)
}

func TestRegistry_ResolveUnknownBoard(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	_, err := reg.Resolve(nil, "Nope")
	var unknown *UnknownBoardError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "Nope", unknown.Board)
}

func TestRegistry_NilResolvesEntityOnly(t *testing.T) {
	t.Parallel()

	var reg *Registry
	subject := &testSubject{board: new(Blackboard)}

	board, err := reg.Resolve(subject, BoardEntity)
	require.NoError(t, err)
	require.Same(t, subject.board, board)

	_, err = reg.Resolve(subject, "Squad")
	var unknown *UnknownBoardError
	require.ErrorAs(t, err, &unknown)
}

func TestRegistry_TreeHandles(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	tree, err := New(leaf())
	require.NoError(t, err)

	_, ok := reg.Tree("patrol")
	require.False(t, ok)

	reg.RegisterTree("patrol", tree)
	got, ok := reg.Tree("patrol")
	require.True(t, ok)
	require.Same(t, tree, got)
	require.NotEmpty(t, tree.ID())
}
