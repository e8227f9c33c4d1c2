package ticktree

import (
	"log/slog"
	"sync"
)

// Registry owns the process-wide shared-blackboard table and the named
// tree handles an external factory may attach. It is an explicit object
// rather than package state so its lifetime is controlled by the host
// application; pass it to New via WithRegistry.
//
// All methods are safe for concurrent use. Resolve works on a nil
// receiver (only BoardEntity can resolve then), so trees without a
// registry still support subject-owned boards.
type Registry struct {
	mu     sync.RWMutex
	boards map[string]*Blackboard
	trees  map[string]*Tree
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		boards: make(map[string]*Blackboard),
		trees:  make(map[string]*Tree),
	}
}

// Register stores or overwrites a shared blackboard under index. There
// is no removal operation; re-register to replace.
func (r *Registry) Register(index string, board *Blackboard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.boards == nil {
		r.boards = make(map[string]*Blackboard)
	}
	r.boards[index] = board
	slog.Debug("ticktree: registered shared blackboard", "index", index)
}

// Board returns the shared blackboard registered under index.
func (r *Registry) Board(index string) (*Blackboard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boards[index]
	return b, ok
}

// Boards returns the registered shared-board indexes, in no particular
// order.
func (r *Registry) Boards() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.boards) == 0 {
		return nil
	}
	indexes := make([]string, 0, len(r.boards))
	for k := range r.boards {
		indexes = append(indexes, k)
	}
	return indexes
}

// RegisterTree labels a compiled tree with id. This is a side channel
// for factories and loaders; the engine itself never reads tree ids.
func (r *Registry) RegisterTree(id string, t *Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trees == nil {
		r.trees = make(map[string]*Tree)
	}
	r.trees[id] = t
	slog.Debug("ticktree: registered tree", "id", id, "instance", t.ID())
}

// Tree returns the tree registered under id.
func (r *Registry) Tree(id string) (*Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trees[id]
	return t, ok
}

// Resolve resolves a board selector against a subject: BoardEntity (or
// the empty string) addresses the subject's own board via Holder, any
// other selector addresses a registered shared board. Pure lookup; never
// mutates, never caches.
func (r *Registry) Resolve(subject any, selector string) (*Blackboard, error) {
	if selector == "" || selector == BoardEntity {
		h, ok := subject.(Holder)
		if !ok {
			return nil, &MissingBlackboardError{Subject: subject}
		}
		b := h.Blackboard()
		if b == nil {
			return nil, &MissingBlackboardError{Subject: subject}
		}
		return b, nil
	}
	if r == nil {
		return nil, &UnknownBoardError{Board: selector}
	}
	r.mu.RLock()
	b, ok := r.boards[selector]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownBoardError{Board: selector}
	}
	return b, nil
}
