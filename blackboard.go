package ticktree

import (
	"fmt"
	"sync"
)

// BoardEntity is the board selector addressing the subject's own
// blackboard rather than a registry-shared one.
const BoardEntity = "Entity"

// Holder is implemented by subjects that carry their own blackboard.
// Query and Condition nodes with the BoardEntity selector resolve the
// board through this interface.
type Holder interface {
	Blackboard() *Blackboard
}

// Blackboard is a mutex-guarded key-value store for behavior tree state.
//
// Create with new(Blackboard); the internal map is lazily initialized on
// the first write. All methods are safe for concurrent use.
type Blackboard struct {
	mu   sync.RWMutex
	data map[string]any
}

// Get retrieves a value. Returns nil if the key doesn't exist.
func (b *Blackboard) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	return b.data[key]
}

// Set stores a value.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		b.data = make(map[string]any)
	}
	b.data[key] = value
}

// Has reports whether the key exists.
func (b *Blackboard) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return false
	}
	_, ok := b.data[key]
	return ok
}

// Delete removes a key.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return
	}
	delete(b.data, key)
}

// Keys returns all keys, in no particular order.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all entries.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
}

// Len returns the number of keys without allocating.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Snapshot returns a shallow copy of the blackboard data, or nil for an
// empty board.
//
// WARNING: mutable values (slices, maps, pointers) are shared with the
// board; callers needing isolation must deep copy themselves.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil
	}
	result := make(map[string]any, len(b.data))
	for k, v := range b.data {
		result[k] = v
	}
	return result
}

// MissingBlackboardError is returned by Run when a node addresses the
// BoardEntity board but the subject does not provide one.
type MissingBlackboardError struct {
	// Subject is the subject that lacked a board.
	Subject any
}

func (e *MissingBlackboardError) Error() string {
	return fmt.Sprintf("ticktree: subject %T does not provide a blackboard", e.Subject)
}

// UnknownBoardError is returned by Run when a node addresses a shared
// board that was never registered.
type UnknownBoardError struct {
	// Board is the selector that failed to resolve.
	Board string
}

func (e *UnknownBoardError) Error() string {
	return fmt.Sprintf("ticktree: no shared blackboard registered as %q", e.Board)
}
