package ticktree

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultExprCacheSize is the default maximum number of compiled
// expr-lang programs retained across tree compilations. The bound keeps
// memory flat for long-running processes compiling dynamic expressions.
const DefaultExprCacheSize = 1000

// exprPrograms is the process-wide cache of compiled Condition
// expressions, shared across trees since programs are immutable.
var exprPrograms = newExprLRU(DefaultExprCacheSize)

// SetExprCacheSize sets the maximum size of the shared expression cache,
// truncating it if the new size is smaller. Sizes below 1 are clamped to
// 1. Safe to call at runtime.
func SetExprCacheSize(size int) {
	if size < 1 {
		size = 1
	}
	exprPrograms.resize(size)
}

// exprLRU is a thread-safe bounded LRU of compiled expr-lang programs,
// keyed by expression source.
type exprLRU struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	max     int
	hits    int64
	misses  int64
}

type exprEntry struct {
	source  string
	program *vm.Program
}

func newExprLRU(max int) *exprLRU {
	if max < 1 {
		max = DefaultExprCacheSize
	}
	return &exprLRU{
		entries: make(map[string]*list.Element, max),
		lru:     list.New(),
		max:     max,
	}
}

// get retrieves a compiled program and refreshes its LRU position.
func (c *exprLRU) get(source string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[source]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	if elem != c.lru.Front() {
		c.lru.MoveToFront(elem)
	}
	return elem.Value.(*exprEntry).program, true
}

// put adds a compiled program, evicting the least recently used entry at
// capacity. An existing entry is refreshed and its program replaced.
func (c *exprLRU) put(source string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[source]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*exprEntry).program = program
		return
	}
	c.entries[source] = c.lru.PushFront(&exprEntry{source: source, program: program})
	c.evictLocked()
}

func (c *exprLRU) resize(max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.max = max
	c.evictLocked()
}

func (c *exprLRU) evictLocked() {
	for c.lru.Len() > c.max {
		oldest := c.lru.Back()
		if oldest == nil {
			return
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*exprEntry).source)
	}
}

func (c *exprLRU) stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// compileExpr compiles a Condition expression, consulting the shared
// cache first. Undefined variables are allowed so expressions can probe
// boards whose keys only exist at run time.
func compileExpr(source string) (*vm.Program, error) {
	if program, ok := exprPrograms.get(source); ok {
		return program, nil
	}
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", source, err)
	}
	exprPrograms.put(source, program)
	return program, nil
}

// runExpr evaluates a compiled Condition program against the subject and
// its resolved board snapshot. Truthiness of the result decides the
// node's status.
func runExpr(program *vm.Program, subject any, board *Blackboard) (bool, error) {
	env := map[string]any{
		"subject": subject,
	}
	if board != nil {
		env["board"] = board.Snapshot()
	} else {
		env["board"] = map[string]any(nil)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluating condition: %w", err)
	}
	return truthy(out), nil
}
