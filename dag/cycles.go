package dag

import "time"

// DefaultCycleTimeout bounds a single cycle search.
const DefaultCycleTimeout = 3 * time.Second

// Option configures a cycle search.
type Option func(*options)

type options struct {
	timeout time.Duration
	now     func() time.Time
}

// WithTimeout sets the wall-clock budget of a search. A zero or negative
// duration disables the budget.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithClock replaces time.Now for the budget check.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Cycles is the outcome of a cycle search.
type Cycles struct {
	// Links holds the ids of every edge lying on at least one cycle.
	Links map[string]struct{}
	// Complete is false when the search ran out of time. Links then holds
	// a subset of the full answer; every id in it is still on a cycle.
	Complete bool
}

// Has reports whether the edge id lies on a cycle.
func (c Cycles) Has(id string) bool {
	_, ok := c.Links[id]
	return ok
}

// CycleLinks returns the ids of all edges lying on a cycle. It is empty when
// the graph is acyclic.
func CycleLinks(edges []Edge, opts ...Option) map[string]struct{} {
	return FindCycles(edges, opts...).Links
}

// FindCycles partitions the graph into strongly connected components and
// reports every edge whose endpoints fall in the same component. A self-loop
// is its own cycle. The search is iterative, so deep chains do not grow the
// goroutine stack, and the time budget is checked before each new root.
func FindCycles(edges []Edge, opts ...Option) Cycles {
	o := options{timeout: DefaultCycleTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// Index nodes in order of first appearance for a deterministic walk.
	ids := make(map[string]int)
	var names []string
	intern := func(name string) int {
		if i, ok := ids[name]; ok {
			return i
		}
		ids[name] = len(names)
		names = append(names, name)
		return len(names) - 1
	}
	from := make([]int, len(edges))
	to := make([]int, len(edges))
	for i, e := range edges {
		from[i] = intern(e.From)
		to[i] = intern(e.To)
	}
	adj := make([][]int, len(names))
	for i := range edges {
		adj[from[i]] = append(adj[from[i]], to[i])
	}

	comp := tarjan(adj, o)

	result := Cycles{Links: make(map[string]struct{}), Complete: comp.complete}
	for i, e := range edges {
		c := comp.of[from[i]]
		if c >= 0 && c == comp.of[to[i]] {
			result.Links[e.ID] = struct{}{}
		}
	}
	return result
}

type components struct {
	of       []int // component per node, -1 when not reached
	complete bool
}

type frame struct {
	node int
	next int
}

func tarjan(adj [][]int, o options) components {
	n := len(adj)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	comp := make([]int, n)
	for i := range index {
		index[i] = -1
		comp[i] = -1
	}

	var (
		counter int
		count   int
		stack   []int
		frames  []frame
	)
	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, frame{node: v})
	}

	var deadline time.Time
	if o.timeout > 0 {
		deadline = o.now().Add(o.timeout)
	}

	for root := 0; root < n; root++ {
		if index[root] != -1 {
			continue
		}
		if !deadline.IsZero() && !o.now().Before(deadline) {
			return components{of: comp, complete: false}
		}

		visit(root)
		for len(frames) > 0 {
			top := len(frames) - 1
			v := frames[top].node
			if frames[top].next < len(adj[v]) {
				w := adj[v][frames[top].next]
				frames[top].next++
				if index[w] == -1 {
					visit(w)
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			frames = frames[:top]
			if top > 0 {
				parent := frames[top-1].node
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
			if low[v] == index[v] {
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp[w] = count
					if w == v {
						break
					}
				}
				count++
			}
		}
	}
	return components{of: comp, complete: true}
}
