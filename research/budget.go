package research

// DefaultMaxLoops is the search budget used when none is configured.
const DefaultMaxLoops = 3

// Budget counts search iterations against a fixed maximum. A session has one
// Budget, bound to its single search backend. Budget is not safe for
// concurrent use; the Controller guards it.
type Budget struct {
	max  int
	used int
}

// NewBudget returns a Budget allowing max iterations. Values below 1 use
// DefaultMaxLoops.
func NewBudget(max int) *Budget {
	if max < 1 {
		max = DefaultMaxLoops
	}
	return &Budget{max: max}
}

// Allow reports whether another iteration may run.
func (b *Budget) Allow() bool {
	return b.used < b.max
}

// Spend records one completed iteration.
func (b *Budget) Spend() {
	b.used++
}

func (b *Budget) Used() int {
	return b.used
}

func (b *Budget) Max() int {
	return b.max
}

// Remaining returns how many iterations are left.
func (b *Budget) Remaining() int {
	if b.used >= b.max {
		return 0
	}
	return b.max - b.used
}

// Reset makes the whole budget available again.
func (b *Budget) Reset() {
	b.used = 0
}
