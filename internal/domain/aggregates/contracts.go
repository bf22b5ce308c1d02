package aggregates

// TxScope says where an aggregate's transaction boundary sits.
type TxScope string

const (
	// TxPerCall makes every write method one transaction; a failure leaves nothing behind.
	TxPerCall TxScope = "per_call"
	// TxPerStep commits each step on its own; a crash between steps leaves earlier steps applied.
	TxPerStep TxScope = "per_step"
)

// Contract states the guarantees an aggregate's writes give its callers.
type Contract struct {
	Name    string
	TxScope TxScope
	// RunsPublishValidators is false for writers that move rows to PUBLISHED without the asset gate.
	RunsPublishValidators bool
	Notes                 string
}

// Aggregate is the common marker for all aggregate contracts.
type Aggregate interface {
	Contract() Contract
}

// Atomic reports whether a failed write is guaranteed to leave no partial state.
func (c Contract) Atomic() bool {
	return c.TxScope == TxPerCall
}
