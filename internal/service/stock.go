package service

// StockOutcome classifies what reconciliation did with one order line.
type StockOutcome string

const (
	// StockAdjusted means the product was saved with the decremented quantity.
	StockAdjusted StockOutcome = "adjusted"
	// StockDeleted means the remaining quantity fell below one and the
	// product was removed from the catalog.
	StockDeleted StockOutcome = "deleted"
	// StockSkipped means the product no longer exists in the catalog; the
	// line is left alone.
	StockSkipped StockOutcome = "skipped"
	// StockFailed means the catalog store returned an error for this line.
	// Other lines are still processed.
	StockFailed StockOutcome = "failed"
)

// StockAdjustment is the per-line result of reconciling a finalized order
// against catalog stock.
type StockAdjustment struct {
	ProductID int64
	Outcome   StockOutcome
	Remaining int
	Err       error
}
