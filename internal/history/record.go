package history

import "time"

// LowStockReportThreshold is the stock level at or below which a found item
// counts as low stock in history summaries. Deliberately different from the
// search display threshold (domain.LowStockThreshold): they are independent
// business rules.
const LowStockReportThreshold = 10

// Record is one completed bulk search, persisted for reporting.
type Record struct {
	ID             string
	TotalSearched  int
	Found          int
	NotFound       int
	LowStockFound  int
	Locations      int
	LocationErrors int
	DurationMs     int64
	CreatedAt      time.Time
}
