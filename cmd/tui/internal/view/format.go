package view

import (
	"context"
	"fmt"
	"time"
)

// dbTimeout bounds the inline queries the screens fire. The import commit
// carries its own, longer budget.
const dbTimeout = 5 * time.Second

// FormatAmount renders ledger cents as a signed decimal string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}

// FormatDate renders a posted date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns the standard short context for screen-driven queries.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
