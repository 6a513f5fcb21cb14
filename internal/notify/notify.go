package notify

import (
	"context"

	"ridematcher/internal/models"
)

// Dispatcher delivers one match notification to one recipient. Delivery is
// best-effort: callers log failures and move on, and a failed delivery must
// never fail the search that triggered it.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification models.MatchNotification) error
}
