package host

import (
	"encoding/json"
	"time"
)

// --------------------------------------------------------------------------
// Bridge Dispatch Interface
// --------------------------------------------------------------------------

// BridgeStats is a point-in-time view of the bridge used by health checks.
type BridgeStats struct {
	PendingRequests int       // registered keyed waiters
	LastBroadcast   time.Time // zero until the first snapshot arrived
	CachedItems     int       // items in the current snapshot
}

// IBridge is the synchronous request API consumed by the HTTP layer. Every
// call blocks up to its timeout. ErrTimedOut reports an expired wait, any
// other error a failed send.
type IBridge interface {
	// FetchUnread requests a fresh unread snapshot. On timeout it returns
	// the cached snapshot with fresh set to false instead of failing.
	FetchUnread(timeout time.Duration) (items []json.RawMessage, fresh bool, err error)

	// FetchItem requests a single item. A nil item with a nil error means
	// the extension answered but knows no such item.
	FetchItem(itemID string, timeout time.Duration) (json.RawMessage, error)

	// MarkRead asks the extension to mark an item as read and returns the
	// outcome it reports.
	MarkRead(itemID string, timeout time.Duration) (bool, error)

	// FetchFolder requests all items of one folder. The returned slice is
	// never nil on success.
	FetchFolder(folderPath string, timeout time.Duration) ([]json.RawMessage, error)

	// Stats returns the current bridge counters.
	Stats() BridgeStats
}
