package host

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/feedbridge/feedbridge/bridge/common"
)

// Counter names follow the feedbridge_<subject>_total convention so the
// /metrics endpoint stays grep-able.
var (
	framesRead           = metrics.NewCounter("feedbridge_frames_read_total")
	framesWritten        = metrics.NewCounter("feedbridge_frames_written_total")
	framesMalformed      = metrics.NewCounter("feedbridge_frames_malformed_total")
	messagesUnrecognized = metrics.NewCounter("feedbridge_messages_unrecognized_total")
	pingsAnswered        = metrics.NewCounter("feedbridge_pings_total")
	broadcastUpdates     = metrics.NewCounter("feedbridge_broadcast_updates_total")
)

// requestCounter counts dispatched requests per kind.
func requestCounter(action common.Action) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`feedbridge_requests_total{kind=%q}`, action))
}

// timeoutCounter counts requests that ran out of time per kind.
func timeoutCounter(action common.Action) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`feedbridge_request_timeouts_total{kind=%q}`, action))
}
