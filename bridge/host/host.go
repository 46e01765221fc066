package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/feedbridge/feedbridge/bridge/common"
	"github.com/feedbridge/feedbridge/bridge/correlation"
	"github.com/feedbridge/feedbridge/bridge/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("host")

// ErrTimedOut is returned by dispatch calls when no matching reply arrived
// within the caller's timeout. The waiter is cleaned up before returning.
var ErrTimedOut = errors.New("host: timed out waiting for extension reply")

// BridgeHost owns the framed channel to the extension. It runs the single
// inbound router loop and offers the synchronous dispatch API on top of
// the correlation store.
type BridgeHost struct {
	transport transport.IFrameTransport
	store     *correlation.Store
}

// NewBridgeHost creates a host over the given channel and store. Run must
// be started for dispatch calls to ever complete.
func NewBridgeHost(t transport.IFrameTransport, s *correlation.Store) *BridgeHost {
	return &BridgeHost{
		transport: t,
		store:     s,
	}
}

// --------------------------------------------------------------------------
// Inbound Router
// --------------------------------------------------------------------------

// Run consumes the inbound stream until the extension closes it, routing
// every frame to the correlation store. It must not be invoked from more
// than one goroutine. A cleanly closed stream returns nil, that is the
// regular shutdown path of a native messaging host.
func (h *BridgeHost) Run() error {
	Logger.Infof("Inbound router started")

	for {
		raw, err := h.transport.ReadFrame()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			Logger.Infof("Stdin closed, shutting down")
			return nil
		case errors.Is(err, transport.ErrFrameTooLarge):
			framesMalformed.Inc()
			Logger.Warningf("Dropping oversized frame: %v", err)
			continue
		default:
			return fmt.Errorf("read inbound frame: %w", err)
		}

		framesRead.Inc()
		h.route(raw)
	}
}

// route classifies one deframed payload and routes it. Malformed and
// unrecognized frames are logged and skipped, they never stop the loop.
func (h *BridgeHost) route(raw json.RawMessage) {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		framesMalformed.Inc()
		Logger.Warningf("Dropping empty frame")
		return
	}

	switch payload[0] {
	case '"':
		var lit string
		if err := json.Unmarshal(payload, &lit); err != nil {
			framesMalformed.Inc()
			Logger.Warningf("Dropping malformed frame: %v", err)
			return
		}
		if lit == common.PingMessage {
			pingsAnswered.Inc()
			h.send(common.PongMessage)
			return
		}
		messagesUnrecognized.Inc()
		Logger.Warningf("Skipping unrecognized literal %q", lit)

	case '{':
		var reply common.Reply
		if err := json.Unmarshal(payload, &reply); err != nil {
			framesMalformed.Inc()
			Logger.Warningf("Dropping malformed frame: %v", err)
			return
		}
		h.routeReply(reply, payload)

	default:
		messagesUnrecognized.Inc()
		Logger.Warningf("Skipping unrecognized frame: %s", snippet(payload))
	}
}

// routeReply hands one structured reply to the correlation store and
// acknowledges it.
func (h *BridgeHost) routeReply(reply common.Reply, payload []byte) {
	switch reply.Type {
	case common.ReplyRSSData:
		items, err := decodeItems(reply.Data)
		if err != nil {
			framesMalformed.Inc()
			Logger.Warningf("Dropping rssData frame: %v", err)
			return
		}
		h.store.UpdateBroadcast(items)
		broadcastUpdates.Inc()
		Logger.Infof("Updated unread snapshot: %d items", len(items))
		h.send(common.Ack{Status: common.StatusReceived})

	case common.ReplySingleItem, common.ReplyFolderData, common.ReplyMarkRead:
		id := reply.CorrelationID()
		if h.store.CompleteKeyed(reply.Type.Action(), id, reply) {
			Logger.Debugf("Completed %s waiter for %q", reply.Type, id)
		} else {
			Logger.Warningf("No waiter for %s reply %q, dropping result", reply.Type, id)
		}
		h.send(common.Ack{Status: common.StatusAcknowledged})

	default:
		// Frames without a known discriminator get no acknowledgement, the
		// peer cannot act on one anyway.
		messagesUnrecognized.Inc()
		Logger.Warningf("Skipping message with unrecognized type: %s", snippet(payload))
	}
}

// send writes one router-initiated frame. Write failures are contained
// here, a broken pipe also surfaces as EOF on the read side and ends the
// loop there.
func (h *BridgeHost) send(v any) {
	if err := h.transport.WriteFrame(v); err != nil {
		Logger.Errorf("Error writing outbound frame: %v", err)
		return
	}
	framesWritten.Inc()
}

// --------------------------------------------------------------------------
// Request Dispatcher
// --------------------------------------------------------------------------

// FetchUnread implements IBridge.
func (h *BridgeHost) FetchUnread(timeout time.Duration) ([]json.RawMessage, bool, error) {
	requestCounter(common.ActionGetUnread).Inc()

	// Grab the current round's signal before the request goes out, a reply
	// racing ahead of the select would otherwise be missed.
	signal := h.store.SubscribeBroadcast()

	if err := h.sendRequest(common.NewUnreadRequest()); err != nil {
		return nil, false, err
	}

	select {
	case <-signal:
		items, _ := h.store.ReadBroadcast()
		return items, true, nil
	case <-time.After(timeout):
		timeoutCounter(common.ActionGetUnread).Inc()
		Logger.Warningf("Unread refresh timed out after %s, answering with cached snapshot", timeout)
		items, _ := h.store.ReadBroadcast()
		return items, false, nil
	}
}

// FetchItem implements IBridge.
func (h *BridgeHost) FetchItem(itemID string, timeout time.Duration) (json.RawMessage, error) {
	reply, err := h.dispatchKeyed(common.NewItemRequest(itemID), itemID, timeout)
	if err != nil {
		return nil, err
	}
	if isJSONNull(reply.Data) {
		return nil, nil
	}
	return reply.Data, nil
}

// MarkRead implements IBridge.
func (h *BridgeHost) MarkRead(itemID string, timeout time.Duration) (bool, error) {
	reply, err := h.dispatchKeyed(common.NewMarkReadRequest(itemID), itemID, timeout)
	if err != nil {
		return false, err
	}
	return reply.Success, nil
}

// FetchFolder implements IBridge.
func (h *BridgeHost) FetchFolder(folderPath string, timeout time.Duration) ([]json.RawMessage, error) {
	reply, err := h.dispatchKeyed(common.NewFolderRequest(folderPath), folderPath, timeout)
	if err != nil {
		return nil, err
	}

	items, err := decodeItems(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("folder reply for %q: %w", folderPath, err)
	}
	return items, nil
}

// Stats implements IBridge.
func (h *BridgeHost) Stats() BridgeStats {
	items, updatedAt := h.store.ReadBroadcast()
	return BridgeStats{
		PendingRequests: h.store.PendingKeyed(),
		LastBroadcast:   updatedAt,
		CachedItems:     len(items),
	}
}

// dispatchKeyed registers a waiter, sends the request and waits for the
// reply. The waiter is removed on every exit path: consumed on success,
// cleaned up on send failure and timeout.
func (h *BridgeHost) dispatchKeyed(req *common.Request, id string, timeout time.Duration) (common.Reply, error) {
	requestCounter(req.Action).Inc()

	waiter := h.store.RegisterKeyed(req.Action, id)

	if err := h.sendRequest(req); err != nil {
		h.store.CleanupKeyed(req.Action, id)
		return common.Reply{}, err
	}

	select {
	case <-waiter.Done():
		// A concurrent registration for the same key may have replaced the
		// entry, the zero reply then mirrors an unanswered request.
		reply, _ := h.store.TakeKeyed(req.Action, id)
		return reply, nil
	case <-time.After(timeout):
		timeoutCounter(req.Action).Inc()
		h.store.CleanupKeyed(req.Action, id)
		Logger.Warningf("Request %s for %q timed out after %s", req.Action, id, timeout)
		return common.Reply{}, ErrTimedOut
	}
}

// sendRequest writes one dispatcher-initiated frame, surfacing the error
// to the caller.
func (h *BridgeHost) sendRequest(req *common.Request) error {
	if err := h.transport.WriteFrame(req); err != nil {
		return fmt.Errorf("send %s request: %w", req.Action, err)
	}
	framesWritten.Inc()
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// decodeItems decodes a data array while keeping each item opaque. Null and
// absent arrays normalize to an empty list.
func decodeItems(data json.RawMessage) ([]json.RawMessage, error) {
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode item array: %w", err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// isJSONNull reports whether a raw value is absent or the JSON null
// literal, the shape the extension uses for "no such item".
func isJSONNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// snippet shortens a payload for log lines.
func snippet(payload []byte) string {
	const max = 200
	if len(payload) > max {
		return string(payload[:max]) + "..."
	}
	return string(payload)
}
