package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Outbound Requests (bridge -> extension)
// --------------------------------------------------------------------------

// Request represents a single outbound request frame sent to the extension.
// Which fields are set depends on the action.
type Request struct {
	// Action selects the operation the extension performs
	Action Action `json:"action"`

	ItemID     string `json:"itemId,omitempty"`     // Used for: markAsRead, getSingleItem
	FolderPath string `json:"folderPath,omitempty"` // Used for: getFolderItems
}

// --------------------------------------------------------------------------
// Request Factory Functions
// --------------------------------------------------------------------------

// NewUnreadRequest creates the request for a fresh unread snapshot
func NewUnreadRequest() *Request {
	return &Request{
		Action: ActionGetUnread,
	}
}

// NewMarkReadRequest creates the request to mark one item as read
func NewMarkReadRequest(itemID string) *Request {
	return &Request{
		Action: ActionMarkRead,
		ItemID: itemID,
	}
}

// NewItemRequest creates the request for a single item
func NewItemRequest(itemID string) *Request {
	return &Request{
		Action: ActionGetItem,
		ItemID: itemID,
	}
}

// NewFolderRequest creates the request for all items of one folder
func NewFolderRequest(folderPath string) *Request {
	return &Request{
		Action:     ActionGetFolder,
		FolderPath: folderPath,
	}
}

// --------------------------------------------------------------------------
// Inbound Replies (extension -> bridge)
// --------------------------------------------------------------------------

// Reply represents a single structured inbound frame from the extension.
// Which fields are set depends on the type of reply. Data stays opaque,
// the bridge never interprets item content.
type Reply struct {
	// Type of reply
	Type ReplyType `json:"type"`

	ItemID     string          `json:"itemId,omitempty"`     // Used for: singleItemData, markReadResult
	FolderPath string          `json:"folderPath,omitempty"` // Used for: folderData
	Data       json.RawMessage `json:"data,omitempty"`       // Used for: rssData, singleItemData, folderData
	Success    bool            `json:"success,omitempty"`    // Used for: markReadResult
}

// CorrelationID returns the application identifier a keyed reply is matched
// by. Broadcast replies carry no identifier.
func (r *Reply) CorrelationID() string {
	if r.Type == ReplyFolderData {
		return r.FolderPath
	}
	return r.ItemID
}

// --------------------------------------------------------------------------
// Reply Factory Functions
// --------------------------------------------------------------------------

// NewRSSDataReply creates the broadcast snapshot reply
func NewRSSDataReply(data json.RawMessage) *Reply {
	return &Reply{
		Type: ReplyRSSData,
		Data: data,
	}
}

// NewItemReply creates the reply for a single item request
func NewItemReply(itemID string, data json.RawMessage) *Reply {
	return &Reply{
		Type:   ReplySingleItem,
		ItemID: itemID,
		Data:   data,
	}
}

// NewFolderReply creates the reply for a folder listing request
func NewFolderReply(folderPath string, data json.RawMessage) *Reply {
	return &Reply{
		Type:       ReplyFolderData,
		FolderPath: folderPath,
		Data:       data,
	}
}

// NewMarkReadReply creates the reply confirming a mark-as-read request
func NewMarkReadReply(itemID string, success bool) *Reply {
	return &Reply{
		Type:    ReplyMarkRead,
		ItemID:  itemID,
		Success: success,
	}
}

// --------------------------------------------------------------------------
// Acknowledgements and Control Literals
// --------------------------------------------------------------------------

const (
	// StatusReceived acknowledges a broadcast snapshot frame
	StatusReceived = "received"

	// StatusAcknowledged acknowledges a keyed reply frame
	StatusAcknowledged = "acknowledged"

	// PingMessage and PongMessage are the literal liveness probe frames.
	// They are bare JSON strings on the wire, not objects.
	PingMessage = "ping"
	PongMessage = "pong"
)

// Ack is the acknowledgement frame sent back for every routed reply.
type Ack struct {
	Status string `json:"status"`
}

// --------------------------------------------------------------------------
// Action Type Definition
// --------------------------------------------------------------------------

// Action defines the type of outbound request sent to the extension.
type Action uint8

// String returns the wire name of an Action.
func (a Action) String() string {
	switch a {
	case ActionGetUnread:
		return "getUnreadRSS"
	case ActionMarkRead:
		return "markAsRead"
	case ActionGetItem:
		return "getSingleItem"
	case ActionGetFolder:
		return "getFolderItems"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for Action.
// This allows Action to be serialized as a string in JSON.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Action.
// This allows Action to be deserialized from a string in JSON.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to Action
	switch s {
	case "getUnreadRSS":
		*a = ActionGetUnread
	case "markAsRead":
		*a = ActionMarkRead
	case "getSingleItem":
		*a = ActionGetItem
	case "getFolderItems":
		*a = ActionGetFolder
	default:
		return fmt.Errorf("unknown action: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Reply Type Definition
// --------------------------------------------------------------------------

// ReplyType defines the discriminator of inbound structured frames.
type ReplyType uint8

// Action returns the request kind a reply type correlates with.
func (t ReplyType) Action() Action {
	switch t {
	case ReplyRSSData:
		return ActionGetUnread
	case ReplySingleItem:
		return ActionGetItem
	case ReplyFolderData:
		return ActionGetFolder
	case ReplyMarkRead:
		return ActionMarkRead
	default:
		return ActionUnknown
	}
}

// String returns the wire name of a ReplyType.
func (t ReplyType) String() string {
	switch t {
	case ReplyRSSData:
		return "rssData"
	case ReplySingleItem:
		return "singleItemData"
	case ReplyFolderData:
		return "folderData"
	case ReplyMarkRead:
		return "markReadResult"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for ReplyType.
// This allows ReplyType to be serialized as a string in JSON.
func (t ReplyType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for ReplyType.
// Unknown discriminators map to ReplyUnknown instead of failing the decode,
// the router skips those frames without treating them as malformed.
func (t *ReplyType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to ReplyType
	switch s {
	case "rssData":
		*t = ReplyRSSData
	case "singleItemData":
		*t = ReplySingleItem
	case "folderData":
		*t = ReplyFolderData
	case "markReadResult":
		*t = ReplyMarkRead
	default:
		*t = ReplyUnknown
	}

	return nil
}

// --------------------------------------------------------------------------
// Protocol Constants
// --------------------------------------------------------------------------

const (
	// ActionUnknown is the zero value and never valid on the wire
	ActionUnknown Action = iota

	ActionGetUnread // Request the full unread item snapshot
	ActionMarkRead  // Mark a single item as read
	ActionGetItem   // Fetch a single item by id
	ActionGetFolder // Fetch all items of one folder
)

const (
	// ReplyUnknown is the zero value, assigned to unrecognized discriminators
	ReplyUnknown ReplyType = iota

	ReplyRSSData    // Broadcast unread snapshot
	ReplySingleItem // Single item payload
	ReplyFolderData // Folder listing payload
	ReplyMarkRead   // Mark-as-read confirmation
)
