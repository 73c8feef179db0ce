package models

import "encoding/json"

// RequiredFields lists the message record fields every payload must carry,
// in the order validation errors report them.
var RequiredFields = []string{
	"email_subject",
	"email_sender",
	"email_timestream",
	"email_content",
}

// Envelope is the full request body submitted to the API: the message record
// plus the caller's auth token.
//
// Data keeps raw JSON values so the record is forwarded to the queue exactly
// as submitted; field values are opaque and no type checking is applied.
// The pointer and map nil-ness distinguish an absent key from an empty value.
// A JSON-null token decodes to a nil pointer and is rejected as missing
// rather than compared as a credential.
type Envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Token *string                    `json:"token"`
}

// SubmitResponse is the API response for an accepted message.
type SubmitResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}
