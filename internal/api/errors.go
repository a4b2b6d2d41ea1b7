package api

import "fmt"

// Error is the single failure shape surfaced by the client.
//
// Application failures (a non-2xx response) carry the HTTP status and
// the raw body. Transport failures have Status 0; timeouts
// additionally set Timeout so callers can tell "the server said no"
// from "the server never answered".
type Error struct {
	Message string
	Status  int
	Payload []byte
	Timeout bool
}

func (e *Error) Error() string {
	if e.Timeout {
		return "request timed out: " + e.Message
	}
	return e.Message
}

// detailBody is the conventional error envelope: a JSON object with
// an optional human-readable detail field.
type detailBody struct {
	Detail string `json:"detail"`
}

// statusError builds an application Error from a failed response,
// preferring the server-supplied detail, then the raw body text, then
// a generic status message.
func statusError(status int, body []byte, detail string) *Error {
	msg := detail
	if msg == "" {
		msg = string(body)
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Message: msg, Status: status, Payload: body}
}
