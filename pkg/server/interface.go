/*
Package server implements msgpack IPC for trigger detection services.

The server package provides a minimal interface for snippet trigger
detection using msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports detection requests,
snippet library management ops, and config updates. Messages are processed
synchronously with timing info included in responses.

# IPC

The server operates on a request response model where clients send
structured messages via stdin and receive responses through stdout. Each
message contains an ID field, a cmd field naming the operation, and other
fields based on the operation type.

Detection requests use mainly this structure:

	{"id": "req_001", "cmd": "detect", "x": "hello ;sig", "cur": 10}

The server responds with the verdict for the text in front of the cursor:

	{"id": "req_001", "st": "complete", "m": true, "tr": ";sig", "c": "Best, ...", "e": 10, "t": 145}

Ambiguous verdicts carry the possible completions so the host can offer a
cycling UI and re-invoke with the user's pick:

	{"id": "req_002", "st": "ambiguous", "m": false, "pt": ";gb", "cm": [";gb", ";gballs"], "t": 98}

Snippet management enables runtime reloads and prefix listings:

	{"id": "snip_001", "cmd": "snippets", "action": "reload"}
	{"id": "snip_002", "cmd": "snippets", "action": "list", "prefix": ";g"}

config messages allow adjustment of detector parameters without restart;
changes are persisted back to the TOML config.

Response structures include status information and error details when an op
fails. Requests are processed strictly in order; a detection response always
reflects the snippet set loaded at the time its request was read.

# Message Types

DetectRequest and DetectResponse handle the main per-keystroke exchange.
Request includes the live text and an optional cursor offset (runes).
Responses contain the trigger state, match payload and timing data in
microseconds.

SnippetRequest and SnippetResponse manage runtime library operations.
Supported actions: getting current information, reloading the backing file,
and listing triggers by prefix.
*/
package server

// Envelope carries the fields shared by every request; it is decoded first
// to route the message.
type Envelope struct {
	ID  string `msgpack:"id"`
	Cmd string `msgpack:"cmd"`
}

// DetectRequest - per-keystroke detection request
type DetectRequest struct {
	ID     string `msgpack:"id"`
	Cmd    string `msgpack:"cmd"`
	Text   string `msgpack:"x"`
	Cursor *int   `msgpack:"cur,omitempty"` // rune offset; absent means end of text
}

// DetectResponse - detection verdict
type DetectResponse struct {
	ID          string   `msgpack:"id"`
	State       string   `msgpack:"st"`
	Match       bool     `msgpack:"m"`
	Trigger     string   `msgpack:"tr,omitempty"`
	Content     string   `msgpack:"c,omitempty"`
	MatchEnd    int      `msgpack:"e,omitempty"`
	Potential   string   `msgpack:"pt,omitempty"`
	Completions []string `msgpack:"cm,omitempty"`
	TimeTaken   int64    `msgpack:"t"` // microseconds
}

// SnippetRequest - snippet library management request
type SnippetRequest struct {
	ID     string `msgpack:"id"`
	Cmd    string `msgpack:"cmd"`
	Action string `msgpack:"action"`           // "get_info", "reload", "list"
	Prefix string `msgpack:"prefix,omitempty"` // for "list"
}

// SnippetResponse - snippet library operation response
type SnippetResponse struct {
	ID       string   `msgpack:"id"`
	Status   string   `msgpack:"status"`
	Error    string   `msgpack:"error,omitempty"`
	Count    int      `msgpack:"count,omitempty"`
	Skipped  int      `msgpack:"skipped,omitempty"`
	File     string   `msgpack:"file,omitempty"`
	Triggers []string `msgpack:"triggers,omitempty"`
}

// ConfigRequest - detector settings update (persisted to TOML)
type ConfigRequest struct {
	ID               string  `msgpack:"id"`
	Cmd              string  `msgpack:"cmd"`
	Prefix           *string `msgpack:"prefix,omitempty"`
	MaxTriggerLength *int    `msgpack:"max_trigger_length,omitempty"`
	CaseSensitive    *bool   `msgpack:"case_sensitive,omitempty"`
}

// ConfigResponse - config operation response
type ConfigResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`
}

// StatusResponse - generic status signal ("ready", "ok")
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// RequestError holds basic error information for malformed requests
type RequestError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
