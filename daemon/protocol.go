// Package daemon implements the long-running vicayad process: a Unix
// domain socket speaking newline-delimited JSON, one request per
// connection, no pipelining. The framing is grounded in the general
// dial/call/decode shape of zoekt's rpc package, swapped from gob-RPC to
// JSON because that is the wire format the spec fixes for this system.
package daemon

import "github.com/vicaya/vicaya"

// Request is the envelope every client message arrives in. Only a
// RequestSearch carries a payload (the Search field); Status, Rebuild and
// Shutdown carry none, and a Rebuild always performs a full rebuild (there
// is no dry-run option).
type Request struct {
	Type string `json:"type"`

	Search *SearchParams `json:"search,omitempty"`
}

// RequestType values, transcribed from spec §6.
const (
	RequestSearch   = "search"
	RequestStatus   = "status"
	RequestRebuild  = "rebuild"
	RequestShutdown = "shutdown"
)

// SearchParams is the payload of a RequestSearch request.
type SearchParams struct {
	Term  string `json:"term"`
	Limit int    `json:"limit"`
	Scope string `json:"scope,omitempty"`
}

// Response is the envelope every server reply arrives in.
type Response struct {
	Type string `json:"type"`

	Results      []vicaya.SearchResult `json:"results,omitempty"`
	Stats        *vicaya.Stats         `json:"stats,omitempty"`
	FilesIndexed int                   `json:"files_indexed,omitempty"`
	Message      string                `json:"message,omitempty"`
}

// ResponseType values, transcribed from spec §6.
const (
	ResponseSearchResults   = "search_results"
	ResponseStatus          = "status"
	ResponseRebuildComplete = "rebuild_complete"
	ResponseOk              = "ok"
	ResponseError           = "error"
)

func okResponse() Response {
	return Response{Type: ResponseOk}
}

func errorResponse(msg string) Response {
	return Response{Type: ResponseError, Message: msg}
}
