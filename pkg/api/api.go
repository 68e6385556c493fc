package api

// CommandRequest is a single utterance sent to the assistant. The same shape
// travels over every transport surface: HTTP POST body, websocket text frame,
// and the local control socket.
type CommandRequest struct {
	Query string `json:"query"`
}

// CommandReply carries the assistant's reply, or an error message when the
// request could not be dispatched at all.
type CommandReply struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}
