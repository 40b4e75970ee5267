package envelope

import "encoding/json"

// ReplyError is the `error` object of a Reply. Details is only present
// when the originating request's Debug flag was true.
type ReplyError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Reply is the full JSON envelope received server → client, per
// spec §6.
type Reply struct {
	AuthToken string           `json:"authToken"`
	ID        string           `json:"id"`
	Query     string           `json:"query"`
	Data      []map[string]any `json:"data"`
	KeepAlive bool             `json:"keepAlive"`
	Error     ReplyError       `json:"error"`
}

// HasError reports whether the reply carries a non-empty error
// message; an empty message indicates success per spec §7.
func (r Reply) HasError() bool {
	return r.Error.Message != ""
}

// ParseReply decodes raw frame Data into a Reply, wrapping decode
// failures as an envelope Error of kind Deserialize.
func ParseReply(data []byte) (Reply, error) {
	var r Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return Reply{}, &Error{Op: ErrDeserialize, Err: err}
	}
	return r, nil
}
