// Package workflow drives the reply/forward state machine:
// Detected -> ActionChosen -> InputCollected -> Reviewed -> Sent|Failed|Cancelled.
// Each step is stateless; the serialized State blob carried by the chat
// platform between interactions is the only continuity mechanism.
package workflow

import "encoding/json"

// State is the opaque correlation bundle threaded through every step of
// one workflow instance. Losing the blob (process restart mid-flow) is
// equivalent to abandonment; no recovery is attempted.
type State struct {
	Channel         string   `json:"channel"`
	ThreadTS        string   `json:"thread_ts"`
	SubjectGuess    string   `json:"subject_guess,omitempty"`
	ResolvedTo      string   `json:"resolved_to,omitempty"`
	ResolvedSubject string   `json:"resolved_subject,omitempty"`
	ThreadID        string   `json:"thread_id,omitempty"`
	Recipients      []string `json:"recipients,omitempty"`
}

// Encode serializes the bundle for embedding in button values and modal
// metadata. State holds only strings, so marshalling cannot fail.
func (s State) Encode() string {
	data, _ := json.Marshal(s)
	return string(data)
}

// DecodeState deserializes a previously emitted blob. A malformed blob
// yields the zero state rather than an error; the flow then fails at
// the next resolution step like any other abandoned instance.
func DecodeState(blob string) State {
	var s State
	if blob != "" {
		_ = json.Unmarshal([]byte(blob), &s)
	}
	return s
}
