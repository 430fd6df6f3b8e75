package queue

import (
	"encoding/json"
	"time"
)

// KindContractAnalysis is the only job kind the worker processes today.
const KindContractAnalysis = "contract_analysis"

// MessageVersion is the current payload version.
const MessageVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Kind       string `json:"kind"`
	AnalysisID string `json:"analysisId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewContractMessage builds a contract-analysis message stamped with now.
func NewContractMessage(analysisID, requestID string, now time.Time) Message {
	return Message{
		Kind:       KindContractAnalysis,
		AnalysisID: analysisID,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. Payloads without a kind
// predate job kinds and are contract analyses.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Kind == "" {
		msg.Kind = KindContractAnalysis
	}
	return msg, nil
}
