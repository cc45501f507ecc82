package models

// Message levels used in response envelopes.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// MessagePayload is the status part of a response envelope.
type MessagePayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// IsOk reports whether the message signals success.
func (m MessagePayload) IsOk() bool {
	return m.Level == LevelInfo
}

// MessageInfo builds an INFO message.
func MessageInfo(msg string) MessagePayload {
	return MessagePayload{Level: LevelInfo, Message: msg}
}

// MessageWarn builds a WARN message.
func MessageWarn(msg string) MessagePayload {
	return MessagePayload{Level: LevelWarn, Message: msg}
}

// MessageError builds an ERROR message.
func MessageError(msg string) MessagePayload {
	return MessagePayload{Level: LevelError, Message: msg}
}

// ResponsePayload is the JSON envelope for all API responses.
type ResponsePayload struct {
	Message MessagePayload `json:"message"`
	Data    interface{}    `json:"data,omitempty"`
}

// MessageOnly builds a payload with no data part.
func MessageOnly(m MessagePayload) ResponsePayload {
	return ResponsePayload{Message: m}
}
