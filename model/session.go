package model

type SessionState int

const RUNNING SessionState = 1
const PENDING SessionState = 2
const COMPLETED SessionState = 3
const ABORTED SessionState = 4
const DISCARDED SessionState = 5

// FlowContext is the live state of one flow run. Data accumulates submitted
// form fields and effect response fields; values are overwritten, never
// removed, until the session ends. Generation is bumped on cancel so a slow
// effect resolving afterwards cannot mutate a discarded session.
type FlowContext struct {
	Id           string         `json:"id"`
	FlowName     string         `json:"flowName"`
	CurrentStage string         `json:"currentStage"`
	Data         map[string]any `json:"data"`
	State        SessionState   `json:"state"`
	Generation   uint64         `json:"generation"`
	History      []string       `json:"history"`
	LastError    *ErrorInfo     `json:"lastError,omitempty"`
	Output       map[string]any `json:"output,omitempty"`
}

func (c *FlowContext) Terminal() bool {
	return c.State == COMPLETED || c.State == ABORTED || c.State == DISCARDED
}

type FlowStartRequest struct {
	FlowName string         `json:"flowName"`
	Input    map[string]any `json:"input"`
}

type StageSubmitRequest struct {
	Input map[string]any `json:"input"`
}
