package model

import "fmt"

type EffectKind string

const EFFECT_NONE EffectKind = ""
const EFFECT_CHECK_IDENTITY EffectKind = "check_identity"
const EFFECT_CAPTURE_VERIFY EffectKind = "capture_verify"
const EFFECT_SUBMIT_STEP EffectKind = "submit_step"
const EFFECT_SUBMIT_CAPTURE_VERIFY EffectKind = "submit_capture_verify"
const EFFECT_CAPTURE_SUBMIT EffectKind = "capture_submit"

func ValidateEffectKind(kind EffectKind) error {
	switch kind {
	case EFFECT_NONE, EFFECT_CHECK_IDENTITY, EFFECT_CAPTURE_VERIFY,
		EFFECT_SUBMIT_STEP, EFFECT_SUBMIT_CAPTURE_VERIFY, EFFECT_CAPTURE_SUBMIT:
		return nil
	}
	return fmt.Errorf("unknown effect kind %s", kind)
}

type RouteKind string

const ROUTE_NEXT RouteKind = "next"
const ROUTE_TERMINAL RouteKind = "terminal"
const ROUTE_SWITCH RouteKind = "switch"

// Route decides where a stage transition lands. A next route names the
// following stage, a terminal route ends the flow with a payload, and a
// switch route picks one of its cases by evaluating a jsonpath expression
// against the accumulated form data.
type Route struct {
	Kind       RouteKind        `json:"kind" yaml:"kind"`
	Next       string           `json:"next,omitempty" yaml:"next,omitempty"`
	Payload    map[string]any   `json:"payload,omitempty" yaml:"payload,omitempty"`
	Expression string           `json:"expression,omitempty" yaml:"expression,omitempty"`
	Cases      map[string]Route `json:"cases,omitempty" yaml:"cases,omitempty"`
	Default    *Route           `json:"default,omitempty" yaml:"default,omitempty"`
}

type FailureAction string

const FAILURE_RETRY FailureAction = "retry"
const FAILURE_JUMP FailureAction = "jump"
const FAILURE_ABORT FailureAction = "abort"

type FailurePolicy struct {
	Action FailureAction `json:"action" yaml:"action"`
	JumpTo string        `json:"jumpTo,omitempty" yaml:"jumpTo,omitempty"`
}

// Stage is one step of a flow. Fields lists the form fields the stage
// collects, in validation order. Rules maps a field to a named validation
// rule; fields without an entry default to the non-empty rule. Script is an
// optional boolean expression evaluated over the form data after the field
// rules pass.
type Stage struct {
	Id        string            `json:"id" yaml:"id"`
	Fields    []string          `json:"fields,omitempty" yaml:"fields,omitempty"`
	Rules     map[string]string `json:"rules,omitempty" yaml:"rules,omitempty"`
	Script    string            `json:"script,omitempty" yaml:"script,omitempty"`
	Effect    EffectKind        `json:"effect,omitempty" yaml:"effect,omitempty"`
	EffectArg string            `json:"effectArg,omitempty" yaml:"effectArg,omitempty"`
	OnSuccess Route             `json:"onSuccess" yaml:"onSuccess"`
	OnFailure FailurePolicy     `json:"onFailure" yaml:"onFailure"`

	// FailureMessage is shown when the backend declines without a message.
	FailureMessage string `json:"failureMessage,omitempty" yaml:"failureMessage,omitempty"`
}

// FlowDef is a flow definition: an ordered stage list with a single entry
// stage. Stage order matters beyond entry lookup: a jump failure policy
// resets the form fields of every stage at or after the jump target.
type FlowDef struct {
	Name   string  `json:"name" yaml:"name"`
	Entry  string  `json:"entry" yaml:"entry"`
	Stages []Stage `json:"stages" yaml:"stages"`
}
