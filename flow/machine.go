package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/facepay/flowgate/capture"
	"github.com/facepay/flowgate/gateway"
	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/util"
	"github.com/google/uuid"
	"github.com/oliveagle/jsonpath"
	"go.uber.org/zap"
)

// Machine drives one FlowContext through a compiled flow. A machine is
// single-flight: at most one effect is outstanding at a time, a concurrent
// Submit returns BusyError. Cancel bumps the context generation so the
// eventual result of an in-flight effect is discarded instead of mutating a
// dead session.
type Machine struct {
	flow    *CompiledFlow
	gateway gateway.Gateway
	capture capture.Provider

	mu       sync.Mutex
	inflight bool
	ctx      *model.FlowContext
}

func NewMachine(flow *CompiledFlow, gw gateway.Gateway, cp capture.Provider, initial map[string]any) *Machine {
	data := make(map[string]any)
	for k, v := range initial {
		data[k] = v
	}
	return &Machine{
		flow:    flow,
		gateway: gw,
		capture: cp,
		ctx: &model.FlowContext{
			Id:           uuid.New().String(),
			FlowName:     flow.Def.Name,
			CurrentStage: flow.Def.Entry,
			Data:         data,
			State:        model.RUNNING,
			History:      []string{flow.Def.Entry},
		},
	}
}

// Restore rebuilds a machine around a persisted context.
func Restore(flow *CompiledFlow, gw gateway.Gateway, cp capture.Provider, flowCtx *model.FlowContext) *Machine {
	return &Machine{
		flow:    flow,
		gateway: gw,
		capture: cp,
		ctx:     flowCtx,
	}
}

func (m *Machine) Id() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx.Id
}

// Snapshot returns a copy the caller can hold without observing later
// mutation.
func (m *Machine) Snapshot() *model.FlowContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() *model.FlowContext {
	snap := *m.ctx
	snap.Data = make(map[string]any, len(m.ctx.Data))
	for k, v := range m.ctx.Data {
		snap.Data[k] = v
	}
	snap.History = append([]string(nil), m.ctx.History...)
	if m.ctx.LastError != nil {
		errCopy := *m.ctx.LastError
		snap.LastError = &errCopy
	}
	if m.ctx.Output != nil {
		snap.Output = make(map[string]any, len(m.ctx.Output))
		for k, v := range m.ctx.Output {
			snap.Output[k] = v
		}
	}
	return &snap
}

// Submit merges input into the form data and advances the current stage:
// validation first (no effect runs on invalid input), then the stage effect
// if it has one, then the success or failure route.
func (m *Machine) Submit(ctx context.Context, input map[string]any) (*model.FlowContext, error) {
	m.mu.Lock()
	if m.ctx.Terminal() {
		m.mu.Unlock()
		return nil, model.SessionEndedError{SessionId: m.ctx.Id, State: m.ctx.State}
	}
	if m.inflight {
		m.mu.Unlock()
		return nil, model.BusyError{SessionId: m.ctx.Id}
	}
	for k, v := range input {
		m.ctx.Data[k] = v
	}
	stage := m.flow.Stage(m.ctx.CurrentStage)
	if errInfo := m.flow.validateStage(stage, m.ctx.Data); errInfo != nil {
		m.ctx.LastError = errInfo
		snapshot := m.snapshotLocked()
		m.mu.Unlock()
		return snapshot, nil
	}
	m.ctx.LastError = nil
	if stage.Effect == model.EFFECT_NONE {
		m.route(stage.OnSuccess)
		snapshot := m.snapshotLocked()
		m.mu.Unlock()
		return snapshot, nil
	}

	m.inflight = true
	m.ctx.State = model.PENDING
	generation := m.ctx.Generation
	data := make(map[string]any, len(m.ctx.Data))
	for k, v := range m.ctx.Data {
		data[k] = v
	}
	m.mu.Unlock()

	out, errInfo := m.runEffect(ctx, stage, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight = false
	if m.ctx.Generation != generation {
		// session was cancelled while the effect was in flight
		logger.Debug("discarding stale effect result",
			zap.String("flow", m.ctx.FlowName), zap.String("session", m.ctx.Id))
		return nil, model.SessionEndedError{SessionId: m.ctx.Id, State: m.ctx.State}
	}
	m.ctx.State = model.RUNNING
	if errInfo == nil {
		for k, v := range out {
			m.ctx.Data[k] = v
		}
		m.route(stage.OnSuccess)
		return m.snapshotLocked(), nil
	}
	if errInfo.Message == "" {
		if stage.FailureMessage != "" {
			errInfo.Message = stage.FailureMessage
		} else {
			errInfo.Message = "request failed"
		}
	}
	m.ctx.LastError = errInfo
	m.applyFailurePolicy(stage, errInfo)
	return m.snapshotLocked(), nil
}

// Domain rejections follow the stage policy; capture and network failures
// always leave the stage untouched for a caller-initiated retry.
func (m *Machine) applyFailurePolicy(stage *model.Stage, errInfo *model.ErrorInfo) {
	if errInfo.Kind != model.DOMAIN_REJECTION {
		return
	}
	switch stage.OnFailure.Action {
	case model.FAILURE_JUMP:
		m.jumpTo(stage.OnFailure.JumpTo)
	case model.FAILURE_ABORT:
		m.ctx.State = model.ABORTED
		m.capture.Deactivate()
	}
}

// jumpTo moves to an earlier stage and wipes the form fields of every stage
// at or after the target, so the caller re-enters them from scratch.
func (m *Machine) jumpTo(target string) {
	from := m.flow.order[target]
	for _, stage := range m.flow.Def.Stages {
		if m.flow.order[stage.Id] < from {
			continue
		}
		for _, field := range stage.Fields {
			delete(m.ctx.Data, field)
		}
	}
	m.ctx.CurrentStage = target
	m.ctx.History = append(m.ctx.History, target)
}

func (m *Machine) route(r model.Route) {
	switch r.Kind {
	case model.ROUTE_NEXT:
		m.ctx.CurrentStage = r.Next
		m.ctx.History = append(m.ctx.History, r.Next)
	case model.ROUTE_TERMINAL:
		m.ctx.State = model.COMPLETED
		m.ctx.Output = util.ResolveParams(m.ctx.Data, r.Payload)
	case model.ROUTE_SWITCH:
		value, err := jsonpath.JsonPathLookup(m.ctx.Data, r.Expression)
		if err != nil {
			m.ctx.LastError = &model.ErrorInfo{
				Kind:    model.DOMAIN_REJECTION,
				Message: fmt.Sprintf("no value for route expression %s", r.Expression),
			}
			return
		}
		key := fmt.Sprintf("%v", value)
		if caseRoute, ok := r.Cases[key]; ok {
			m.route(caseRoute)
			return
		}
		if r.Default != nil {
			m.route(*r.Default)
			return
		}
		m.ctx.LastError = &model.ErrorInfo{
			Kind:    model.DOMAIN_REJECTION,
			Message: fmt.Sprintf("no route for value %s", key),
		}
	}
}

// GoBack pops the history one entry. No validation re-runs and the error is
// cleared. Calling it at the entry stage is an explicit error.
func (m *Machine) GoBack() (*model.FlowContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Terminal() {
		return nil, model.SessionEndedError{SessionId: m.ctx.Id, State: m.ctx.State}
	}
	if m.inflight {
		return nil, model.BusyError{SessionId: m.ctx.Id}
	}
	if len(m.ctx.History) <= 1 {
		return nil, model.AtEntryStageError{SessionId: m.ctx.Id}
	}
	m.ctx.History = m.ctx.History[:len(m.ctx.History)-1]
	m.ctx.CurrentStage = m.ctx.History[len(m.ctx.History)-1]
	m.ctx.LastError = nil
	return m.snapshotLocked(), nil
}

// Cancel discards the session unconditionally. An in-flight effect keeps
// running but its result is dropped on resolution.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Terminal() {
		return
	}
	m.ctx.Generation++
	m.ctx.State = model.DISCARDED
	m.ctx.Data = make(map[string]any)
	m.ctx.LastError = nil
	m.capture.Deactivate()
}

// AckError clears the last error once the caller has shown it.
func (m *Machine) AckError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx.LastError = nil
}
