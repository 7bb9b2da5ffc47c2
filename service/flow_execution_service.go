package service

import (
	"context"
	"sync"
	"time"

	"github.com/facepay/flowgate/capture"
	"github.com/facepay/flowgate/container"
	"github.com/facepay/flowgate/flow"
	"github.com/facepay/flowgate/gateway"
	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/metrics"
	"github.com/facepay/flowgate/model"
	"go.uber.org/zap"
)

// FlowExecutionService owns the live machines. The single-flight and
// cancellation guarantees live on the machine, so a live session is always
// routed to the same machine instance. Storage keeps context snapshots: a
// session absent from the in-process map, started on another replica or
// evicted here, is rebuilt from its persisted context on first use.
type FlowExecutionService struct {
	container *container.DIContainer
	gateway   gateway.Gateway
	capture   capture.Provider

	mu       sync.Mutex
	machines map[string]*machineEntry
}

type machineEntry struct {
	machine     *flow.Machine
	lastTouched time.Time
}

func NewFlowExecutionService(container *container.DIContainer, gw gateway.Gateway, cp capture.Provider) *FlowExecutionService {
	return &FlowExecutionService{
		container: container,
		gateway:   gw,
		capture:   cp,
		machines:  make(map[string]*machineEntry),
	}
}

func (s *FlowExecutionService) StartFlow(name string, input map[string]any) (*model.FlowContext, error) {
	def, err := s.container.GetDefinitionStorage().GetDefinition(name)
	if err != nil {
		return nil, err
	}
	compiled, err := flow.Compile(def)
	if err != nil {
		return nil, err
	}
	machine := flow.NewMachine(compiled, s.gateway, s.capture, input)
	snapshot := machine.Snapshot()
	s.mu.Lock()
	s.machines[snapshot.Id] = &machineEntry{machine: machine, lastTouched: time.Now()}
	s.mu.Unlock()
	if err := s.container.GetSessionStorage().SaveSession(snapshot); err != nil {
		return nil, err
	}
	metrics.SessionsStarted.WithLabelValues(name).Inc()
	logger.Info("started flow session", zap.String("flow", name), zap.String("session", snapshot.Id))
	return snapshot, nil
}

func (s *FlowExecutionService) Submit(ctx context.Context, sessionId string, input map[string]any) (*model.FlowContext, error) {
	machine, err := s.machineFor(sessionId)
	if err != nil {
		return nil, err
	}
	snapshot, err := machine.Submit(ctx, input)
	if err != nil {
		return nil, err
	}
	s.afterUpdate(snapshot)
	return snapshot, nil
}

func (s *FlowExecutionService) GoBack(sessionId string) (*model.FlowContext, error) {
	machine, err := s.machineFor(sessionId)
	if err != nil {
		return nil, err
	}
	snapshot, err := machine.GoBack()
	if err != nil {
		return nil, err
	}
	s.afterUpdate(snapshot)
	return snapshot, nil
}

func (s *FlowExecutionService) Cancel(sessionId string) error {
	machine, err := s.machineFor(sessionId)
	if err != nil {
		return err
	}
	machine.Cancel()
	snapshot := machine.Snapshot()
	metrics.SessionsDiscarded.WithLabelValues(snapshot.FlowName).Inc()
	s.drop(sessionId)
	logger.Info("cancelled flow session", zap.String("session", sessionId))
	return nil
}

func (s *FlowExecutionService) AckError(sessionId string) error {
	machine, err := s.machineFor(sessionId)
	if err != nil {
		return err
	}
	machine.AckError()
	s.afterUpdate(machine.Snapshot())
	return nil
}

func (s *FlowExecutionService) Get(sessionId string) (*model.FlowContext, error) {
	s.mu.Lock()
	entry, ok := s.machines[sessionId]
	s.mu.Unlock()
	if ok {
		return entry.machine.Snapshot(), nil
	}
	return s.container.GetSessionStorage().GetSession(sessionId)
}

func (s *FlowExecutionService) machineFor(sessionId string) (*flow.Machine, error) {
	s.mu.Lock()
	entry, ok := s.machines[sessionId]
	if ok {
		entry.lastTouched = time.Now()
		s.mu.Unlock()
		return entry.machine, nil
	}
	s.mu.Unlock()
	return s.restore(sessionId)
}

// restore rebuilds a machine from the persisted context. Covers sessions
// started on another replica and sessions evicted from this process.
func (s *FlowExecutionService) restore(sessionId string) (*flow.Machine, error) {
	flowCtx, err := s.container.GetSessionStorage().GetSession(sessionId)
	if err != nil {
		return nil, err
	}
	def, err := s.container.GetDefinitionStorage().GetDefinition(flowCtx.FlowName)
	if err != nil {
		return nil, err
	}
	compiled, err := flow.Compile(def)
	if err != nil {
		return nil, err
	}
	machine := flow.Restore(compiled, s.gateway, s.capture, flowCtx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.machines[sessionId]; ok {
		return entry.machine, nil
	}
	s.machines[sessionId] = &machineEntry{machine: machine, lastTouched: time.Now()}
	logger.Info("restored session from storage",
		zap.String("flow", flowCtx.FlowName), zap.String("session", sessionId))
	return machine, nil
}

func (s *FlowExecutionService) afterUpdate(snapshot *model.FlowContext) {
	if snapshot.LastError != nil {
		metrics.StageFailures.WithLabelValues(snapshot.FlowName, string(snapshot.LastError.Kind)).Inc()
	}
	switch snapshot.State {
	case model.COMPLETED:
		metrics.SessionsCompleted.WithLabelValues(snapshot.FlowName).Inc()
		s.drop(snapshot.Id)
	case model.ABORTED:
		metrics.SessionsDiscarded.WithLabelValues(snapshot.FlowName).Inc()
		s.drop(snapshot.Id)
	default:
		if err := s.container.GetSessionStorage().SaveSession(snapshot); err != nil {
			logger.Error("error persisting session", zap.String("session", snapshot.Id), zap.Error(err))
		}
	}
}

func (s *FlowExecutionService) drop(sessionId string) {
	s.mu.Lock()
	delete(s.machines, sessionId)
	s.mu.Unlock()
	if err := s.container.GetSessionStorage().DeleteSession(sessionId); err != nil {
		logger.Error("error deleting session", zap.String("session", sessionId), zap.Error(err))
	}
}

// Expire cancels machines idle beyond maxIdle. Driven by the reaper tick.
func (s *FlowExecutionService) Expire(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	var expired []string
	for id, entry := range s.machines {
		if entry.lastTouched.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()
	for _, id := range expired {
		logger.Info("expiring idle session", zap.String("session", id))
		if err := s.Cancel(id); err != nil {
			logger.Error("error expiring session", zap.String("session", id), zap.Error(err))
		}
	}
}
