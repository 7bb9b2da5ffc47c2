package flow

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/rules"
)

// CompiledFlow is a FlowDef checked and indexed for execution. Structural
// errors such as dangling stage ids, unknown rules or effects and a missing
// terminal surface here, at load time, never mid-session.
type CompiledFlow struct {
	Def        *model.FlowDef
	stages     map[string]*model.Stage
	order      map[string]int
	fieldRules map[string]map[string]rules.Rule
}

func Compile(def *model.FlowDef) (*CompiledFlow, error) {
	if def == nil || len(def.Stages) == 0 {
		return nil, fmt.Errorf("flow definition has no stages")
	}
	cf := &CompiledFlow{
		Def:        def,
		stages:     make(map[string]*model.Stage),
		order:      make(map[string]int),
		fieldRules: make(map[string]map[string]rules.Rule),
	}
	for i := range def.Stages {
		stage := &def.Stages[i]
		if len(stage.Id) == 0 {
			return nil, fmt.Errorf("flow %s: stage %d has no id", def.Name, i)
		}
		if _, ok := cf.stages[stage.Id]; ok {
			return nil, fmt.Errorf("flow %s: stage id %s is duplicate", def.Name, stage.Id)
		}
		cf.stages[stage.Id] = stage
		cf.order[stage.Id] = i
	}
	if _, ok := cf.stages[def.Entry]; !ok {
		return nil, fmt.Errorf("flow %s: no stage with entry id %s", def.Name, def.Entry)
	}
	terminals := 0
	for i := range def.Stages {
		stage := &def.Stages[i]
		if err := cf.compileStage(stage); err != nil {
			return nil, fmt.Errorf("flow %s: %w", def.Name, err)
		}
		terminals += countTerminals(stage.OnSuccess)
	}
	if terminals == 0 {
		return nil, fmt.Errorf("flow %s: no stage routes to a terminal", def.Name)
	}
	return cf, nil
}

func (cf *CompiledFlow) compileStage(stage *model.Stage) error {
	if err := model.ValidateEffectKind(stage.Effect); err != nil {
		return fmt.Errorf("stage %s: %w", stage.Id, err)
	}
	compiled := make(map[string]rules.Rule)
	for _, field := range stage.Fields {
		name := stage.Rules[field]
		if name == "" {
			name = rules.RULE_NON_EMPTY
		}
		rule, err := rules.Get(name)
		if err != nil {
			return fmt.Errorf("stage %s, field %s: %w", stage.Id, field, err)
		}
		compiled[field] = rule
	}
	cf.fieldRules[stage.Id] = compiled
	if len(stage.Script) > 0 {
		if _, err := goja.Compile(stage.Id, scriptSource(stage.Script), false); err != nil {
			return fmt.Errorf("stage %s: bad script: %w", stage.Id, err)
		}
	}
	if err := cf.checkRoute(stage.Id, stage.OnSuccess); err != nil {
		return err
	}
	if err := cf.checkFailure(stage); err != nil {
		return err
	}
	return nil
}

func (cf *CompiledFlow) checkRoute(stageId string, route model.Route) error {
	switch route.Kind {
	case model.ROUTE_NEXT:
		if _, ok := cf.stages[route.Next]; !ok {
			return fmt.Errorf("stage %s routes to unknown stage %s", stageId, route.Next)
		}
	case model.ROUTE_TERMINAL:
	case model.ROUTE_SWITCH:
		if len(route.Expression) == 0 {
			return fmt.Errorf("stage %s: switch route without expression", stageId)
		}
		if len(route.Cases) == 0 {
			return fmt.Errorf("stage %s: switch route without cases", stageId)
		}
		for _, caseRoute := range route.Cases {
			if err := cf.checkRoute(stageId, caseRoute); err != nil {
				return err
			}
		}
		if route.Default != nil {
			return cf.checkRoute(stageId, *route.Default)
		}
	default:
		return fmt.Errorf("stage %s: unknown route kind %s", stageId, route.Kind)
	}
	return nil
}

func (cf *CompiledFlow) checkFailure(stage *model.Stage) error {
	switch stage.OnFailure.Action {
	case model.FAILURE_RETRY, model.FAILURE_ABORT, "":
	case model.FAILURE_JUMP:
		if _, ok := cf.stages[stage.OnFailure.JumpTo]; !ok {
			return fmt.Errorf("stage %s: failure jump to unknown stage %s", stage.Id, stage.OnFailure.JumpTo)
		}
	default:
		return fmt.Errorf("stage %s: unknown failure action %s", stage.Id, stage.OnFailure.Action)
	}
	return nil
}

func countTerminals(route model.Route) int {
	count := 0
	switch route.Kind {
	case model.ROUTE_TERMINAL:
		count = 1
	case model.ROUTE_SWITCH:
		for _, caseRoute := range route.Cases {
			count += countTerminals(caseRoute)
		}
		if route.Default != nil {
			count += countTerminals(*route.Default)
		}
	}
	return count
}

func (cf *CompiledFlow) Entry() *model.Stage {
	return cf.stages[cf.Def.Entry]
}

func (cf *CompiledFlow) Stage(id string) *model.Stage {
	return cf.stages[id]
}

// validateStage runs the stage's field rules in declared order and returns
// the first failure, then the script check if one is defined. Never touches
// the gateway or the capture device.
func (cf *CompiledFlow) validateStage(stage *model.Stage, data map[string]any) *model.ErrorInfo {
	compiled := cf.fieldRules[stage.Id]
	for _, field := range stage.Fields {
		value := ""
		if raw, ok := data[field]; ok {
			value = fmt.Sprintf("%v", raw)
		}
		if !compiled[field](value) {
			return &model.ErrorInfo{
				Kind:    model.VALIDATION_FAILURE,
				Field:   field,
				Message: fmt.Sprintf("invalid value for field %s", field),
			}
		}
	}
	if len(stage.Script) > 0 {
		ok, err := evalScript(stage.Script, data)
		if err != nil {
			return &model.ErrorInfo{
				Kind:    model.VALIDATION_FAILURE,
				Message: fmt.Sprintf("script check failed: %v", err),
			}
		}
		if !ok {
			return &model.ErrorInfo{
				Kind:    model.VALIDATION_FAILURE,
				Message: "input rejected by stage check",
			}
		}
	}
	return nil
}
