package flow

import (
	"testing"

	"github.com/facepay/flowgate/model"
	"github.com/stretchr/testify/require"
)

func twoStageDef() *model.FlowDef {
	return &model.FlowDef{
		Name:  "two_stage",
		Entry: "first",
		Stages: []model.Stage{
			{
				Id:        "first",
				Fields:    []string{"name"},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "second"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "second",
				OnSuccess: model.Route{Kind: model.ROUTE_TERMINAL},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
		},
	}
}

func TestCompile(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"valid definition compiles":     testCompileValid,
		"dangling next is rejected":     testCompileDanglingNext,
		"dangling jump is rejected":     testCompileDanglingJump,
		"unknown rule is rejected":      testCompileUnknownRule,
		"duplicate stage is rejected":   testCompileDuplicateStage,
		"missing terminal is rejected":  testCompileNoTerminal,
		"missing entry is rejected":     testCompileNoEntry,
		"bad script is rejected":        testCompileBadScript,
		"switch cases must resolve":     testCompileSwitchCase,
		"unknown effect is rejected":    testCompileUnknownEffect,
	} {
		t.Run(scenario, fn)
	}
}

func testCompileValid(t *testing.T) {
	cf, err := Compile(twoStageDef())
	require.NoError(t, err)
	require.Equal(t, "first", cf.Entry().Id)
	require.NotNil(t, cf.Stage("second"))
}

func testCompileDanglingNext(t *testing.T) {
	def := twoStageDef()
	def.Stages[0].OnSuccess.Next = "ghost"
	_, err := Compile(def)
	require.ErrorContains(t, err, "unknown stage ghost")
}

func testCompileDanglingJump(t *testing.T) {
	def := twoStageDef()
	def.Stages[1].OnFailure = model.FailurePolicy{Action: model.FAILURE_JUMP, JumpTo: "ghost"}
	_, err := Compile(def)
	require.ErrorContains(t, err, "jump to unknown stage ghost")
}

func testCompileUnknownRule(t *testing.T) {
	def := twoStageDef()
	def.Stages[0].Rules = map[string]string{"name": "no_such_rule"}
	_, err := Compile(def)
	require.ErrorContains(t, err, "unknown validation rule")
}

func testCompileDuplicateStage(t *testing.T) {
	def := twoStageDef()
	def.Stages[1].Id = "first"
	_, err := Compile(def)
	require.ErrorContains(t, err, "duplicate")
}

func testCompileNoTerminal(t *testing.T) {
	def := twoStageDef()
	def.Stages[1].OnSuccess = model.Route{Kind: model.ROUTE_NEXT, Next: "first"}
	_, err := Compile(def)
	require.ErrorContains(t, err, "no stage routes to a terminal")
}

func testCompileNoEntry(t *testing.T) {
	def := twoStageDef()
	def.Entry = "ghost"
	_, err := Compile(def)
	require.ErrorContains(t, err, "entry")
}

func testCompileBadScript(t *testing.T) {
	def := twoStageDef()
	def.Stages[0].Script = "function ("
	_, err := Compile(def)
	require.ErrorContains(t, err, "bad script")
}

func testCompileSwitchCase(t *testing.T) {
	def := twoStageDef()
	def.Stages[0].OnSuccess = model.Route{
		Kind:       model.ROUTE_SWITCH,
		Expression: "$.kind",
		Cases: map[string]model.Route{
			"a": {Kind: model.ROUTE_NEXT, Next: "ghost"},
		},
	}
	_, err := Compile(def)
	require.ErrorContains(t, err, "unknown stage ghost")
}

func testCompileUnknownEffect(t *testing.T) {
	def := twoStageDef()
	def.Stages[0].Effect = model.EffectKind("teleport")
	_, err := Compile(def)
	require.ErrorContains(t, err, "unknown effect kind")
}

func TestValidateStageOrder(t *testing.T) {
	def := &model.FlowDef{
		Name:  "ordered",
		Entry: "only",
		Stages: []model.Stage{
			{
				Id:        "only",
				Fields:    []string{"first_field", "second_field"},
				OnSuccess: model.Route{Kind: model.ROUTE_TERMINAL},
			},
		},
	}
	cf, err := Compile(def)
	require.NoError(t, err)

	// both fields invalid: the first declared field wins
	errInfo := cf.validateStage(cf.Stage("only"), map[string]any{})
	require.NotNil(t, errInfo)
	require.Equal(t, model.VALIDATION_FAILURE, errInfo.Kind)
	require.Equal(t, "first_field", errInfo.Field)

	errInfo = cf.validateStage(cf.Stage("only"), map[string]any{"first_field": "x"})
	require.NotNil(t, errInfo)
	require.Equal(t, "second_field", errInfo.Field)

	errInfo = cf.validateStage(cf.Stage("only"), map[string]any{"first_field": "x", "second_field": "y"})
	require.Nil(t, errInfo)
}

func TestScriptValidation(t *testing.T) {
	def := &model.FlowDef{
		Name:  "scripted",
		Entry: "only",
		Stages: []model.Stage{
			{
				Id:        "only",
				Fields:    []string{"amount"},
				Script:    "Number($.amount) < 1000",
				OnSuccess: model.Route{Kind: model.ROUTE_TERMINAL},
			},
		},
	}
	cf, err := Compile(def)
	require.NoError(t, err)

	require.Nil(t, cf.validateStage(cf.Stage("only"), map[string]any{"amount": "500"}))

	errInfo := cf.validateStage(cf.Stage("only"), map[string]any{"amount": "5000"})
	require.NotNil(t, errInfo)
	require.Equal(t, model.VALIDATION_FAILURE, errInfo.Kind)
}
