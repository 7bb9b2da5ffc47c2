package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/facepay/flowgate/capture"
	"github.com/facepay/flowgate/gateway"
	"github.com/facepay/flowgate/model"
)

// runEffect executes the stage's effect against the gateway and the capture
// provider. The capture device is deactivated after every attempt, success
// or failure. Returns response fields to merge into the form data, or a
// classified ErrorInfo.
func (m *Machine) runEffect(ctx context.Context, stage *model.Stage, data map[string]any) (map[string]any, *model.ErrorInfo) {
	switch stage.Effect {
	case model.EFFECT_CHECK_IDENTITY:
		return m.checkIdentity(ctx, stage, data)
	case model.EFFECT_CAPTURE_VERIFY:
		return m.captureVerify(ctx, stage, data)
	case model.EFFECT_SUBMIT_STEP:
		out, err := m.gateway.SubmitStep(ctx, stage.EffectArg, data, nil)
		if err != nil {
			return nil, classify(err)
		}
		return out, nil
	case model.EFFECT_SUBMIT_CAPTURE_VERIFY:
		if _, err := m.gateway.SubmitStep(ctx, stage.EffectArg, data, nil); err != nil {
			return nil, classify(err)
		}
		return m.captureThenVerify(ctx, gateway.VERIFY_TRANSACTION, data)
	case model.EFFECT_CAPTURE_SUBMIT:
		image, errInfo := m.captureImage(ctx)
		if errInfo != nil {
			return nil, errInfo
		}
		out, err := m.gateway.SubmitStep(ctx, stage.EffectArg, data, image)
		if err != nil {
			return nil, classify(err)
		}
		return out, nil
	}
	return nil, &model.ErrorInfo{
		Kind:    model.NETWORK_FAILURE,
		Message: fmt.Sprintf("effect %s is not executable", stage.Effect),
	}
}

func (m *Machine) checkIdentity(ctx context.Context, stage *model.Stage, data map[string]any) (map[string]any, *model.ErrorInfo) {
	scope := gateway.IdentityScope(stage.EffectArg)
	if scope == "" {
		scope = gateway.SCOPE_ANY
	}
	identifier := fmt.Sprintf("%v", data["identifier"])
	identity, err := m.gateway.CheckIdentity(ctx, identifier, scope)
	if err != nil {
		return nil, classify(err)
	}
	if !identity.Exists {
		return nil, &model.ErrorInfo{
			Kind:    model.DOMAIN_REJECTION,
			Message: "identifier not found",
		}
	}
	return map[string]any{"kind": identity.Kind}, nil
}

func (m *Machine) captureVerify(ctx context.Context, stage *model.Stage, data map[string]any) (map[string]any, *model.ErrorInfo) {
	kind := gateway.VerifyKind(stage.EffectArg)
	if kind == "" {
		kind = gateway.VERIFY_TRANSACTION
	}
	return m.captureThenVerify(ctx, kind, data)
}

func (m *Machine) captureThenVerify(ctx context.Context, kind gateway.VerifyKind, data map[string]any) (map[string]any, *model.ErrorInfo) {
	image, errInfo := m.captureImage(ctx)
	if errInfo != nil {
		return nil, errInfo
	}
	out, err := m.gateway.VerifyFace(ctx, kind, data, image)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (m *Machine) captureImage(ctx context.Context) (*capture.Image, *model.ErrorInfo) {
	defer m.capture.Deactivate()
	image, err := m.capture.Capture(ctx)
	if err != nil {
		return nil, &model.ErrorInfo{
			Kind:    model.CAPTURE_FAILURE,
			Message: "capture failed",
		}
	}
	return image, nil
}

func classify(err error) *model.ErrorInfo {
	var domainErr gateway.DomainError
	if errors.As(err, &domainErr) {
		return &model.ErrorInfo{
			Kind:    model.DOMAIN_REJECTION,
			Message: domainErr.Message,
			Raw:     domainErr.Raw,
		}
	}
	var captureErr capture.CaptureError
	if errors.As(err, &captureErr) {
		return &model.ErrorInfo{
			Kind:    model.CAPTURE_FAILURE,
			Message: captureErr.Message,
		}
	}
	return &model.ErrorInfo{
		Kind:    model.NETWORK_FAILURE,
		Message: err.Error(),
	}
}
