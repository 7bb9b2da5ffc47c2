package definition

import "github.com/facepay/flowgate/model"

const FLOW_LOGIN string = "login"
const FLOW_REGISTER string = "register"
const FLOW_TRANSFER string = "transfer"
const FLOW_ADD_FAMILY string = "add_family"

// LoginFlow is the two stage face login: identity lookup, then capture and
// server side face match. The terminal payload routes the caller to the
// primary or the family home screen depending on which kind of account the
// identifier resolved to.
func LoginFlow() model.FlowDef {
	return model.FlowDef{
		Name:  FLOW_LOGIN,
		Entry: "enter_identity",
		Stages: []model.Stage{
			{
				Id:        "enter_identity",
				Fields:    []string{"identifier"},
				Effect:    model.EFFECT_CHECK_IDENTITY,
				EffectArg: "any",
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "capture_face"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "capture_face",
				Effect:    model.EFFECT_CAPTURE_VERIFY,
				EffectArg: "login",
				OnSuccess: model.Route{
					Kind:       model.ROUTE_SWITCH,
					Expression: "$.kind",
					Cases: map[string]model.Route{
						"primary": {
							Kind:    model.ROUTE_TERMINAL,
							Payload: map[string]any{"redirectTarget": "PrimaryHome"},
						},
						"family": {
							Kind:    model.ROUTE_TERMINAL,
							Payload: map[string]any{"redirectTarget": "FamilyHome"},
						},
					},
				},
				OnFailure:      model.FailurePolicy{Action: model.FAILURE_RETRY},
				FailureMessage: "verification failed",
			},
		},
	}
}

// RegisterFlow enrolls a new primary account in three stages: personal
// details, location details, then a face capture submitted with the whole
// form. The backend builds the face embedding from the submitted image, so
// success routes straight back to login.
func RegisterFlow() model.FlowDef {
	return model.FlowDef{
		Name:  FLOW_REGISTER,
		Entry: "personal_details",
		Stages: []model.Stage{
			{
				Id:     "personal_details",
				Fields: []string{"username", "first_name", "last_name", "gender", "email", "phone"},
				Rules: map[string]string{
					"email": "email",
					"phone": "phone",
				},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "location_details"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "location_details",
				Fields:    []string{"address", "city", "state", "country"},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "capture_register"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "capture_register",
				Effect:    model.EFFECT_CAPTURE_SUBMIT,
				EffectArg: "register",
				OnSuccess: model.Route{
					Kind:    model.ROUTE_TERMINAL,
					Payload: map[string]any{"status": "registered", "redirectTarget": "Login"},
				},
				OnFailure:      model.FailurePolicy{Action: model.FAILURE_RETRY},
				FailureMessage: "registration failed",
			},
		},
	}
}

// TransferFlow is the seven stage money transfer. Stages one to five are
// pure data entry, stage six initiates the transaction on the backend and
// re-verifies the face, stage seven confirms the OTP.
func TransferFlow() model.FlowDef {
	return model.FlowDef{
		Name:  FLOW_TRANSFER,
		Entry: "select_source_account",
		Stages: []model.Stage{
			{
				Id:        "select_source_account",
				Fields:    []string{"account_number"},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "enter_receiver"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "enter_receiver",
				Fields:    []string{"receiver_account_number", "receiver_name"},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "select_branch"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "select_branch",
				Fields:    []string{"branch_name"},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "enter_amount"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "enter_amount",
				Fields:    []string{"amount"},
				Rules:     map[string]string{"amount": "amount"},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "review"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				// confirmation gate: the caller renders the accumulated form
				// data and submits to move on
				Id:        "review",
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "confirm_and_verify_face"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:             "confirm_and_verify_face",
				Effect:         model.EFFECT_SUBMIT_CAPTURE_VERIFY,
				EffectArg:      "initiate_transaction",
				OnSuccess:      model.Route{Kind: model.ROUTE_NEXT, Next: "otp_verification"},
				OnFailure:      model.FailurePolicy{Action: model.FAILURE_RETRY},
				FailureMessage: "verification failed",
			},
			{
				Id:        "otp_verification",
				Fields:    []string{"otp"},
				Rules:     map[string]string{"otp": "otp"},
				Effect:    model.EFFECT_SUBMIT_STEP,
				EffectArg: "verify_transaction",
				OnSuccess: model.Route{
					Kind:    model.ROUTE_TERMINAL,
					Payload: map[string]any{"status": "completed"},
				},
				OnFailure:      model.FailurePolicy{Action: model.FAILURE_RETRY},
				FailureMessage: "invalid OTP",
			},
		},
	}
}

// AddFamilyFlow registers a family sub-account: member details, then a face
// capture submitted with the registration. A duplicate member or family
// limit rejection jumps back to the details stage with the form wiped.
func AddFamilyFlow() model.FlowDef {
	return model.FlowDef{
		Name:  FLOW_ADD_FAMILY,
		Entry: "member_details",
		Stages: []model.Stage{
			{
				Id:     "member_details",
				Fields: []string{"username", "name", "email", "phone", "relationship"},
				Rules: map[string]string{
					"email": "email",
					"phone": "phone",
				},
				OnSuccess: model.Route{Kind: model.ROUTE_NEXT, Next: "capture_register"},
				OnFailure: model.FailurePolicy{Action: model.FAILURE_RETRY},
			},
			{
				Id:        "capture_register",
				Effect:    model.EFFECT_CAPTURE_SUBMIT,
				EffectArg: "mobile_register_family",
				OnSuccess: model.Route{
					Kind:    model.ROUTE_TERMINAL,
					Payload: map[string]any{"status": "registered"},
				},
				OnFailure:      model.FailurePolicy{Action: model.FAILURE_JUMP, JumpTo: "member_details"},
				FailureMessage: "registration failed",
			},
		},
	}
}

func Builtin() []model.FlowDef {
	return []model.FlowDef{LoginFlow(), RegisterFlow(), TransferFlow(), AddFamilyFlow()}
}
