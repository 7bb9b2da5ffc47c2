package gateway

import (
	"context"
	"fmt"

	"github.com/facepay/flowgate/capture"
)

type IdentityScope string

const SCOPE_ANY IdentityScope = "any"
const SCOPE_PRIMARY IdentityScope = "primary"
const SCOPE_FAMILY IdentityScope = "family"

type VerifyKind string

const VERIFY_LOGIN VerifyKind = "login"
const VERIFY_TRANSACTION VerifyKind = "transaction"

type Identity struct {
	Exists bool   `json:"exists"`
	Kind   string `json:"kind"`
}

// Gateway is the remote banking backend. It performs the actual face
// matching, credential issuance, OTP checks and ledger writes; this side
// only sends fields and images and interprets the JSON that comes back.
type Gateway interface {
	CheckIdentity(ctx context.Context, identifier string, scope IdentityScope) (*Identity, error)
	VerifyFace(ctx context.Context, kind VerifyKind, fields map[string]any, image *capture.Image) (map[string]any, error)
	SubmitStep(ctx context.Context, step string, fields map[string]any, image *capture.Image) (map[string]any, error)
}

// DomainError is a well-formed backend response that semantically declines
// the request, as opposed to a transport-level failure.
type DomainError struct {
	Message string
	Raw     string
}

func (e DomainError) Error() string {
	return e.Message
}

type TransportError struct {
	Cause error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Cause)
}

func (e TransportError) Unwrap() error {
	return e.Cause
}
