package persistence

import (
	"fmt"

	"github.com/facepay/flowgate/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type SessionNotFoundError struct {
	Id string
}

func (e SessionNotFoundError) Error() string {
	return fmt.Sprintf("no session with id %s", e.Id)
}

type DefinitionNotFoundError struct {
	Name string
}

func (e DefinitionNotFoundError) Error() string {
	return fmt.Sprintf("no flow definition with name %s", e.Name)
}

// SessionStorage holds context snapshots for the lifetime of a flow run.
// Entries expire on their own after the configured idle TTL; terminal
// sessions are deleted eagerly.
type SessionStorage interface {
	SaveSession(flowCtx *model.FlowContext) error
	GetSession(id string) (*model.FlowContext, error)
	DeleteSession(id string) error
}

type DefinitionStorage interface {
	SaveDefinition(def model.FlowDef) error
	GetDefinition(name string) (*model.FlowDef, error)
	DeleteDefinition(name string) error
}
