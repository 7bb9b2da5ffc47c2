package memory

import (
	"testing"
	"time"

	"github.com/facepay/flowgate/definition"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	store := NewStore(4, time.Minute)
	flowCtx := &model.FlowContext{
		Id:           "s-1",
		FlowName:     "login",
		CurrentStage: "enter_identity",
		State:        model.RUNNING,
		Data:         map[string]any{"identifier": "alice"},
	}
	require.NoError(t, store.SaveSession(flowCtx))

	loaded, err := store.GetSession("s-1")
	require.NoError(t, err)
	require.Equal(t, "enter_identity", loaded.CurrentStage)
	require.Equal(t, "alice", loaded.Data["identifier"])

	require.NoError(t, store.DeleteSession("s-1"))
	_, err = store.GetSession("s-1")
	var notFound persistence.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestShardPickIsStable(t *testing.T) {
	store := NewStore(8, time.Minute)
	require.Same(t, store.shardFor("abc"), store.shardFor("abc"))
}

func TestSessionExpiry(t *testing.T) {
	store := NewStore(2, 50*time.Millisecond)
	require.NoError(t, store.SaveSession(&model.FlowContext{Id: "short-lived"}))

	_, err := store.GetSession("short-lived")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	_, err = store.GetSession("short-lived")
	var notFound persistence.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDefinitionRoundTrip(t *testing.T) {
	store := NewStore(2, time.Minute)
	require.NoError(t, store.SaveDefinition(definition.LoginFlow()))

	def, err := store.GetDefinition("login")
	require.NoError(t, err)
	require.Equal(t, "enter_identity", def.Entry)

	_, err = store.GetDefinition("no_such_flow")
	var notFound persistence.DefinitionNotFoundError
	require.ErrorAs(t, err, &notFound)
}
