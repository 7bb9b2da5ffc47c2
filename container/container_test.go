package container

import (
	"testing"

	"github.com/facepay/flowgate/config"
	"github.com/facepay/flowgate/model"
	"github.com/stretchr/testify/require"
)

func TestInitMemoryStorage(t *testing.T) {
	di := NewDiContainer()
	di.Init(config.Config{StorageType: config.STORAGE_TYPE_INMEM})

	require.NotNil(t, di.GetSessionStorage())
	require.NotNil(t, di.GetDefinitionStorage())

	flowCtx := model.FlowContext{Id: "s1", FlowName: "login", State: model.RUNNING}
	data, err := di.FlowContextEncDec.Encode(flowCtx)
	require.NoError(t, err)
	decoded, err := di.FlowContextEncDec.Decode(data)
	require.NoError(t, err)
	require.Equal(t, flowCtx, *decoded)
}

func TestInitRedisStorage(t *testing.T) {
	di := NewDiContainer()
	di.Init(config.Config{
		StorageType: config.STORAGE_TYPE_REDIS,
		RedisConfig: config.RedisStorageConfig{Addrs: []string{"127.0.0.1:6379"}},
	})

	// client construction is lazy, no connection happens here
	require.NotNil(t, di.GetSessionStorage())
	require.NotNil(t, di.GetDefinitionStorage())
}

func TestUninitializedContainerPanics(t *testing.T) {
	di := NewDiContainer()
	require.Panics(t, func() { di.GetSessionStorage() })
	require.Panics(t, func() { di.GetDefinitionStorage() })
}
