package container

import (
	"time"

	"github.com/facepay/flowgate/config"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	"github.com/facepay/flowgate/persistence/memory"
	rd "github.com/facepay/flowgate/persistence/redis"
	"github.com/facepay/flowgate/util"
)

type DIContainer struct {
	initialized       bool
	sessionStorage    persistence.SessionStorage
	definitionStorage persistence.DefinitionStorage
	FlowContextEncDec util.EncoderDecoder[model.FlowContext]
	FlowDefEncDec     util.EncoderDecoder[model.FlowDef]
}

func NewDiContainer() *DIContainer {
	return &DIContainer{
		initialized: false,
	}
}

func (d *DIContainer) setInitialized() {
	d.initialized = true
}

func (d *DIContainer) Init(conf config.Config) {
	defer d.setInitialized()

	d.FlowContextEncDec = util.NewJsonEncoderDecoder[model.FlowContext]()
	d.FlowDefEncDec = util.NewJsonEncoderDecoder[model.FlowDef]()

	sessionTTL := time.Duration(conf.SessionTTLSeconds) * time.Second
	if sessionTTL <= 0 {
		sessionTTL = 10 * time.Minute
	}
	switch conf.StorageType {
	case config.STORAGE_TYPE_REDIS:
		rdConf := rd.Config{
			Addrs:     conf.RedisConfig.Addrs,
			Namespace: conf.RedisConfig.Namespace,
		}
		d.sessionStorage = rd.NewRedisSessionStorage(rdConf, sessionTTL, d.FlowContextEncDec)
		d.definitionStorage = rd.NewRedisMetadataStorage(rdConf, d.FlowDefEncDec)
	default:
		store := memory.NewStore(conf.ShardCount, sessionTTL)
		d.sessionStorage = store
		d.definitionStorage = store
	}
}

func (d *DIContainer) GetSessionStorage() persistence.SessionStorage {
	if !d.initialized {
		panic("container not initialized")
	}
	return d.sessionStorage
}

func (d *DIContainer) GetDefinitionStorage() persistence.DefinitionStorage {
	if !d.initialized {
		panic("container not initialized")
	}
	return d.definitionStorage
}
