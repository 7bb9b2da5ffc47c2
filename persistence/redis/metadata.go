package redis

import (
	"context"

	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	"github.com/facepay/flowgate/util"
	rd "github.com/go-redis/redis/v9"
	"go.uber.org/zap"
)

const FLOW_DEF string = "FLOWDEF"

type redisMetadataStorage struct {
	*baseDao
	defEncDec util.EncoderDecoder[model.FlowDef]
}

var _ persistence.DefinitionStorage = new(redisMetadataStorage)

func NewRedisMetadataStorage(conf Config, encDec util.EncoderDecoder[model.FlowDef]) *redisMetadataStorage {
	return &redisMetadataStorage{
		baseDao:   newBaseDao(conf),
		defEncDec: encDec,
	}
}

func (rm *redisMetadataStorage) SaveDefinition(def model.FlowDef) error {
	key := rm.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	data, err := rm.defEncDec.Encode(def)
	if err != nil {
		return err
	}
	if err := rm.redisClient.HSet(ctx, key, []string{def.Name, string(data)}).Err(); err != nil {
		logger.Error("error in saving flow definition", zap.String("flow", def.Name), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rm *redisMetadataStorage) GetDefinition(name string) (*model.FlowDef, error) {
	key := rm.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	defStr, err := rm.redisClient.HGet(ctx, key, name).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.DefinitionNotFoundError{Name: name}
		}
		logger.Error("error in getting flow definition", zap.String("flow", name), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rm.defEncDec.Decode([]byte(defStr))
}

func (rm *redisMetadataStorage) DeleteDefinition(name string) error {
	key := rm.baseDao.getNamespaceKey(FLOW_DEF)
	ctx := context.Background()
	if err := rm.redisClient.HDel(ctx, key, name).Err(); err != nil {
		logger.Error("error in deleting flow definition", zap.String("flow", name), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
