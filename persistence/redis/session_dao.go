package redis

import (
	"context"
	"time"

	"github.com/facepay/flowgate/logger"
	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	"github.com/facepay/flowgate/util"
	rd "github.com/go-redis/redis/v9"
	"go.uber.org/zap"
)

const SESSION string = "SESSION"

type redisSessionStorage struct {
	*baseDao
	ttl    time.Duration
	encDec util.EncoderDecoder[model.FlowContext]
}

var _ persistence.SessionStorage = new(redisSessionStorage)

func NewRedisSessionStorage(conf Config, ttl time.Duration, encDec util.EncoderDecoder[model.FlowContext]) *redisSessionStorage {
	return &redisSessionStorage{
		baseDao: newBaseDao(conf),
		ttl:     ttl,
		encDec:  encDec,
	}
}

func (rs *redisSessionStorage) SaveSession(flowCtx *model.FlowContext) error {
	key := rs.baseDao.getNamespaceKey(SESSION, flowCtx.Id)
	ctx := context.Background()
	data, err := rs.encDec.Encode(*flowCtx)
	if err != nil {
		return err
	}
	if err := rs.redisClient.Set(ctx, key, data, rs.ttl).Err(); err != nil {
		logger.Error("error in saving session", zap.String("session", flowCtx.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisSessionStorage) GetSession(id string) (*model.FlowContext, error) {
	key := rs.baseDao.getNamespaceKey(SESSION, id)
	ctx := context.Background()
	val, err := rs.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.SessionNotFoundError{Id: id}
		}
		logger.Error("error in getting session", zap.String("session", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}

func (rs *redisSessionStorage) DeleteSession(id string) error {
	key := rs.baseDao.getNamespaceKey(SESSION, id)
	ctx := context.Background()
	if err := rs.redisClient.Del(ctx, key).Err(); err != nil {
		logger.Error("error in deleting session", zap.String("session", id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
