package memory

import (
	"time"

	"github.com/facepay/flowgate/model"
	"github.com/facepay/flowgate/persistence"
	c "github.com/patrickmn/go-cache"
	"github.com/spaolacci/murmur3"
)

// Store keeps sessions in a fixed set of go-cache shards picked by murmur3
// of the session id, each with the session idle TTL; definitions sit in a
// single non-expiring cache.
type Store struct {
	shards []*c.Cache
	defs   *c.Cache
}

var _ persistence.SessionStorage = new(Store)
var _ persistence.DefinitionStorage = new(Store)

func NewStore(shardCount int, sessionTTL time.Duration) *Store {
	if shardCount <= 0 {
		shardCount = 16
	}
	shards := make([]*c.Cache, shardCount)
	for i := range shards {
		shards[i] = c.New(sessionTTL, 2*sessionTTL)
	}
	return &Store{
		shards: shards,
		defs:   c.New(c.NoExpiration, 10*time.Minute),
	}
}

func (s *Store) shardFor(id string) *c.Cache {
	return s.shards[int(murmur3.Sum32([]byte(id)))%len(s.shards)]
}

func (s *Store) SaveSession(flowCtx *model.FlowContext) error {
	s.shardFor(flowCtx.Id).SetDefault(flowCtx.Id, flowCtx)
	return nil
}

func (s *Store) GetSession(id string) (*model.FlowContext, error) {
	val, found := s.shardFor(id).Get(id)
	if !found {
		return nil, persistence.SessionNotFoundError{Id: id}
	}
	return val.(*model.FlowContext), nil
}

func (s *Store) DeleteSession(id string) error {
	s.shardFor(id).Delete(id)
	return nil
}

func (s *Store) SaveDefinition(def model.FlowDef) error {
	s.defs.SetDefault(def.Name, &def)
	return nil
}

func (s *Store) GetDefinition(name string) (*model.FlowDef, error) {
	val, found := s.defs.Get(name)
	if !found {
		return nil, persistence.DefinitionNotFoundError{Name: name}
	}
	return val.(*model.FlowDef), nil
}

func (s *Store) DeleteDefinition(name string) error {
	s.defs.Delete(name)
	return nil
}
