package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	HttpPort           int
	BackendURL         string
	FamilyRegisterPath string
	DefinitionsDir     string
	CaptureFile        string
	SessionTTLSeconds  int
	ShardCount         int
	StorageType        StorageType
	RedisConfig        RedisStorageConfig
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}
