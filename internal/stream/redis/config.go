package redis

const (
	DefaultRequestStream = "classroom-turns"
	DefaultResultStream  = "classroom-turn-results"
	DefaultEventStream   = "classroom-evaluations"
	DefaultGroup         = "classroom-workers"
)

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	ResultStream  string
	Group         string
	ConsumerName  string
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, group string, consumerName string) *RedisStreamConfig {
	if stream == "" {
		stream = DefaultRequestStream
	}
	if group == "" {
		group = DefaultGroup
	}
	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		ResultStream:  DefaultResultStream,
		Group:         group,
		ConsumerName:  consumerName,
	}
}
