package config

import (
	"time"

	"github.com/spf13/viper"
)

// Queue offline queue config struct
type Queue struct {
	Driver string
	SQLite *SQLite
	Redis  *Redis
}

// SQLite sqlite config struct
type SQLite struct {
	Path string `json:"path" yaml:"path"`
}

// Redis redis config struct
type Redis struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Username     string        `json:"username" yaml:"username"`
	Password     string        `json:"password" yaml:"password"`
	Db           int           `json:"db" yaml:"db"`
	Prefix       string        `json:"prefix" yaml:"prefix"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
}

func getQueueConfig(v *viper.Viper) *Queue {
	return &Queue{
		Driver: stringSetting(v, "queue.driver", "memory"),
		SQLite: &SQLite{
			Path: stringSetting(v, "queue.sqlite.path", "offline_queue.db"),
		},
		Redis: &Redis{
			Addr:         stringSetting(v, "queue.redis.addr", "localhost:6379"),
			Username:     v.GetString("queue.redis.username"),
			Password:     v.GetString("queue.redis.password"),
			Db:           v.GetInt("queue.redis.db"),
			Prefix:       stringSetting(v, "queue.redis.prefix", "collab:offline"),
			ReadTimeout:  durationSetting(v, "queue.redis.read_timeout", 3*time.Second),
			WriteTimeout: durationSetting(v, "queue.redis.write_timeout", 3*time.Second),
			DialTimeout:  durationSetting(v, "queue.redis.dial_timeout", 5*time.Second),
		},
	}
}
