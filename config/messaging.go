package config

import (
	"time"

	"github.com/spf13/viper"
)

// Messaging messaging config struct
type Messaging struct {
	// Driver selects the follow-up publisher: rabbitmq or kafka.
	Driver   string
	RabbitMQ *RabbitMQ
	Kafka    *Kafka
}

// RabbitMQ rabbitmq config struct
type RabbitMQ struct {
	URL               string
	Exchange          string
	RoutingKey        string
	ConnectionTimeout time.Duration
	HeartbeatInterval time.Duration
}

// Kafka kafka config struct
type Kafka struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// getMessagingConfig reads messaging configurations
func getMessagingConfig(v *viper.Viper) *Messaging {
	return &Messaging{
		Driver: stringSetting(v, "messaging.driver", "rabbitmq"),
		RabbitMQ: &RabbitMQ{
			URL:               v.GetString("messaging.rabbitmq.url"),
			Exchange:          stringSetting(v, "messaging.rabbitmq.exchange", "collab.erasure"),
			RoutingKey:        stringSetting(v, "messaging.rabbitmq.routing_key", "erasure.followup"),
			ConnectionTimeout: durationSetting(v, "messaging.rabbitmq.connection_timeout", 10*time.Second),
			HeartbeatInterval: durationSetting(v, "messaging.rabbitmq.heartbeat_interval", 10*time.Second),
		},
		Kafka: &Kafka{
			Brokers:      v.GetStringSlice("messaging.kafka.brokers"),
			Topic:        stringSetting(v, "messaging.kafka.topic", "collab.erasure.followup"),
			WriteTimeout: durationSetting(v, "messaging.kafka.write_timeout", 10*time.Second),
		},
	}
}
