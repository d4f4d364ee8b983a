package config

import (
	"time"

	"github.com/spf13/viper"
)

// Validation validator config struct
type Validation struct {
	FreshnessWindow time.Duration
	MediaPrefixes   []string
}

func getValidationConfig(v *viper.Viper) *Validation {
	return &Validation{
		FreshnessWindow: durationSetting(v, "validation.freshness_window", 5*time.Minute),
		MediaPrefixes: stringsSetting(v, "validation.media_prefixes",
			[]string{"https://firebasestorage.googleapis.com/"}),
	}
}

// Breaker circuit breaker config struct
type Breaker struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Delivery message delivery config struct
type Delivery struct {
	MaxRetries        int
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	Workers           int
	TypingConcurrency int
	// BookkeepingTimeout bounds the queue writes that record a send outcome
	// after the caller's context is done.
	BookkeepingTimeout time.Duration
	Breaker            *Breaker
}

func getDeliveryConfig(v *viper.Viper) *Delivery {
	return &Delivery{
		MaxRetries:         countSetting(v, "delivery.max_retries", 5),
		BackoffBase:        durationSetting(v, "delivery.backoff_base", time.Second),
		BackoffMax:         durationSetting(v, "delivery.backoff_max", 30*time.Second),
		Workers:            countSetting(v, "delivery.workers", 4),
		TypingConcurrency:  countSetting(v, "delivery.typing_concurrency", 8),
		BookkeepingTimeout: durationSetting(v, "delivery.bookkeeping_timeout", 5*time.Second),
		Breaker: &Breaker{
			MaxRequests:      breakerSetting(v, "delivery.breaker.max_requests", 1),
			Interval:         durationSetting(v, "delivery.breaker.interval", time.Minute),
			Timeout:          durationSetting(v, "delivery.breaker.timeout", 30*time.Second),
			FailureThreshold: breakerSetting(v, "delivery.breaker.failure_threshold", 5),
		},
	}
}

// Deletion batched deletion config struct
type Deletion struct {
	BatchSize int
	FollowUp  bool
}

func getDeletionConfig(v *viper.Viper) *Deletion {
	return &Deletion{
		BatchSize: countSetting(v, "deletion.batch_size", 500),
		FollowUp:  v.GetBool("deletion.follow_up"),
	}
}
