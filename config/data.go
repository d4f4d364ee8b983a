package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Data selects and configures the document store
type Data struct {
	Driver  string
	MongoDB *MongoDB
}

// MongoDB mongodb config struct
type MongoDB struct {
	Database string        `json:"database"`
	Master   *MongoNode    `json:"master"`
	Slaves   []*MongoNode  `json:"slaves"`
	Strategy string        `json:"strategy"`
	Timeout  time.Duration `json:"timeout"`
}

// MongoNode mongodb node config
type MongoNode struct {
	URI    string `json:"uri"`
	Weight int    `json:"weight"`
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		Driver:  stringSetting(v, "data.driver", "memory"),
		MongoDB: getMongoDBConfig(v),
	}
}

// getMongoDBConfig reads MongoDB configurations
func getMongoDBConfig(v *viper.Viper) *MongoDB {
	return &MongoDB{
		Database: stringSetting(v, "data.mongodb.database", "collab"),
		Master: &MongoNode{
			URI: v.GetString("data.mongodb.master.uri"),
		},
		Slaves:   getMongoSlaveConfigs(v),
		Strategy: v.GetString("data.mongodb.strategy"),
		Timeout:  durationSetting(v, "data.mongodb.timeout", 10*time.Second),
	}
}

// getMongoSlaveConfigs reads MongoDB slave configurations
func getMongoSlaveConfigs(v *viper.Viper) []*MongoNode {
	var slaves []*MongoNode

	slavesConfig, ok := v.Get("data.mongodb.slaves").([]any)
	if !ok {
		return slaves
	}

	for i := range slavesConfig {
		slave := &MongoNode{
			URI:    v.GetString(fmt.Sprintf("data.mongodb.slaves.%d.uri", i)),
			Weight: v.GetInt(fmt.Sprintf("data.mongodb.slaves.%d.weight", i)),
		}
		if slave.URI == "" {
			continue
		}
		if slave.Weight <= 0 {
			slave.Weight = 1
		}
		slaves = append(slaves, slave)
	}

	return slaves
}
