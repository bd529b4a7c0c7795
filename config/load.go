package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Load builds the configurations from defaults, an optional TOML file and
// environment overrides, in that order of increasing precedence.
func Load(path string) (Configs, error) {
	cfg := defaultConfigs()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaultConfigs() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "INFO",
		ApiServer: ServerConfigs{
			Host: "0.0.0.0",
			Port: "8080",
		},
		RelayServer: ServerConfigs{
			Host: "0.0.0.0",
			Port: "8081",
		},
		Database: DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "chat",
			User:     "root",
		},
		Redis: RedisConfigs{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfigs{
			Addr:      "localhost:9092",
			PushTopic: "push_notifications",
		},
		History: HistoryConfigs{
			Driver: "mysql",
		},
		ScyllaDB: ScyllaDBConfigs{
			Addr:     "localhost:9042",
			KeySpace: "chat",
		},
		Dynamo: DynamoConfigs{
			Region:    "ap-northeast-2",
			TableName: "messages",
		},
		Relay: RelayConfigs{
			EchoToSender: true,
		},
	}
}

func (c *Configs) applyEnv() {
	setIfPresent(&c.Env, "ENV")
	setIfPresent(&c.LogLevel, "LOG_LEVEL")
	setIfPresent(&c.ApiServer.Port, "API_PORT")
	setIfPresent(&c.RelayServer.Port, "RELAY_PORT")
	setIfPresent(&c.Database.Host, "DB_HOST")
	setIfPresent(&c.Database.Port, "DB_PORT")
	setIfPresent(&c.Database.Database, "DB_NAME")
	setIfPresent(&c.Database.User, "DB_USER")
	setIfPresent(&c.Database.Password, "DB_PASSWORD")
	setIfPresent(&c.Redis.Addr, "REDIS_ADDR")
	setIfPresent(&c.Redis.Password, "REDIS_PASSWORD")
	setIfPresent(&c.Kafka.Addr, "KAFKA_ADDR")
	setIfPresent(&c.Kafka.PushTopic, "KAFKA_PUSH_TOPIC")
	setIfPresent(&c.History.Driver, "HISTORY_DRIVER")
	setIfPresent(&c.ScyllaDB.Addr, "SCYLLA_ADDR")
	setIfPresent(&c.ScyllaDB.KeySpace, "SCYLLA_KEYSPACE")
	setIfPresent(&c.Dynamo.Region, "DYNAMO_REGION")
	setIfPresent(&c.Dynamo.TableName, "DYNAMO_TABLE")
	setIfPresent(&c.Dynamo.Endpoint, "DYNAMO_ENDPOINT")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
