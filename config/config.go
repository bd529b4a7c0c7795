package config

import "fmt"

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	ApiServer   ServerConfigs   `toml:"api_server"`
	RelayServer ServerConfigs   `toml:"relay_server"`
	Database    DatabaseConfigs `toml:"database"`
	Redis       RedisConfigs    `toml:"redis"`
	Kafka       KafkaConfigs    `toml:"kafka"`
	History     HistoryConfigs  `toml:"history"`
	ScyllaDB    ScyllaDBConfigs `toml:"scylladb"`
	Dynamo      DynamoConfigs   `toml:"dynamo"`
	Relay       RelayConfigs    `toml:"relay"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
}

type KafkaConfigs struct {
	Addr      string `toml:"addr"`
	PushTopic string `toml:"push_topic"`
}

// HistoryConfigs selects the durable message store backend. Driver is one of
// mysql, scylla, dynamo.
type HistoryConfigs struct {
	Driver string `toml:"driver"`
}

type ScyllaDBConfigs struct {
	Addr     string `toml:"addr"`
	KeySpace string `toml:"keyspace"`
}

type DynamoConfigs struct {
	Region    string `toml:"region"`
	TableName string `toml:"table_name"`
	Endpoint  string `toml:"endpoint"`
}

type RelayConfigs struct {
	// EchoToSender controls whether a sender's own connection receives its
	// own broadcast through the subscription loop.
	EchoToSender bool `toml:"echo_to_sender"`

	// Compression enables zlib compression of websocket text frames in both
	// directions.
	Compression bool `toml:"compression"`
}
