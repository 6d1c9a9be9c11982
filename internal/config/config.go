// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，由 Init 在启动时填充。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Encoder       EncoderConfig       `mapstructure:"encoder"`
	Model         ModelConfig         `mapstructure:"model"`
	Dataset       DatasetConfig       `mapstructure:"dataset"`
	Store         StoreConfig         `mapstructure:"store"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	JWT           JWTConfig           `mapstructure:"jwt"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// EncoderConfig 定义城市 one-hot 编码。Cities 的顺序即向量下标。
type EncoderConfig struct {
	Cities []string `mapstructure:"cities"`
	Length int      `mapstructure:"length"`
}

// ModelConfig 指向导出的模型权重文件，支持本地路径或 minio://bucket/object。
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// DatasetConfig 指向静态景点数据集（.xlsx 或 .csv）。
type DatasetConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// StoreConfig 选择景点文档的持久化后端：mongo、elasticsearch 或 mysql。
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	Mongo MongoConfig `mapstructure:"mongo"`
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MongoConfig 存储 MongoDB 的配置。
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。Addr 为空时不启用缓存。
type RedisConfig struct {
	Addr                 string `mapstructure:"addr"`
	Password             string `mapstructure:"password"`
	DB                   int    `mapstructure:"db"`
	PredictionTTLSeconds int    `mapstructure:"prediction_ttl_seconds"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时同步任务在进程内执行。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// placeholderSecrets 是示例配置中常见的占位密钥，不能用于签发令牌。
var placeholderSecrets = map[string]bool{
	"change-me":   true,
	"changeme":    true,
	"secret":      true,
	"your-secret": true,
}

// AdminEnabled 报告密钥是否可用于管理接口：非空且不是占位值。
func (c JWTConfig) AdminEnabled() bool {
	s := strings.TrimSpace(c.Secret)
	return s != "" && !placeholderSecrets[strings.ToLower(s)]
}

// Init 从指定路径加载配置到 Conf，失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Errorf("读取配置失败: %w", err))
	}
	Conf = cfg
}

// Load 读取 YAML 配置文件（文件不存在时仅使用默认值）并叠加环境变量。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("database.mongo.uri", "MONGODB_URI", "DATABASE_MONGO_URI")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", configPath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	// 环境变量中的城市列表以逗号分隔
	cfg.Encoder.Cities = splitList(strings.Join(cfg.Encoder.Cities, ","))
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("encoder.cities", []string{"Bangkalan", "Sampang", "Pamekasan", "Sumenep"})
	v.SetDefault("encoder.length", 6)
	v.SetDefault("model.path", "artifacts/model_kota.json")
	v.SetDefault("dataset.path", "artifacts/Dataset_Wisata_Madura.xlsx")
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("database.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo.database", "kanto")
	v.SetDefault("database.mongo.collection", "destinations")
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.prediction_ttl_seconds", 600)
	v.SetDefault("elasticsearch.addresses", "http://localhost:9200")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index_name", "destinations")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "destination-sync")
	v.SetDefault("kafka.group_id", "kanto-ml-sync")
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_expire_hours", 24)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
