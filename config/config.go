package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8084"`
	DBHost          string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort          string        `env:"DB_PORT" envDefault:"5432"`
	DBName          string        `env:"DB_NAME" envDefault:"barapp"`
	DBUser          string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword      string        `env:"DB_PASSWORD"`
	RedisHost       string        `env:"REDIS_HOST"`
	RedisPort       string        `env:"REDIS_PORT" envDefault:"6379"`
	KafkaBroker     string        `env:"KAFKA_BROKER"`
	KafkaTopic      string        `env:"KAFKA_TOPIC" envDefault:"business-records"`
	KafkaGroupID    string        `env:"KAFKA_GROUP_ID" envDefault:"order-svc-leaderboard"`
	RabbitMQURL     string        `env:"RABBITMQ_URL"`
	QRBaseURL       string        `env:"QR_BASE_URL" envDefault:"http://localhost"`
	WSSendBuffer    int           `env:"WS_SEND_BUFFER" envDefault:"16"`
	LeaderboardTTL  time.Duration `env:"LEADERBOARD_TTL" envDefault:"168h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.WSSendBuffer <= 0 {
		return nil, fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", cfg.WSSendBuffer)
	}
	return cfg, nil
}

func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func (c *Config) RedisEnabled() bool { return c.RedisHost != "" }

func (c *Config) KafkaEnabled() bool { return c.KafkaBroker != "" }

func (c *Config) RabbitMQEnabled() bool { return c.RabbitMQURL != "" }

func MustInitPostgres(cfg *Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(cfg *Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
	})
}

func NewKafkaWriter(cfg *Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.Hash{},
	}
}
