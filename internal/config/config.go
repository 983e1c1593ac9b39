package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type LogCfg struct {
	Level string `mapstructure:"level"`
}

type DatabaseCfg struct {
	DSN         string `mapstructure:"dsn"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
}

type RedisCfg struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	EnableTLS bool   `mapstructure:"enable_tls"`
}

type ExchangeNameCfg struct {
	QuestEvents string `mapstructure:"quest_events"`
}

type RoutingKeyCfg struct {
	QuestCreated  string `mapstructure:"quest_created"`
	QuestJoined   string `mapstructure:"quest_joined"`
	QuestLeft     string `mapstructure:"quest_left"`
	QuestExpired  string `mapstructure:"quest_expired"`
	QuestReviewed string `mapstructure:"quest_reviewed"`
	UserLeveledUp string `mapstructure:"user_leveled_up"`
	ChatMessage   string `mapstructure:"chat_message"`
}

type RabbitMQCfg struct {
	URL          string          `mapstructure:"url"`
	EnableTLS    bool            `mapstructure:"enable_tls"`
	ExchangeName ExchangeNameCfg `mapstructure:"exchange_name"`
	RoutingKey   RoutingKeyCfg   `mapstructure:"routing_key"`
}

type S3Cfg struct {
	Endpoint         string `mapstructure:"endpoint"`
	Region           string `mapstructure:"region"`
	Bucket           string `mapstructure:"bucket"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	UsePathStyle     bool   `mapstructure:"use_path_style"`
	PublicURLPrefix  string `mapstructure:"public_url_prefix"`
	PresignExpireSec int    `mapstructure:"presign_expire_sec"`
	MaxVideoMB       int64  `mapstructure:"max_video_mb"`
}

type TelemetryCfg struct {
	Enabled      bool    `mapstructure:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type AuthCfg struct {
	// Provider is "token" (local bearer tokens) or "supabase".
	Provider                 string        `mapstructure:"provider"`
	TokenPrefix              string        `mapstructure:"token_prefix"`
	SecretPepper             string        `mapstructure:"secret_pepper"`
	EnableArgon2Verification bool          `mapstructure:"enable_argon2_verification"`
	CacheSize                int           `mapstructure:"cache_size"`
	CacheTTL                 time.Duration `mapstructure:"cache_ttl"`
	SeedUserToken            string        `mapstructure:"seed_user_token"`
	SeedUsername             string        `mapstructure:"seed_username"`
	SupabaseProjectRef       string        `mapstructure:"supabase_project_ref"`
	SupabaseAPIKey           string        `mapstructure:"supabase_api_key"`
}

type QuestCfg struct {
	TTL                    time.Duration `mapstructure:"ttl"`
	DefaultMaxParticipants int           `mapstructure:"default_max_participants"`
	DefaultRadiusKm        float64       `mapstructure:"default_radius_km"`
	NearbyLimit            int           `mapstructure:"nearby_limit"`
	FreeQuestsPerWindow    int64         `mapstructure:"free_quests_per_window"`
	QuotaWindow            time.Duration `mapstructure:"quota_window"`
	ReviewXP               int64         `mapstructure:"review_xp"`
}

type SchedulerCfg struct {
	Enabled        bool          `mapstructure:"enabled"`
	ExpiryInterval time.Duration `mapstructure:"expiry_interval"`
	PurgeInterval  time.Duration `mapstructure:"purge_interval"`
	PurgeRetention time.Duration `mapstructure:"purge_retention"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	ResultsBuffer  int           `mapstructure:"results_buffer"`
}

type Config struct {
	App       AppCfg       `mapstructure:"app"`
	Log       LogCfg       `mapstructure:"log"`
	Database  DatabaseCfg  `mapstructure:"database"`
	Redis     RedisCfg     `mapstructure:"redis"`
	RabbitMQ  RabbitMQCfg  `mapstructure:"rabbitmq"`
	S3        S3Cfg        `mapstructure:"s3"`
	Telemetry TelemetryCfg `mapstructure:"telemetry"`
	Auth      AuthCfg      `mapstructure:"auth"`
	Quest     QuestCfg     `mapstructure:"quest"`
	Scheduler SchedulerCfg `mapstructure:"scheduler"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "glitch-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.port", 3000)

	v.SetDefault("log.level", "info")

	v.SetDefault("database.dsn", "host=localhost user=glitch password=glitch dbname=glitch port=5432 sslmode=disable")
	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.enable_tls", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.enable_tls", false)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.enable_tls", false)
	v.SetDefault("rabbitmq.exchange_name.quest_events", "glitch.quest_events")
	v.SetDefault("rabbitmq.routing_key.quest_created", "quest.created")
	v.SetDefault("rabbitmq.routing_key.quest_joined", "quest.joined")
	v.SetDefault("rabbitmq.routing_key.quest_left", "quest.left")
	v.SetDefault("rabbitmq.routing_key.quest_expired", "quest.expired")
	v.SetDefault("rabbitmq.routing_key.quest_reviewed", "quest.reviewed")
	v.SetDefault("rabbitmq.routing_key.user_leveled_up", "user.leveled_up")
	v.SetDefault("rabbitmq.routing_key.chat_message", "quest.chat_message")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.public_url_prefix", "")
	v.SetDefault("s3.presign_expire_sec", 900)
	v.SetDefault("s3.max_video_mb", 50)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("auth.provider", "token")
	v.SetDefault("auth.token_prefix", "glt_")
	v.SetDefault("auth.secret_pepper", "")
	v.SetDefault("auth.enable_argon2_verification", false)
	v.SetDefault("auth.seed_user_token", "")
	v.SetDefault("auth.supabase_project_ref", "")
	v.SetDefault("auth.supabase_api_key", "")
	v.SetDefault("auth.cache_size", 1024)
	v.SetDefault("auth.cache_ttl", 5*time.Minute)
	v.SetDefault("auth.seed_username", "glitch")

	v.SetDefault("quest.ttl", 3*time.Hour)
	v.SetDefault("quest.default_max_participants", 10)
	v.SetDefault("quest.default_radius_km", 5.0)
	v.SetDefault("quest.nearby_limit", 50)
	v.SetDefault("quest.free_quests_per_window", 1)
	v.SetDefault("quest.quota_window", 24*time.Hour)
	v.SetDefault("quest.review_xp", 5)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.expiry_interval", 5*time.Minute)
	v.SetDefault("scheduler.purge_interval", 24*time.Hour)
	v.SetDefault("scheduler.purge_retention", 24*time.Hour)
	v.SetDefault("scheduler.lock_ttl", time.Minute)
	v.SetDefault("scheduler.results_buffer", 16)
}

// Load reads configuration from an optional .env file, an optional config.yaml and
// GLITCH_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/glitch")

	v.SetEnvPrefix("GLITCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Quest.TTL <= 0 {
		return errors.New("quest.ttl must be positive")
	}
	if c.Quest.DefaultMaxParticipants <= 0 {
		return errors.New("quest.default_max_participants must be positive")
	}
	if c.Quest.NearbyLimit <= 0 {
		return errors.New("quest.nearby_limit must be positive")
	}
	if c.Scheduler.ExpiryInterval <= 0 || c.Scheduler.PurgeInterval <= 0 {
		return errors.New("scheduler intervals must be positive")
	}
	switch c.Auth.Provider {
	case "token", "supabase":
	default:
		return fmt.Errorf("unknown auth.provider %q", c.Auth.Provider)
	}
	return nil
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}
