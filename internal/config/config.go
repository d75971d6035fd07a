package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQCfg struct {
	URL      string
	Exchange string
}

type S3Cfg struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UsePathStyle  bool
	SSE           string
	ArchivePrefix string
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type AuthCfg struct {
	ProviderSecret     string
	ProviderIssuer     string
	JwtSecret          string
	Issuer             string
	SessionTTLSec      int
	AllowedEmailDomain string
}

type BookingCfg struct {
	// SubmitMode is "async" (write in the background) or "await".
	SubmitMode        string
	EnforceUniqueSlot bool
	RequestsPerMinute int
	InFlightTTLSec    int
}

type LiveCfg struct {
	Channel string
}

type Config struct {
	App       AppCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Telemetry TelemetryCfg
	Auth      AuthCfg
	Booking   BookingCfg
	Live      LiveCfg
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_APP_PORT -> app.port

	// First assign a default value (effective regardless of whether there is a file or not)
	setDefaults(base)

	// Read the file (if any)
	if err := base.ReadInConfig(); err == nil {
		// After finding the file, manually perform one expansion of ${ENV}, and then parse it.
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		expanded := os.ExpandEnv(string(raw))

		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, err
		}
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetEnvPrefix("APP")
		setDefaults(v)

		cfg := new(Config)
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// No files are also allowed, using only env + default values
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "roombook")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "roombook.events")
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.archivePrefix", "cascade")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlpEndpoint", "")
	v.SetDefault("telemetry.sampleRatio", 1.0)
	v.SetDefault("auth.providerSecret", "")
	v.SetDefault("auth.providerIssuer", "")
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "roombook")
	v.SetDefault("auth.sessionTTLSec", 43200)
	v.SetDefault("auth.allowedEmailDomain", "@ifce.edu.br")
	v.SetDefault("booking.submitMode", "async")
	v.SetDefault("booking.enforceUniqueSlot", true)
	v.SetDefault("booking.requestsPerMinute", 30)
	v.SetDefault("booking.inFlightTTLSec", 30)
	v.SetDefault("live.channel", "roombook:live")
}
