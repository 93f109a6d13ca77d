package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Bot        BotConfig        `envPrefix:"BOT_"`
	AliExpress AliExpressConfig `envPrefix:"ALIEXPRESS_"`
	Telemetry  TelemetryConfig  `envPrefix:"TELEMETRY_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:":8080"`
}

type BotConfig struct {
	Token        string  `env:"TOKEN,required"`
	Name         string  `env:"NAME" envDefault:"Ali Best Price"`
	AdminUserIDs []int64 `env:"ADMIN_USER_IDS"`
}

type AliExpressConfig struct {
	AppKey         string        `env:"APP_KEY,required"`
	AppSecret      string        `env:"APP_SECRET,required"`
	BaseURL        string        `env:"BASE_URL" envDefault:"https://api.aliexpress.com/rest"`
	TrackingID     string        `env:"TRACKING_ID" envDefault:"alibestprice"`
	AppSignature   string        `env:"APP_SIGNATURE" envDefault:"alibestprice"`
	ShipToCountry  string        `env:"SHIP_TO_COUNTRY" envDefault:"US"`
	RequestsPerMin int           `env:"REQUESTS_PER_MINUTE" envDefault:"30"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

type TelemetryConfig struct {
	DataDir    string `env:"DATA_DIR" envDefault:"data"`
	FlushEvery int    `env:"FLUSH_EVERY" envDefault:"100"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
