package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is resolved once per execution context and handed to the handler.
type Config struct {
	ModelID      string `env:"MODEL_ID, default=stability.sd3-5-large-v1:0"`
	ModelIDParam string `env:"MODEL_ID_PARAM"`

	Bucket     string `env:"BUCKET_NAME, required"`
	KeyPrefix  string `env:"KEY_PREFIX, default=generated/"`
	URLExpires int    `env:"URL_EXPIRES_SECONDS, default=3600"`

	BedrockRegion string `env:"BEDROCK_REGION, default=us-west-2"`
	S3Region      string `env:"S3_REGION, default=us-east-2"`

	LogLevel string `env:"LOG_LEVEL, default=info"`
}

func Load(ctx context.Context) (Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var c Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, err
	}

	c.ModelID = strings.TrimSpace(c.ModelID)
	c.ModelIDParam = strings.TrimSpace(c.ModelIDParam)
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.KeyPrefix = strings.TrimSpace(c.KeyPrefix)
	c.BedrockRegion = strings.TrimSpace(c.BedrockRegion)
	c.S3Region = strings.TrimSpace(c.S3Region)

	if c.Bucket == "" {
		return Config{}, errors.New("BUCKET_NAME must not be blank")
	}
	if c.URLExpires <= 0 {
		return Config{}, errors.New("URL_EXPIRES_SECONDS must be positive")
	}
	return c, nil
}

func (c Config) Expiry() time.Duration {
	return time.Duration(c.URLExpires) * time.Second
}
