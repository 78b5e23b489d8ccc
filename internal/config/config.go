package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DATABASE_URL" required:"true"`

	// JWTSecret may be left empty when JWTSecretName points at a Secret
	// Manager secret; main resolves it before the router is built.
	JWTSecret     string `envconfig:"JWT_SECRET"`
	JWTSecretName string `envconfig:"JWT_SECRET_NAME"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"72"`

	S3URL       string `envconfig:"S3_URL" required:"true"`
	S3Bucket    string `envconfig:"S3_BUCKET" required:"true"`
	S3Region    string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`

	GCPProjectID    string `envconfig:"GCP_PROJECT_ID"`
	MediaTopic      string `envconfig:"MEDIA_TOPIC" default:"media_processing"`
	UploadURLTTLMin int    `envconfig:"UPLOAD_URL_TTL_MIN" default:"15"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
