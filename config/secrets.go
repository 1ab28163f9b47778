package config

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Credentials returns the venue API key/secret for the given environment.
// In prod they come from SSM Parameter Store so the yaml file never carries
// live keys; everywhere else the config/env values are used as-is.
func (cfg *VenueConfig) Credentials(env string) (key, secret string) {
	if env != "prod" {
		return cfg.APIKey, cfg.APISecret
	}

	key = getParameterStoreValue("TRADECOLLECTOR_VENUE_API_KEY", true)
	secret = getParameterStoreValue("TRADECOLLECTOR_VENUE_API_SECRET", true)

	// Fall back to local config if the parameters are missing.
	if key == "" {
		key = cfg.APIKey
	}
	if secret == "" {
		secret = cfg.APISecret
	}
	return key, secret
}

func getParameterStoreValue(parameterName string, decrypt bool) string {
	baseCtx := context.Background()
	ctxWithTimeout, cancel := context.WithTimeout(baseCtx, 5*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return ""
	}

	client := ssm.NewFromConfig(cfg)

	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := client.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return ""
	}

	if result.Parameter.Value == nil {
		return ""
	}

	return *result.Parameter.Value
}
