package config

import (
	"log/slog"

	"github.com/secmon-lab/warrant/pkg/service/okta"
	"github.com/urfave/cli/v3"
)

// Okta holds Okta API configuration
type Okta struct {
	APIToken string
	Domain   string
}

// Flags returns CLI flags for Okta configuration
func (o *Okta) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "okta-api-token",
			Usage:    "Okta API token (SSWS credential)",
			Category: "Okta",
			// OKTA_API_TOKEN matches the secret name used by the hosting framework
			Sources:     cli.EnvVars("WARRANT_OKTA_API_TOKEN", "OKTA_API_TOKEN"),
			Destination: &o.APIToken,
		},
		&cli.StringFlag{
			Name:        "okta-domain",
			Usage:       "Default Okta organization domain (e.g. example.okta.com)",
			Category:    "Okta",
			Sources:     cli.EnvVars("WARRANT_OKTA_DOMAIN"),
			Destination: &o.Domain,
		},
	}
}

// Configure creates an Okta API client
func (o *Okta) Configure() *okta.Client {
	return okta.New()
}

// HasToken checks if an API token is configured
func (o *Okta) HasToken() bool {
	return o.APIToken != ""
}

// LogValue returns structured log value. The token itself never reaches logs.
func (o Okta) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_api_token", o.APIToken != ""),
		slog.String("domain", o.Domain),
	)
}
