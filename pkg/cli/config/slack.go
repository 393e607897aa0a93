package config

import (
	"log/slog"

	"github.com/secmon-lab/warrant/pkg/domain/interfaces"
	"github.com/secmon-lab/warrant/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// Slack holds failure notification configuration
type Slack struct {
	OAuthToken string
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token for failure notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("WARRANT_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for failure notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("WARRANT_SLACK_CHANNEL"),
			Destination: &s.Channel,
		},
	}
}

// ConfigureOptional creates a Slack notifier if configured, returns nil if not
func (s *Slack) ConfigureOptional(logger *slog.Logger) interfaces.Notifier {
	if !s.IsConfigured() {
		logger.Warn("Slack not configured - failure notifications are disabled")
		return nil
	}

	logger.Info("Configuring Slack failure notifier", "channel", s.Channel)
	return notify.NewSlack(s.OAuthToken, s.Channel)
}

// IsConfigured checks if Slack notification is properly configured
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != "" && s.Channel != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.String("channel", s.Channel),
	)
}
