package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/service/outbound"
	"github.com/secmon-lab/duesoon/pkg/usecase"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Outbound holds CLI flags for the WhatsApp webhook and the Slack mirror
type Outbound struct {
	webhookURL     string
	webhookTimeout time.Duration
	slackBotToken  string
	slackChannel   string
}

// Flags returns CLI flags for outbound channels
func (x *Outbound) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-url",
			Usage:       "URL of the automation flow that forwards messages to WhatsApp",
			Category:    "Outbound",
			Sources:     cli.EnvVars("DUESOON_WEBHOOK_URL"),
			Destination: &x.webhookURL,
		},
		&cli.DurationFlag{
			Name:        "webhook-timeout",
			Usage:       "Timeout of one webhook request",
			Category:    "Outbound",
			Value:       outbound.DefaultWebhookTimeout,
			Sources:     cli.EnvVars("DUESOON_WEBHOOK_TIMEOUT"),
			Destination: &x.webhookTimeout,
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token used to mirror delivered messages",
			Category:    "Outbound",
			Sources:     cli.EnvVars("DUESOON_SLACK_BOT_TOKEN"),
			Destination: &x.slackBotToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID that receives mirrored messages",
			Category:    "Outbound",
			Sources:     cli.EnvVars("DUESOON_SLACK_CHANNEL"),
			Destination: &x.slackChannel,
		},
	}
}

func (x Outbound) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("webhook_configured", x.webhookURL != ""),
		slog.Duration("webhook_timeout", x.webhookTimeout),
		slog.Int("slack_bot_token.len", len(x.slackBotToken)),
		slog.String("slack_channel", x.slackChannel),
	)
}

// IsConfigured reports whether the WhatsApp webhook is set
func (x *Outbound) IsConfigured() bool {
	return x.webhookURL != ""
}

// Configure builds use case options for the configured channels. Without a
// webhook URL no channel is set and delivery requests fail until one is
// configured.
func (x *Outbound) Configure() ([]usecase.Option, error) {
	var opts []usecase.Option

	if x.webhookURL != "" {
		var webhookOpts []outbound.WebhookOption
		if x.webhookTimeout > 0 {
			webhookOpts = append(webhookOpts, outbound.WithTimeout(x.webhookTimeout))
		}
		webhook, err := outbound.NewWebhook(x.webhookURL, webhookOpts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure webhook")
		}
		opts = append(opts, usecase.WithOutboundChannel(webhook))
		logging.Default().Info("WhatsApp webhook enabled")
	} else {
		logging.Default().Warn("Webhook URL not configured, notifications will not be delivered")
	}

	if x.slackBotToken != "" {
		if x.slackChannel == "" {
			return nil, goerr.Wrap(ErrMissingSlackTarget, "cannot configure slack mirror")
		}
		mirror, err := outbound.NewSlack(x.slackBotToken, x.slackChannel)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure slack mirror")
		}
		opts = append(opts, usecase.WithMirrorChannel(mirror))
		logging.Default().Info("Slack mirror enabled", "channel", x.slackChannel)
	}

	return opts, nil
}
