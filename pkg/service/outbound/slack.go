package outbound

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Slack mirrors outbound messages into a Slack channel so that the office
// can follow what was sent to WhatsApp.
type Slack struct {
	api       *slack.Client
	channelID string
}

var _ interfaces.OutboundChannel = &Slack{}

// NewSlack creates a mirror posting to channelID with the provided bot token
func NewSlack(token, channelID string, opts ...slack.Option) (*Slack, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	return &Slack{
		api:       slack.New(token, opts...),
		channelID: channelID,
	}, nil
}

func (s *Slack) Send(ctx context.Context, msg *model.OutboundMessage) error {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.PlainTextType, msg.WhatsAppText, false, false), nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, "*"+msg.RecipientLabel+"*: "+msg.RecipientPhone, false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "`"+msg.NotificationID+"`", false, false),
		),
	}

	_, _, err := s.api.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(msg.WhatsAppText, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack mirror message",
			goerr.V("channel_id", s.channelID),
			goerr.V("notification_id", msg.NotificationID))
	}
	return nil
}
