package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/domain/types"
	"github.com/slack-go/slack"
)

// SlackNotifier posts assignment failures to a Slack channel
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlack creates a Slack notifier posting to the given channel
func NewSlack(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// NotifyFailure implements interfaces.Notifier
func (n *SlackNotifier) NotifyFailure(ctx context.Context, req *model.AssignmentRequest, failure error) error {
	text := fmt.Sprintf(
		"Okta group assignment failed\n• user: `%s`\n• group: `%s`\n• domain: `%s`\n• error: %s",
		req.UserID, req.GroupID, req.OktaDomain, failure.Error(),
	)
	if code := types.StatusCode(failure); code != 0 {
		text += fmt.Sprintf("\n• status: %d", code)
	}

	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post failure notification",
			goerr.V("channel", n.channel),
		)
	}

	ctxlog.From(ctx).Debug("Posted failure notification", "channel", n.channel)
	return nil
}
