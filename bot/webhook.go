package bot

import (
	"fmt"

	"github.com/Luismorlan/rambagiza/model"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/slack-go/slack"
)

const maxPreviewLength = 600

func buildSenderBlock(msg model.ContactMessage) slack.Block {
	name := msg.Fullname
	if name == "" {
		name = "Someone"
	}
	return slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s* <mailto:%s|%s> wrote through the contact form", name, msg.Email, msg.Email), false, false))
}

func buildBodyWithCutoff(msg model.ContactMessage) string {
	if len(msg.Body) > maxPreviewLength {
		return msg.Body[:maxPreviewLength] + "..."
	}
	return msg.Body
}

func buildContactBlocks(msg model.ContactMessage) []slack.Block {
	return []slack.Block{
		buildSenderBlock(msg),
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", buildBodyWithCutoff(msg), false, false), nil, nil),
	}
}

// PushContactMessageViaWebhook forwards a contact form message to the staff
// channel. Failures are logged and returned, the message is already stored.
func PushContactMessageViaWebhook(msg model.ContactMessage, webhookUrl string) error {
	if webhookUrl == "" {
		return nil
	}
	webhookMsg := &slack.WebhookMessage{
		Text:   fmt.Sprintf("New contact message from %s", msg.Email),
		Blocks: &slack.Blocks{BlockSet: buildContactBlocks(msg)},
	}
	err := slack.PostWebhook(webhookUrl, webhookMsg)
	if err != nil {
		Logger.Log.Error("fail to push contact message to slack: ", err)
	}
	return err
}
