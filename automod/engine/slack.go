package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type SlackNotifier struct {
	SlackWebhookURL string
	// defaults to http.DefaultClient
	Client *http.Client
}

func (n *SlackNotifier) SendSanction(ctx context.Context, s Sanction) error {
	return n.sendSlackMsg(ctx, slackBody(s))
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

func slackBody(s Sanction) string {
	msg := fmt.Sprintf("⚠️ Moderation %s (%s) ⚠️\n", s.Action, s.Source)
	msg += fmt.Sprintf("Chat: `%s`\n", s.Chat.LogRepr())
	msg += fmt.Sprintf("User: `%s`\n", s.User.LogRepr())
	if s.Admin != nil {
		msg += fmt.Sprintf("By: `%s`\n", s.Admin.LogRepr())
	}
	if s.Count > 0 {
		msg += fmt.Sprintf("Violations: %d\n", s.Count)
	}
	if s.Display != "" {
		msg += fmt.Sprintf("For: %s\n", s.Display)
	} else {
		msg += fmt.Sprintf("For: %s\n", s.Duration)
	}
	return msg
}
