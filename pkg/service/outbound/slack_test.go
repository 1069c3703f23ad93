package outbound_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/service/outbound"
	"github.com/slack-go/slack"
)

func TestNewSlack(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := outbound.NewSlack("", "C123")
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when channel is empty", func(t *testing.T) {
		_, err := outbound.NewSlack("test-token", "")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates channel when both are provided", func(t *testing.T) {
		s, err := outbound.NewSlack("test-token", "C123")
		gt.NoError(t, err).Required()
		gt.Value(t, s).NotNil()
	})
}

func TestSlack_Send(t *testing.T) {
	t.Run("posts composed text to channel", func(t *testing.T) {
		var channel, text, path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_ = r.ParseForm()
			channel = r.FormValue("channel")
			text = r.FormValue("text")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
		}))
		defer srv.Close()

		s, err := outbound.NewSlack("test-token", "C123", slack.OptionAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		msg := newMessage()
		gt.NoError(t, s.Send(context.Background(), msg)).Required()

		gt.Value(t, path).Equal("/chat.postMessage")
		gt.Value(t, channel).Equal("C123")
		gt.Value(t, text).Equal(msg.WhatsAppText)
	})

	t.Run("API error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		}))
		defer srv.Close()

		s, err := outbound.NewSlack("test-token", "C404", slack.OptionAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		err = s.Send(context.Background(), newMessage())
		gt.Value(t, err).NotNil()
	})
}

func TestSlackIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channelID == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	s, err := outbound.NewSlack(token, channelID)
	gt.NoError(t, err).Required()
	gt.NoError(t, s.Send(context.Background(), newMessage()))
}
