package email

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewMailer(t *testing.T) {
	tests := []struct {
		name     string
		config   MailerConfig
		wantType any
		wantErr  bool
	}{
		{name: "noop", config: MailerConfig{Provider: "noop"}, wantType: &noopMailer{}},
		{name: "empty provider", config: MailerConfig{}, wantType: &noopMailer{}},
		{name: "unknown provider", config: MailerConfig{Provider: "smtp"}, wantType: &noopMailer{}},
		{name: "ses", config: MailerConfig{Provider: "ses", FromAddress: "rsvp@example.com", SES: SESConfig{Region: "us-east-1"}}, wantType: &sesMailer{}},
		{name: "ses without from address", config: MailerConfig{Provider: "ses"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMailer(tt.config, testLogger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, m)
		})
	}
}

func TestNoopMailer_Send(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	assert.NoError(t, m.Send("a@b.co", "subject", "<p>hi</p>", "hi"))
}
