package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmapi/internal/config"
)

func newTestLogger(buf *bytes.Buffer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}

func TestNew_FallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	m := New(config.SMTPConfig{}, newTestLogger(&buf))
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "SMTP_HOST not set")

	m = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, newTestLogger(&buf))
	_, ok = m.(*SMTPMailer)
	assert.True(t, ok)
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(newTestLogger(&buf))

	err := m.Send(context.Background(), Message{To: []string{"a@x.io", "b@x.io"}, Subject: "Hi", Body: "Your code is 123456"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "a@x.io,b@x.io", entry["to"])
	assert.Equal(t, "Hi", entry["subject"])
	assert.Equal(t, "mail_logged", entry["event"])

	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestBuildMessage(t *testing.T) {
	_, err := buildMessage("not an address", Message{To: []string{"a@x.io"}})
	assert.Error(t, err)

	_, err = buildMessage("from@x.io", Message{To: []string{"bad"}})
	assert.Error(t, err)

	msg, err := buildMessage("from@x.io", Message{To: []string{"a@x.io"}, Subject: "S", Body: "<b>x</b>", HTML: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"S"}, msg.GetGenHeader("Subject"))
}

func TestSMTPMailer_ClientOptions(t *testing.T) {
	m := &SMTPMailer{cfg: config.SMTPConfig{Host: "h", Port: 25}}
	assert.Len(t, m.clientOptions(), 2)

	m.cfg.Username = "user"
	assert.Len(t, m.clientOptions(), 5)

	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipients)
}
