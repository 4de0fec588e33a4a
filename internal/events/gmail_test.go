package events

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webhook-notifier/internal/common/errors"
)

func gmailEnvelope(data string) []byte {
	return []byte(fmt.Sprintf(`{
		"message": {
			"data": %q,
			"messageId": "17307692776715457",
			"publishTime": "2025-11-24T13:15:15Z"
		},
		"subscription": "projects/p/subscriptions/gmail-webhook-notifications"
	}`, data))
}

func encodeNotification(email string, historyID uint64) string {
	return base64.StdEncoding.EncodeToString(
		[]byte(fmt.Sprintf(`{"emailAddress":%q,"historyId":%d}`, email, historyID)))
}

func TestParseGmail(t *testing.T) {
	receivedAt := time.Now()
	body := gmailEnvelope(encodeNotification("user@example.com", 312566))

	evt, err := ParseGmail(body, receivedAt)
	require.NoError(t, err)

	assert.Equal(t, SourceGmail, evt.Source())
	assert.Equal(t, TriggerKindNewMail, evt.TriggerKind())
	assert.Equal(t, "user@example.com", evt.EmailAddress)
	assert.Equal(t, uint64(312566), evt.HistoryID)
	assert.Equal(t, "17307692776715457", evt.MessageID)

	// publishTime wins over receipt time
	assert.Equal(t, time.Date(2025, 11, 24, 13, 15, 15, 0, time.UTC), evt.CreatedAt().UTC())
}

func TestParseGmail_URLSafeBase64(t *testing.T) {
	data := base64.URLEncoding.EncodeToString(
		[]byte(`{"emailAddress":"user@example.com","historyId":7}`))

	evt, err := ParseGmail(gmailEnvelope(data), time.Now())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), evt.HistoryID)
}

func TestParseGmail_CreatedAtDefaultsToReceipt(t *testing.T) {
	receivedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	body := []byte(fmt.Sprintf(`{"message":{"data":%q,"messageId":"1"}}`,
		encodeNotification("user@example.com", 9)))

	evt, err := ParseGmail(body, receivedAt)
	require.NoError(t, err)
	assert.Equal(t, receivedAt, evt.CreatedAt())
}

func TestParseGmail_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      []byte
		wantField string
	}{
		{
			name:      "no envelope",
			body:      []byte(`{"emailAddress":"user@example.com"}`),
			wantField: "message",
		},
		{
			name:      "empty data",
			body:      []byte(`{"message":{"messageId":"1"}}`),
			wantField: "message.data",
		},
		{
			name: "missing email address",
			body: gmailEnvelope(base64.StdEncoding.EncodeToString([]byte(`{"historyId":1}`))),

			wantField: "emailAddress",
		},
		{
			name:      "missing history id",
			body:      gmailEnvelope(base64.StdEncoding.EncodeToString([]byte(`{"emailAddress":"a@b.c"}`))),
			wantField: "historyId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGmail(tt.body, time.Now())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeMalformedPayload))
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestParseGmail_InvalidJSONAndBase64(t *testing.T) {
	_, err := ParseGmail([]byte(`not json`), time.Now())
	assert.True(t, errors.IsType(err, errors.ErrTypeMalformedPayload))

	_, err = ParseGmail(gmailEnvelope("!!!not-base64!!!"), time.Now())
	assert.True(t, errors.IsType(err, errors.ErrTypeMalformedPayload))

	_, err = ParseGmail(gmailEnvelope(base64.StdEncoding.EncodeToString([]byte("not json"))), time.Now())
	assert.True(t, errors.IsType(err, errors.ErrTypeMalformedPayload))
}

func TestGmailEvent_OutputMessageDeterministic(t *testing.T) {
	body := gmailEnvelope(encodeNotification("user@example.com", 312566))

	a, err := ParseGmail(body, time.Now())
	require.NoError(t, err)
	b, err := ParseGmail(body, time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, a.OutputMessage(), b.OutputMessage())
	assert.Equal(t, "New email for user@example.com (history 312566)", a.OutputMessage())
}
