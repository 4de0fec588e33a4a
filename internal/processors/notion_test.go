package processors

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/notion"
	"webhook-notifier/internal/signature"
)

const notionPageBody = `{
	"type": "page.created",
	"entity": {"id": "page-1", "type": "page"},
	"timestamp": "2025-11-22T14:47:01Z"
}`

func TestNotionProcessor_VerifySigned(t *testing.T) {
	d, _, _, _ := newTestDispatcher(time.Minute)
	p := NewNotionProcessor("notion-secret", nil, config.GitHubDispatch{}, d, quietLogger())
	body := []byte(notionPageBody)

	r := httptest.NewRequest("POST", "/webhook/notion", nil)
	r.Header.Set("X-Notion-Signature", "sha256="+signature.Compute(body, "notion-secret"))
	assert.NoError(t, p.Verify(r, body))

	r = httptest.NewRequest("POST", "/webhook/notion", nil)
	err := p.Verify(r, body)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
}

func TestNotionProcessor_VerifyFailsClosedWithoutSecret(t *testing.T) {
	d, _, _, _ := newTestDispatcher(time.Minute)
	p := NewNotionProcessor("", nil, config.GitHubDispatch{}, d, quietLogger())

	r := httptest.NewRequest("POST", "/webhook/notion", nil)
	err := p.Verify(r, []byte(notionPageBody))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
}

func TestNotionProcessor_HandshakeBypassesSignature(t *testing.T) {
	d, _, trigger, _ := newTestDispatcher(time.Minute)
	p := NewNotionProcessor("", nil, config.GitHubDispatch{}, d, quietLogger())
	body := []byte(`{"verification_token":"secret_tMrlL1qK5vuQAh1b6cZGhFChZTSYJlce98V0pYn7yBl"}`)

	r := httptest.NewRequest("POST", "/webhook/notion", nil)
	require.NoError(t, p.Verify(r, body))

	evt, err := p.Parse(body, time.Now())
	require.NoError(t, err)

	result, err := p.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAcknowledged, result.Outcome)
	assert.Empty(t, trigger.dispatches)
}

func TestNotionProcessor_TodayPageDispatchesWorkflow(t *testing.T) {
	d, sms, trigger, _ := newTestDispatcher(time.Minute)
	pages := &fakePages{page: &notion.Page{ID: "page-1", Title: "Buy groceries", Today: true}}
	workflow := config.GitHubDispatch{Token: "t", Repo: "me/tasks", WorkflowID: "task.yml"}
	p := NewNotionProcessor("notion-secret", pages, workflow, d, quietLogger())

	evt, err := p.Parse([]byte(notionPageBody), time.Now())
	require.NoError(t, err)

	result, err := p.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDispatched, result.Outcome)

	require.Len(t, trigger.dispatches, 1)
	assert.Equal(t, "page-1", trigger.dispatches[0].Inputs["page_id"])
	assert.Equal(t, "Buy groceries", trigger.dispatches[0].Inputs["page_title"])
	assert.Empty(t, sms.messages)
}

func TestNotionProcessor_NotTodayIgnored(t *testing.T) {
	d, _, trigger, _ := newTestDispatcher(time.Minute)
	pages := &fakePages{page: &notion.Page{ID: "page-1", Title: "Someday", Today: false}}
	p := NewNotionProcessor("notion-secret", pages, config.GitHubDispatch{}, d, quietLogger())

	evt, err := p.Parse([]byte(notionPageBody), time.Now())
	require.NoError(t, err)

	result, err := p.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, result.Outcome)
	assert.Empty(t, trigger.dispatches)
}

func TestNotionProcessor_PageLookupFailure(t *testing.T) {
	d, _, _, _ := newTestDispatcher(time.Minute)
	pages := &fakePages{err: errors.InternalError("notion down", nil)}
	p := NewNotionProcessor("notion-secret", pages, config.GitHubDispatch{}, d, quietLogger())

	evt, err := p.Parse([]byte(notionPageBody), time.Now())
	require.NoError(t, err)

	_, err = p.Handle(context.Background(), evt)
	require.Error(t, err)
}
