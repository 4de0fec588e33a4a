package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient()

	assert.Equal(t, 10*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 100, transport.MaxIdleConns)
	assert.False(t, transport.DisableKeepAlives)
	assert.Nil(t, transport.TLSClientConfig)
}

func TestNewHTTPClient_Options(t *testing.T) {
	client := NewHTTPClient(
		WithTimeout(3*time.Second),
		WithMaxIdleConns(7),
		WithoutKeepAlives(),
		WithInsecureSkipVerify(),
	)

	assert.Equal(t, 3*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConns)
	assert.True(t, transport.DisableKeepAlives)
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestNewHTTPClientWithTimeout(t *testing.T) {
	client := NewHTTPClientWithTimeout(time.Second)
	assert.Equal(t, time.Second, client.Timeout)
}

type fakeTransport struct{}

func (fakeTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, nil }

func TestNewHTTPClient_CustomTransport(t *testing.T) {
	rt := fakeTransport{}
	client := NewHTTPClient(WithTransport(rt))
	assert.Equal(t, rt, client.Transport)
}
