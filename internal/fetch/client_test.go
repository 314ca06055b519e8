package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/remotelist/jobs-aggregator/internal/retry"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func responseWithBody(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func Test_Client_GetJSON_SendsBrowserHeaders(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://api.example.com/jobs" &&
			req.Header.Get("User-Agent") != "" &&
			req.Header.Get("Accept") == "application/json, text/plain, */*"
	})).Return(responseWithBody(200, `[{"id":"1"}]`), nil)

	client := NewClient(retry.NewExecutor())
	client.SetHTTPClient(mockClient)

	body, err := client.GetJSON(context.Background(), "example", "https://api.example.com/jobs")
	assert.NoError(err)
	assert.Equal(`[{"id":"1"}]`, string(body))
}

func Test_Client_GetJSON_NonOKStatusFails(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(responseWithBody(503, "maintenance"), nil)

	retrier := retry.NewExecutor()
	retrier.SetMaxAttempts(1)

	client := NewClient(retrier)
	client.SetHTTPClient(mockClient)

	_, err := client.GetJSON(context.Background(), "example", "https://api.example.com/jobs")
	assert.Error(t, err)

	var unavailable *retry.SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func Test_Client_GetFeed_CachesBody(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("Accept") == "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.7"
	})).Return(responseWithBody(200, "<rss></rss>"), nil).Once()

	client := NewClient(retry.NewExecutor())
	client.SetHTTPClient(mockClient)

	first, err := client.GetFeed(context.Background(), "feed", "https://example.com/jobs.rss")
	assert.NoError(err)

	second, err := client.GetFeed(context.Background(), "feed", "https://example.com/jobs.rss")
	assert.NoError(err)
	assert.Equal(first, second)

	mockClient.AssertNumberOfCalls(t, "Do", 1)
}
