package sources

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remotelist/jobs-aggregator/internal/fetch"
	"github.com/remotelist/jobs-aggregator/internal/retry"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func fixtureResponse(t *testing.T, file string) *http.Response {
	body, err := os.ReadFile("testdata/" + file)
	require.NoError(t, err)

	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBuffer(body)),
	}
}

func errorResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("upstream error")),
	}
}

func stringResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

// newTestClient builds a fetch client with a single-attempt retrier so
// failure tests stay fast.
func newTestClient(httpClient fetch.HTTPClient) *fetch.Client {
	retrier := retry.NewExecutor()
	retrier.SetMaxAttempts(1)

	client := fetch.NewClient(retrier)
	client.SetHTTPClient(httpClient)
	return client
}
