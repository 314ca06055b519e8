package sources

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func Test_RemoteOK_Fetch_DropsSentinelAndMalformedRecords(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == remoteOKAPIURL
	})).Return(fixtureResponse(t, "remoteok.json"), nil)

	source := NewRemoteOK(newTestClient(mockClient))

	jobs, err := source.Fetch(context.Background())
	assert.NoError(err)

	// legal notice and the id-less record are gone
	assert.Len(jobs, 2)

	first := jobs[0]
	assert.Equal("1092231", first.ID)
	assert.Equal("Driftwave", first.Company)
	assert.Equal("Senior Backend Engineer", first.Position)
	assert.Equal("Thu, 20 Aug 2026 09:30:00 GMT", first.Date)
	assert.Equal("https://cdn.example.com/driftwave-logo.png", first.Image.URI)
	assert.Equal("Build & scale our event pipeline.", first.Description)
	assert.Equal([]string{"golang", "backend"}, first.Tags)
	assert.Equal("remoteok", first.Source)
	assert.Equal("Worldwide", first.Location)
}

func Test_RemoteOK_Fetch_EpochDateAndDefaultTag(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(fixtureResponse(t, "remoteok.json"), nil)

	source := NewRemoteOK(newTestClient(mockClient))

	jobs, err := source.Fetch(context.Background())
	assert.NoError(err)

	second := jobs[1]
	assert.Equal("1092255", second.ID)
	assert.Equal("Wed, 20 Aug 2025 00:00:00 GMT", second.Date)
	assert.Equal([]string{"remote"}, second.Tags)
	assert.Equal("Pipelines – batch and streaming", second.Description)
	assert.Equal(remoteOKDefaultLogo, second.Image.URI)
}

func Test_RemoteOK_Fetch_SourceDownReturnsError(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(errorResponse(503), nil)

	source := NewRemoteOK(newTestClient(mockClient))

	jobs, err := source.Fetch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, jobs)
}
