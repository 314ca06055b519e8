package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_NoDesk_Fetch_SplitsTitleOnLastAt(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(fixtureResponse(t, "nodesk.rss"), nil)

	source := NewNoDesk(newTestClient(mockClient))

	jobs, err := source.Fetch(context.Background())
	assert.NoError(err)
	require.Len(t, jobs, 2)

	loomly := jobs[0]
	assert.Equal("Loomly", loomly.Company)
	assert.Equal("Customer Success Manager", loomly.Position)
	assert.Equal("Thu, 20 Aug 2026 12:00:00 GMT", loomly.Date)
	assert.Equal("https://nodesk-cdn.example.com/loomly.png", loomly.Image.URI)
	assert.Equal("Help customers succeed.", loomly.Description)
	assert.Equal("nodesk", loomly.Source)

	// no explicit category, so the tag comes from the URL path
	assert.Equal([]string{"customer success"}, loomly.Tags)

	chorus := jobs[1]
	assert.Equal("Chorus One", chorus.Company)
	assert.Equal("Staff Engineer", chorus.Position)
	assert.Equal("Wed, 20 Aug 2025 00:00:00 GMT", chorus.Date)
	assert.Equal([]string{"engineering"}, chorus.Tags)
	assert.Equal(noDeskDefaultLogo, chorus.Image.URI)
}

func Test_NoDesk_Fetch_SkipsItemsWithoutLink(t *testing.T) {

	feed := `<rss><channel>
		<item><title>Ghost Role at Nowhere</title><pubDate>Thu, 20 Aug 2026 12:00:00 +0000</pubDate></item>
		<item><title>Real Role at Somewhere</title><link>https://nodesk.co/remote-jobs/ops/somewhere-real-role</link><pubDate>Thu, 20 Aug 2026 12:00:00 +0000</pubDate></item>
	</channel></rss>`

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(stringResponse(200, feed), nil)

	source := NewNoDesk(newTestClient(mockClient))

	jobs, err := source.Fetch(context.Background())
	assert.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Somewhere", jobs[0].Company)
}

func Test_TagsFromURL(t *testing.T) {

	tests := []struct {
		url  string
		want []string
	}{
		{"https://nodesk.co/remote-jobs/customer-success/loomly-role", []string{"customer success"}},
		{"https://nodesk.co/remote-jobs/", []string{"remote"}},
		{"https://nodesk.co/about", []string{"remote"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tagsFromURL(tt.url), tt.url)
	}
}
