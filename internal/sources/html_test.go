package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StripHTML(t *testing.T) {

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"tags and entities",
			"<p>Build &amp; scale</p>\n\n<ul><li>Go</li><li>SQL</li></ul>",
			"Build & scale GoSQL",
		},
		{
			"smart quotes",
			"We&#8217;re hiring &#8220;remotely&#8221;",
			`We're hiring "remotely"`,
		},
		{
			"plain text untouched",
			"Just a sentence.",
			"Just a sentence.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.html))
		})
	}
}

func Test_ExtractImageURL(t *testing.T) {

	const fallback = "https://example.com/default.png"

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"img tag wins",
			`<img src="https://cdn.example.com/logo.png"> see also https://cdn.example.com/other.jpg`,
			"https://cdn.example.com/logo.png",
		},
		{
			"bare url fallback",
			"banner at https://cdn.example.com/banner.webp today",
			"https://cdn.example.com/banner.webp",
		},
		{
			"relative src ignored",
			`<img src="/assets/logo.png">`,
			fallback,
		},
		{
			"nothing found",
			"<p>no images here</p>",
			fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractImageURL(tt.html, fallback))
		})
	}
}
