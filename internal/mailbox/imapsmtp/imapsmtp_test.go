package imapsmtp

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestComposeReplyAddsRePrefix(t *testing.T) {
	msg := composeReply("me@example.com", "ada@example.com",
		"Quarterly report", "body text", "", "id-1@example.com")

	assert.Contains(t, msg, "Subject: Re: Quarterly report\r\n")
	assert.Contains(t, msg, "From: me@example.com\r\n")
	assert.Contains(t, msg, "To: ada@example.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\nbody text"))
}

func TestComposeReplyKeepsExistingRePrefix(t *testing.T) {
	msg := composeReply("me@example.com", "ada@example.com",
		"RE: Quarterly report", "body", "", "id-1@example.com")

	assert.Contains(t, msg, "Subject: RE: Quarterly report\r\n")
	assert.NotContains(t, msg, "Re: RE:")
}

func TestComposeReplyThreadsWithInReplyTo(t *testing.T) {
	msg := composeReply("me@example.com", "ada@example.com",
		"Report", "body", "<orig-id@example.com>", "id-1@example.com")

	assert.Contains(t, msg, "In-Reply-To: <orig-id@example.com>\r\n")
	assert.Contains(t, msg, "References: <orig-id@example.com>\r\n")
	assert.NotContains(t, msg, "<<")
}

func TestComposeReplyOmitsThreadingWhenUnknown(t *testing.T) {
	msg := composeReply("me@example.com", "ada@example.com",
		"Report", "body", "", "id-1@example.com")

	assert.NotContains(t, msg, "In-Reply-To")
	assert.NotContains(t, msg, "References")
}

func TestMakeSnippetCollapsesAndTruncates(t *testing.T) {
	assert.Equal(t, "a b c", makeSnippet("a\n\n  b\t c"))

	long := strings.Repeat("word ", 100)
	snippet := makeSnippet(long)
	assert.LessOrEqual(t, len(snippet), snippetLen)
	assert.True(t, strings.HasSuffix(snippet, "..."))
}

func TestMakeSnippetKeepsRuneBoundaries(t *testing.T) {
	snippet := makeSnippet(strings.Repeat("日", 200))

	assert.True(t, utf8.ValidString(snippet))
	assert.LessOrEqual(t, len(snippet), snippetLen)
	assert.True(t, strings.HasSuffix(snippet, "..."))
}

func TestStripHTMLDropsTagsAndKeepsText(t *testing.T) {
	html := "<html><body><p>Hello <b>Ada</b></p><p>see you Friday</p></body></html>"
	text := stripHTML(html)

	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "Ada")
	assert.Contains(t, text, "see you Friday")
	assert.NotContains(t, text, "<")
}
