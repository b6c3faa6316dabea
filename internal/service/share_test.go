package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/fotoflix/internal/domain"
)

func TestSharerDefaults(t *testing.T) {
	s, err := NewSharer("", "")
	require.NoError(t, err)

	p := domain.Photo{ID: "abc", URLs: domain.PhotoURLs{Regular: "https://images.example/abc?w=1080&q=80"}}
	link := s.URL(p)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "api.whatsapp.com", u.Host)
	assert.Equal(t, "/send", u.Path)
	assert.Equal(t, "Check out this awesome photo: https://images.example/abc?w=1080&q=80", u.Query().Get("text"))
}

func TestSharerKeepsBaseQuery(t *testing.T) {
	s, err := NewSharer("https://share.example/post?via=fotoflix", "look: ")
	require.NoError(t, err)

	u, err := url.Parse(s.URL(domain.Photo{URLs: domain.PhotoURLs{Regular: "https://img/1"}}))
	require.NoError(t, err)
	assert.Equal(t, "fotoflix", u.Query().Get("via"))
	assert.Equal(t, "look: https://img/1", u.Query().Get("text"))
}

func TestSharerRejectsRelativeBase(t *testing.T) {
	_, err := NewSharer("/send", "")
	assert.Error(t, err)
}
