package service

import (
	"fmt"
	"net/url"

	"github.com/timmy/fotoflix/internal/domain"
)

const (
	DefaultShareBaseURL = "https://api.whatsapp.com/send"
	DefaultShareMessage = "Check out this awesome photo: "
)

// Sharer builds share-target links that embed a photo's regular URL.
type Sharer struct {
	base    *url.URL
	message string
}

// NewSharer parses baseURL. Empty arguments select the defaults.
func NewSharer(baseURL, message string) (*Sharer, error) {
	if baseURL == "" {
		baseURL = DefaultShareBaseURL
	}
	if message == "" {
		message = DefaultShareMessage
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid share base url %q", baseURL)
	}
	return &Sharer{base: u, message: message}, nil
}

// URL returns the share link for p.
func (s *Sharer) URL(p domain.Photo) string {
	u := *s.base
	q := u.Query()
	q.Set("text", s.message+p.URLs.Regular)
	u.RawQuery = q.Encode()
	return u.String()
}
