package domain

// FeedMode distinguishes the default feed from text search.
type FeedMode string

const (
	FeedModeDefault FeedMode = "default"
	FeedModeSearch  FeedMode = "search"
)

// FeedState is the state a renderer draws the grid from.
// Photos are kept in arrival order; ids repeated by the upstream API across
// pages are preserved.
type FeedState struct {
	Query   string  `json:"query"`
	Page    int     `json:"page"`
	Loading bool    `json:"loading"`
	Photos  []Photo `json:"photos"`
	// Seq is the generation of the current fresh search.
	Seq uint64 `json:"seq"`
}

// Mode reports whether the state is in default feed or search mode.
func (s FeedState) Mode() FeedMode {
	if s.Query == "" {
		return FeedModeDefault
	}
	return FeedModeSearch
}

// Clone returns a copy whose photo slice does not alias the receiver's.
func (s FeedState) Clone() FeedState {
	out := s
	out.Photos = make([]Photo, len(s.Photos))
	copy(out.Photos, s.Photos)
	return out
}

// ScrollPosition describes the renderer's viewport relative to its content,
// in pixels.
type ScrollPosition struct {
	ViewportHeight float64 `json:"viewport_height"`
	ScrollY        float64 `json:"scroll_y"`
	ContentHeight  float64 `json:"content_height"`
}

// NearBottom reports whether the viewport is within threshold pixels of the
// bottom of the content.
func (p ScrollPosition) NearBottom(threshold float64) bool {
	return p.ViewportHeight+p.ScrollY >= p.ContentHeight-threshold
}
