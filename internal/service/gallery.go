package service

import (
	"errors"

	"github.com/timmy/fotoflix/internal/domain"
	"github.com/timmy/fotoflix/internal/favorites"
	"github.com/timmy/fotoflix/internal/feed"
	"github.com/timmy/fotoflix/internal/metrics"
)

// ErrPhotoNotFound is returned for ids that are neither displayed nor
// favorites.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoView is a photo as drawn by a renderer. Favorite is computed from the
// favorites set each time a view is built.
type PhotoView struct {
	domain.Photo
	Favorite bool `json:"favorite"`
}

// FeedView is the grid a renderer draws.
type FeedView struct {
	Query   string          `json:"query"`
	Mode    domain.FeedMode `json:"mode"`
	Page    int             `json:"page"`
	Loading bool            `json:"loading"`
	Total   int             `json:"total"`
	Photos  []PhotoView     `json:"photos"`
}

// FavoritesView is the dedicated favorites listing.
type FavoritesView struct {
	Total  int         `json:"total"`
	Photos []PhotoView `json:"photos"`
}

// Gallery composes the feed controller and the favorites set for renderers.
type Gallery struct {
	feed      *feed.Controller
	favorites *favorites.Set
	sharer    *Sharer
	events    *EventHub
}

// NewGallery wires controller and set change notifications into events.
func NewGallery(controller *feed.Controller, favs *favorites.Set, sharer *Sharer, events *EventHub) *Gallery {
	g := &Gallery{feed: controller, favorites: favs, sharer: sharer, events: events}

	controller.OnChange(func(s domain.FeedState) {
		events.Publish(Event{Type: EventFeed, Data: g.buildFeedView(s)})
	})
	favs.OnToggle(func(e favorites.ToggleEvent) {
		metrics.Favorites.Set(float64(favs.Len()))
		events.Publish(Event{Type: EventFavorite, Data: e})
	})
	return g
}

// Feed returns the controller driving the gallery.
func (g *Gallery) Feed() *feed.Controller {
	return g.feed
}

// Events returns the hub change notifications are published on.
func (g *Gallery) Events() *EventHub {
	return g.events
}

// FeedView renders the current feed state.
func (g *Gallery) FeedView() FeedView {
	return g.buildFeedView(g.feed.State())
}

func (g *Gallery) buildFeedView(s domain.FeedState) FeedView {
	return FeedView{
		Query:   s.Query,
		Mode:    s.Mode(),
		Page:    s.Page,
		Loading: s.Loading,
		Total:   len(s.Photos),
		Photos:  g.views(s.Photos),
	}
}

// FavoritesView renders the favorites in the order they were added.
func (g *Gallery) FavoritesView() FavoritesView {
	list := g.favorites.List()
	return FavoritesView{Total: len(list), Photos: g.views(list)}
}

func (g *Gallery) views(photos []domain.Photo) []PhotoView {
	out := make([]PhotoView, len(photos))
	for i, p := range photos {
		out[i] = PhotoView{Photo: p, Favorite: g.favorites.IsFavorite(p.ID)}
	}
	return out
}

// Photo finds id among the displayed photos, then among the favorites.
func (g *Gallery) Photo(id string) (domain.Photo, error) {
	if p, ok := g.feed.Lookup(id); ok {
		return p, nil
	}
	if p, ok := g.favorites.Get(id); ok {
		return p, nil
	}
	return domain.Photo{}, ErrPhotoNotFound
}

// PhotoView renders one photo for the lightbox.
func (g *Gallery) PhotoView(id string) (PhotoView, error) {
	p, err := g.Photo(id)
	if err != nil {
		return PhotoView{}, err
	}
	return PhotoView{Photo: p, Favorite: g.favorites.IsFavorite(id)}, nil
}

// ToggleFavorite toggles id and returns its new membership.
func (g *Gallery) ToggleFavorite(id string) (bool, error) {
	p, err := g.Photo(id)
	if err != nil {
		return false, err
	}
	return g.favorites.Toggle(p), nil
}

// ShareURL returns the share link for id.
func (g *Gallery) ShareURL(id string) (string, error) {
	p, err := g.Photo(id)
	if err != nil {
		return "", err
	}
	return g.sharer.URL(p), nil
}
