package domain

// PhotoURLs holds the image renditions returned by the upstream API.
// Regular is used for grid display, Full for the lightbox and downloads.
type PhotoURLs struct {
	Raw     string `json:"raw,omitempty"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small,omitempty"`
	Thumb   string `json:"thumb,omitempty"`
}

// ProfileImage holds the author's avatar renditions.
type ProfileImage struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium"`
	Large  string `json:"large,omitempty"`
}

// Author is the attribution sub-record of a photo.
type Author struct {
	Name         string       `json:"name"`
	PortfolioURL string       `json:"portfolio_url"`
	ProfileImage ProfileImage `json:"profile_image"`
}

// Photo represents one image as received from the upstream API.
// Records are treated as immutable for the lifetime of a session; favorite
// status is never stored here.
type Photo struct {
	ID             string    `json:"id"`
	URLs           PhotoURLs `json:"urls"`
	AltDescription string    `json:"alt_description"`
	Likes          int       `json:"likes"`
	User           Author    `json:"user"`
}

// DownloadName returns the file name used when saving the full-resolution image.
func (p Photo) DownloadName() string {
	return "photo_" + p.ID + ".jpg"
}
