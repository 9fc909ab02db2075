package models

// PageRecord holds everything extracted from one visited page. A record
// only exists when the page yielded a non-empty title; thumbnail and
// price are independently optional and absent fields simply skip their
// block in the rendered report.
type PageRecord struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Price        string `json:"price,omitempty"`
	AccessedAt   string `json:"accessed_at"`
}

// ImageRef describes one inline <img> element of a rendered page. Width
// and Height carry the declared attribute values as-is; pages frequently
// omit them or fill them with junk, so consumers parse them leniently.
type ImageRef struct {
	Src    string `json:"src"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}
