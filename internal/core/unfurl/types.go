package unfurl

// Card is the link preview extracted from a page. Missing values are empty
// strings.
type Card struct {
	URI         string `json:"uri"`         // Requested URL
	Title       string `json:"title"`       // og:title
	Description string `json:"description"` // og:description
	ImageURL    string `json:"imageUrl"`    // og:image, absolute
	Domain      string `json:"domain"`      // Registrable domain of the requested URL
}

// HasImage reports whether the page advertised a preview image.
func (c *Card) HasImage() bool {
	return c != nil && c.ImageURL != ""
}

// openGraphData holds the raw og:* values found in a document
type openGraphData struct {
	Title       string
	Description string
	Image       string
	URL         string
}
