package unfurl

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"
)

// parseOpenGraph extracts og:* meta tags from an HTML document. The first
// occurrence of each property wins. Parsing is best-effort: malformed markup
// yields whatever tags the tokenizer recovered.
func parseOpenGraph(htmlContent string) *openGraphData {
	og := &openGraphData{}
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return og
	}

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			content := getAttr(n, "content")
			switch getAttr(n, "property") {
			case "og:title":
				if og.Title == "" {
					og.Title = content
				}
			case "og:description":
				if og.Description == "" {
					og.Description = content
				}
			case "og:image":
				if og.Image == "" {
					og.Image = content
				}
			case "og:url":
				if og.URL == "" {
					og.URL = content
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	og.Title = strings.TrimSpace(og.Title)
	og.Description = strings.TrimSpace(og.Description)
	og.Image = strings.TrimSpace(og.Image)
	og.URL = strings.TrimSpace(og.URL)

	return og
}

// getAttr returns the value of the attribute key on n, or ""
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// resolveReference resolves ref against the page URL. Only http(s) results
// are returned; anything else yields "".
func resolveReference(pageURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	target, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(target)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	return resolved.String()
}

// extractDomain returns the registrable domain (eTLD+1) of urlStr, e.g.
// "news.example.co.uk" -> "example.co.uk". Hosts without one, such as IP
// addresses and localhost, are returned as is.
func extractDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}

// isSupported reports whether urlStr is an absolute http(s) URL
func isSupported(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}
