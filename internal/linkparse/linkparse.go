// Package linkparse recognizes AliExpress product links inside free text
// and extracts the product ID used as the API lookup key.
package linkparse

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
)

const (
	// Host of shortened redirect links carrying the target URL in a
	// query parameter.
	redirectHost = "s.click.aliexpress.com"

	targetURLParam = "dl_target_url"

	// Redirect links are unwrapped recursively; the cap guards against
	// self-referential inputs.
	maxRedirectDepth = 5
)

var linkPatterns = []*regexp.Regexp{
	// Standard item path: https://www.aliexpress.com/item/1234567890.html
	regexp.MustCompile(`https?://(?:www\.)?(?:[a-z]{2}\.)?aliexpress\.com/item/\w+\.html`),
	// Category/item path: https://www.aliexpress.com/1234/1234567890.html
	regexp.MustCompile(`https?://(?:www\.)?(?:[a-z]{2}\.)?aliexpress\.com/\d+/\d+\.html`),
	// Shortened redirect links
	regexp.MustCompile(`https?://(?:s\.)?click\.aliexpress\.com/\S+`),
	// Regional TLD
	regexp.MustCompile(`https?://(?:www\.)?aliexpress\.ru/item/\w+\.html`),
}

var anchoredPatterns = func() []*regexp.Regexp {
	anchored := make([]*regexp.Regexp, len(linkPatterns))
	for i, re := range linkPatterns {
		anchored[i] = regexp.MustCompile(`^` + re.String())
	}
	return anchored
}()

// ExtractLinks returns all AliExpress product links found in text, in
// pattern order then left-to-right. It never fails; unrecognizable or
// empty input yields an empty slice.
func ExtractLinks(text string) []string {
	if text == "" {
		return nil
	}

	var links []string
	for _, re := range linkPatterns {
		links = append(links, re.FindAllString(text, -1)...)
	}
	return links
}

// IsValidLink reports whether link matches one of the recognized product
// link shapes, anchored at the start of the string.
func IsValidLink(link string) bool {
	for _, re := range anchoredPatterns {
		if re.MatchString(link) {
			return true
		}
	}
	return false
}

// ExtractProductID extracts the product ID from an AliExpress link.
// It returns "" when no ID can be derived; callers treat that as "this
// candidate is not usable", not as a hard failure.
func ExtractProductID(ctx context.Context, link string) string {
	return extractProductID(ctx, link, maxRedirectDepth)
}

func extractProductID(ctx context.Context, link string, depth int) string {
	parsed, err := url.Parse(link)
	if err != nil {
		log.Warnf(ctx, "could not parse link %q: %v", link, err)
		return ""
	}

	if strings.Contains(parsed.Path, "/item/") {
		// Format: https://www.aliexpress.com/item/1234567890.html
		rest := strings.SplitN(parsed.Path, "/item/", 2)[1]
		if id, _, _ := strings.Cut(rest, "."); id != "" {
			return id
		}
	} else if parsed.Host == redirectHost {
		if depth <= 0 {
			log.Warnf(ctx, "redirect unwrap depth exceeded for link: %s", link)
			return ""
		}
		if target := parsed.Query().Get(targetURLParam); target != "" {
			return extractProductID(ctx, target, depth-1)
		}
	} else if segments := nonEmptySegments(parsed.Path); len(segments) >= 2 && strings.HasSuffix(segments[1], ".html") {
		// Format: https://www.aliexpress.com/1234/1234567890.html
		id, _, _ := strings.Cut(segments[1], ".")
		return id
	}

	log.Warnf(ctx, "could not extract product ID from link: %s", link)
	return ""
}

func nonEmptySegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
