package chat

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all markup from s and returns plain text. Entities are
// decoded so "a < b" survives, and the result is re-sanitized until stable
// so encoded tags cannot come back as markup.
func Sanitize(s string) string {
	for range 3 {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}

// sanitizeParams checks tool parameters without rewriting them. The webhook
// secret and issue or pull request body are sent to GitHub as given, url must
// be an absolute http(s) URL, and any other value carrying markup is rejected.
func sanitizeParams(params map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch k {
		case "secret", "body":
			out[k] = v
		case "url":
			u, err := validateHookURL(v)
			if err != nil {
				return nil, err
			}
			out[k] = u
		default:
			trimmed := strings.TrimSpace(v)
			if Sanitize(trimmed) != trimmed {
				return nil, fmt.Errorf("%w: %s must not contain markup", ErrValidation, k)
			}
			out[k] = trimmed
		}
	}
	return out, nil
}

func validateHookURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: url: %v", ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: url must use http or https", ErrValidation)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: url must include a host", ErrValidation)
	}
	return raw, nil
}
