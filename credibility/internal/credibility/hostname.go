package credibility

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// DomainMode selects how a hostname is reduced to its registrable domain.
type DomainMode int

const (
	// TwoLabel keeps the last two dot-separated labels. It misreads
	// multi-part suffixes: "news.bbc.co.uk" becomes "co.uk".
	TwoLabel DomainMode = iota
	// PublicSuffix uses the public suffix list ("bbc.co.uk").
	PublicSuffix
)

// DomainExtractor derives hostnames and registrable domains from URLs.
type DomainExtractor struct {
	mode DomainMode
}

// NewDomainExtractor creates an extractor for mode.
func NewDomainExtractor(mode DomainMode) *DomainExtractor {
	return &DomainExtractor{mode: mode}
}

// Hostname returns the lowercased ASCII hostname of rawURL. A URL without
// a scheme or host fails with domain.ErrInvalidURL.
func (d *DomainExtractor) Hostname(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidURL, err)
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if u.Scheme == "" || host == "" {
		return "", fmt.Errorf("%w: %q has no host", domain.ErrInvalidURL, rawURL)
	}

	if isASCII(host) {
		return strings.ToLower(host), nil
	}
	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidURL, err)
	}
	return strings.ToLower(ascii), nil
}

// hostProfile maps internationalized hostnames the way browsers do: no STD3
// character rules and no hyphen placement checks, so "my_blog.blogspot.com"
// and "ab--cd.kompas.com" stay valid.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
)

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Registrable reduces a hostname to the domain used as reputation key.
func (d *DomainExtractor) Registrable(host string) string {
	if d.mode == PublicSuffix {
		if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			return etld1
		}
		return host
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// Domain is Hostname followed by Registrable.
func (d *DomainExtractor) Domain(rawURL string) (string, error) {
	host, err := d.Hostname(rawURL)
	if err != nil {
		return "", err
	}
	return d.Registrable(host), nil
}
