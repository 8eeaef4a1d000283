package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	// MaxArticleLength caps fetched text before it reaches the language service.
	MaxArticleLength = 8000

	// paragraphs shorter than this are skipped when no article container exists
	minFallbackParagraph = 50

	articleFetchTimeout = 30 * time.Second
	articleDialTimeout  = 10 * time.Second
)

// ErrURLNotAllowed is wrapped in a FetchError when the article URL uses a
// scheme other than http(s) or points at a non-public address.
var ErrURLNotAllowed = errors.New("article URL not allowed")

// FetchError reports a failure to download or parse an article URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch article %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ArticleService downloads a web page and extracts its paragraph text.
type ArticleService struct {
	client       *http.Client
	allowPrivate bool
	log          zerolog.Logger
}

// ArticleOptions overrides fetcher defaults.
type ArticleOptions struct {
	// Client replaces the default client. The dial-time address check only
	// applies to the default client; the pre-request check always applies.
	Client *http.Client

	// AllowPrivateHosts permits loopback, private and link-local targets.
	AllowPrivateHosts bool
}

// NewArticleService builds a fetcher. By default only public http(s) hosts
// are reachable, checked both before the request and when dialing so
// redirects and DNS rebinding cannot reach internal addresses.
func NewArticleService(opts ArticleOptions, log zerolog.Logger) *ArticleService {
	client := opts.Client
	if client == nil {
		dialer := &net.Dialer{Timeout: articleDialTimeout}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if !opts.AllowPrivateHosts {
			dialer.Control = publicOnlyControl
			// a proxy would be dialed instead of the target
			transport.Proxy = nil
		}
		transport.DialContext = dialer.DialContext
		client = &http.Client{Timeout: articleFetchTimeout, Transport: transport}
	}
	return &ArticleService{client: client, allowPrivate: opts.AllowPrivateHosts, log: log}
}

// Fetch returns the page's article text, trimmed to MaxArticleLength bytes.
func (s *ArticleService) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := s.checkURL(ctx, rawURL); err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", "podcastify/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}

	text := extractArticleText(doc)
	if text == "" {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("no article text found")}
	}

	if len(text) > MaxArticleLength {
		text = truncateUTF8(text, MaxArticleLength)
	}

	s.log.Info().
		Str("url", rawURL).
		Str("title", strings.TrimSpace(doc.Find("title").First().Text())).
		Int("text_len", len(text)).
		Msg("article fetched")

	return text, nil
}

// extractArticleText prefers paragraphs inside common article containers
// and falls back to every sufficiently long paragraph on the page.
func extractArticleText(doc *goquery.Document) string {
	var b strings.Builder
	add := func(s *goquery.Selection) {
		p := strings.TrimSpace(s.Text())
		if p == "" {
			return
		}
		b.WriteString(p)
		b.WriteString("\n\n")
	}

	container := doc.Find("article, .article, .post, .content, main")
	if container.Length() > 0 {
		container.Find("p").Each(func(_ int, s *goquery.Selection) { add(s) })
	} else {
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			if len(s.Text()) > minFallbackParagraph {
				add(s)
			}
		})
	}

	return strings.TrimSpace(b.String())
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// checkURL rejects non-http(s) schemes and, unless private hosts are
// allowed, hosts that resolve to a non-public address.
func (s *ArticleService) checkURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrURLNotAllowed, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrURLNotAllowed)
	}
	if s.allowPrivate {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		return checkPublicIP(ip)
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, a := range addrs {
		if err := checkPublicIP(a.IP); err != nil {
			return err
		}
	}
	return nil
}

// publicOnlyControl is a net.Dialer Control hook that refuses connections
// to non-public addresses.
func publicOnlyControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrURLNotAllowed, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: unresolved address %s", ErrURLNotAllowed, host)
	}
	return checkPublicIP(ip)
}

func checkPublicIP(ip net.IP) error {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s is not a public address", ErrURLNotAllowed, ip)
	}
	return nil
}
