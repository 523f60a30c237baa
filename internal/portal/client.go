// Package portal talks to the Itaú Link web portal: it performs the login
// handshake and fetches monthly account statements.
package portal

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/itaulink/itaulink/internal/importer"
	"github.com/itaulink/itaulink/internal/model"
	"github.com/itaulink/itaulink/internal/window"
)

const (
	loginPath         = "/appl/servlet/FeaServlet"
	secondLoginPath   = "/trx/loginParalelo"
	historyPathFormat = "/trx/cuentas/%s/%s/%s/%s/consultaHistorica"
	currentPathFormat = "/trx/cuentas/%s/%s/mesActual"

	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultConcurrency = 16
	maxRedirects       = 10
)

// Session is the cookie set issued by the login handshake. It is never
// modified after Authenticate returns and is safe for concurrent use.
type Session struct {
	cookies []*http.Cookie
}

// NewSession creates a Session from a copy of cookies.
func NewSession(cookies []*http.Cookie) Session {
	return Session{cookies: copyCookies(cookies)}
}

// Cookies returns a copy of the session cookies.
func (s Session) Cookies() []*http.Cookie {
	return copyCookies(s.cookies)
}

func copyCookies(cookies []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		cp := *c
		out[i] = &cp
	}
	return out
}

func (s Session) apply(req *http.Request) {
	for _, c := range s.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

// Client is an Itaú Link portal client.
type Client struct {
	baseURL    string
	http       *http.Client
	classifier *importer.Classifier
	sem        *semaphore.Weighted
	limiter    *rate.Limiter
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithConcurrency bounds the number of statement requests in flight across
// every account fetched through the Client.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRateLimit paces statement requests; rps <= 0 disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithClock overrides the source of "today" used to pick the current month.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client for the portal rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base url: %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		classifier: importer.DefaultClassifier(),
		sem:        semaphore.NewWeighted(defaultConcurrency),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StatementURL returns the endpoint for one account month. The current month
// has its own route; earlier months are addressed by MM/YY.
func (c *Client) StatementURL(acct model.Account, w window.Window, today time.Time) string {
	typeID := url.PathEscape(acct.AccountTypeID)
	hash := url.PathEscape(acct.Hash)
	if w.IsCurrent(today) {
		return c.baseURL + fmt.Sprintf(currentPathFormat, typeID, hash)
	}
	return c.baseURL + fmt.Sprintf(historyPathFormat, typeID, hash, w.MM(), w.YY())
}

// StatementPayload returns the raw request body for one account month.
func StatementPayload(acct model.Account, w window.Window) string {
	return fmt.Sprintf("0:%s:%s:%s-%s:", acct.RawCurrency, acct.Hash, w.MM(), w.YY())
}
