package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/itaulink/itaulink/internal/logger"
	"github.com/itaulink/itaulink/internal/portal/form"
)

// ErrAuthentication is returned when the login handshake cannot be completed
// or the account listing cannot be recovered from the home page.
var ErrAuthentication = errors.New("authentication failed")

var accountListingPattern = regexp.MustCompile(`var mensajeUsuario = JSON\.parse\('(.*?)'`)

func loginForm(username, password string) url.Values {
	return url.Values{
		"segmento":       {"panelPersona"},
		"tipo_documento": {"1"},
		"nro_documento":  {username},
		"pass":           {password},
		"password":       {password},
		"id":             {"login"},
		"tipo_usuario":   {"R"},
	}
}

// Authenticate performs the two-step login. It returns the Session set by
// the first redirect of the second step together with the raw account
// listing embedded in the landing page.
func (c *Client) Authenticate(ctx context.Context, username, password string) (Session, json.RawMessage, error) {
	log := logger.FromContext(ctx)

	// Step 1: credentials in, auto-submitting hidden form out.
	page, err := postForm(ctx, c.http, c.baseURL+loginPath, loginForm(username, password))
	if err != nil {
		return Session{}, nil, fmt.Errorf("%w: submitting credentials: %w", ErrAuthentication, err)
	}
	fields, err := form.Extract(bytes.NewReader(page))
	if err != nil {
		return Session{}, nil, fmt.Errorf("%w: reading login form: %w", ErrAuthentication, err)
	}
	log.Debug().Int("fields", len(fields)).Msg("login form extracted")

	// Step 2: resubmit the form verbatim and walk the redirects by hand so
	// the first hop's Set-Cookie headers are observable.
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return Session{}, nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	hc := &http.Client{
		Timeout:   c.http.Timeout,
		Transport: c.http.Transport,
		Jar:       jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, v)
	}
	req, err := newFormRequest(ctx, c.baseURL+secondLoginPath, values)
	if err != nil {
		return Session{}, nil, err
	}
	hops, body, err := followRedirects(hc, req)
	if err != nil {
		return Session{}, nil, fmt.Errorf("%w: resubmitting login form: %w", ErrAuthentication, err)
	}
	if len(hops) == 0 {
		return Session{}, nil, fmt.Errorf("%w: login form was not redirected", ErrAuthentication)
	}

	cookies := hops[0].Cookies()
	if len(cookies) == 0 {
		return Session{}, nil, fmt.Errorf("%w: first redirect set no cookies", ErrAuthentication)
	}
	log.Debug().Int("hops", len(hops)).Int("cookies", len(cookies)).Msg("session established")

	listing, err := extractAccountListing(body)
	if err != nil {
		return Session{}, nil, err
	}
	return NewSession(cookies), listing, nil
}

// extractAccountListing pulls the JSON handed to JSON.parse on the landing
// page. Raw newlines are removed first; escaped ones inside the JSON stay.
func extractAccountListing(page []byte) (json.RawMessage, error) {
	text := strings.ReplaceAll(string(page), "\n", "")
	m := accountListingPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w: account listing not found in landing page", ErrAuthentication)
	}
	if !json.Valid([]byte(m[1])) {
		return nil, fmt.Errorf("%w: account listing is not valid JSON", ErrAuthentication)
	}
	return json.RawMessage(m[1]), nil
}

func newFormRequest(ctx context.Context, target string, values url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func postForm(ctx context.Context, hc *http.Client, target string, values url.Values) ([]byte, error) {
	req, err := newFormRequest(ctx, target, values)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return body, nil
}

// followRedirects issues req and follows redirects manually. It returns every
// redirect response (bodies drained) in order, plus the final body.
func followRedirects(hc *http.Client, req *http.Request) ([]*http.Response, []byte, error) {
	var hops []*http.Response
	for {
		resp, err := hc.Do(req)
		if err != nil {
			return nil, nil, err
		}

		if !isRedirect(resp.StatusCode) {
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, nil, fmt.Errorf("reading response: %w", err)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, nil, fmt.Errorf("unexpected status %s", resp.Status)
			}
			return hops, body, nil
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		hops = append(hops, resp)
		if len(hops) > maxRedirects {
			return nil, nil, fmt.Errorf("stopped after %d redirects", maxRedirects)
		}

		next, err := resp.Location()
		if err != nil {
			return nil, nil, fmt.Errorf("redirect without location: %w", err)
		}
		req, err = redirectRequest(req, resp.StatusCode, next)
		if err != nil {
			return nil, nil, err
		}
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectRequest follows browser semantics: 307/308 replay the body, every
// other redirect becomes a GET.
func redirectRequest(prev *http.Request, status int, next *url.URL) (*http.Request, error) {
	ctx := prev.Context()
	if (status == http.StatusTemporaryRedirect || status == http.StatusPermanentRedirect) && prev.GetBody != nil {
		body, err := prev.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replaying body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, prev.Method, next.String(), body)
		if err != nil {
			return nil, fmt.Errorf("building redirect: %w", err)
		}
		req.Header = prev.Header.Clone()
		req.GetBody = prev.GetBody
		return req, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, next.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building redirect: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}
