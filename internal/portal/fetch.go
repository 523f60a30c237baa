package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/itaulink/itaulink/internal/logger"
	"github.com/itaulink/itaulink/internal/model"
	"github.com/itaulink/itaulink/internal/statement"
	"github.com/itaulink/itaulink/internal/window"
)

// FetchAll fetches every month from today back to (excluding) epoch's month
// for acct. All months are launched together; in-flight requests are bounded
// by the Client's concurrency. A failing month yields an empty WindowResult
// carrying its error and never affects its siblings. Results are unordered.
func (c *Client) FetchAll(ctx context.Context, s Session, acct model.Account, epoch time.Time) []statement.WindowResult {
	log := logger.FromContext(ctx).With().Str("account", acct.ID).Logger()

	today := c.now()
	windows := window.Range(today, epoch)
	resultCh := make(chan statement.WindowResult, len(windows))

	var wg sync.WaitGroup
	for _, w := range windows {
		wg.Add(1)
		go func(w window.Window) {
			defer wg.Done()
			txns, err := c.fetchWindow(ctx, s, acct, w, today)
			if err != nil {
				log.Debug().Err(err).Str("window", w.String()).Msg("error fetching window, ignoring")
				resultCh <- statement.WindowResult{Window: w, Err: err}
				return
			}
			resultCh <- statement.WindowResult{Window: w, Transactions: txns}
		}(w)
	}
	wg.Wait()
	close(resultCh)

	results := make([]statement.WindowResult, 0, len(windows))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// FetchAccounts fetches and aggregates every account concurrently. Results
// are returned in the order of accts.
func (c *Client) FetchAccounts(ctx context.Context, s Session, accts []model.Account, epoch time.Time) []statement.Result {
	results := make([]statement.Result, len(accts))

	var wg sync.WaitGroup
	for i, acct := range accts {
		wg.Add(1)
		go func(i int, acct model.Account) {
			defer wg.Done()
			windows := c.FetchAll(ctx, s, acct, epoch)
			results[i] = statement.Result{
				Account: statement.Aggregate(acct, windows),
				Windows: windows,
			}
		}(i, acct)
	}
	wg.Wait()

	log := logger.FromContext(ctx)
	for _, r := range results {
		log.Info().
			Str("account", r.Account.ID).
			Str("currency", r.Account.Currency.ISO).
			Int("transactions", len(r.Account.Transactions)).
			Int("failed_windows", len(r.Failures())).
			Msg("statement downloaded")
	}
	return results
}

func (c *Client) fetchWindow(ctx context.Context, s Session, acct model.Account, w window.Window, today time.Time) ([]model.Transaction, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for slot: %w", err)
	}
	defer c.sem.Release(1)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	target := c.StatementURL(acct, w, today)
	log := logger.FromContext(ctx)
	log.Debug().
		Str("account", acct.ID).
		Str("window", w.String()).
		Msg("fetching window")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(StatementPayload(acct, w)))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("User-Agent", userAgent)
	s.apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", w, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", w, resp.Status)
	}

	txns, err := c.classifier.ParseStatement(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", w, err)
	}
	return txns, nil
}
