package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"invbot/pkg/logx"
)

const (
	defaultBaseURL   = "https://steamcommunity.com"
	defaultAppID     = 730
	defaultContextID = 2
	defaultPageSize  = 2000
	defaultUserAgent = "invbot/1.0 (inventory tracker)"
)

type FetcherConfig struct {
	BaseURL   string
	AppID     int
	ContextID int
	UserAgent string

	// RetryMax bounds total attempts per Fetch call.
	RetryMax int
	// BackoffBase is the unit for the 429 schedule: 2^attempt * base.
	BackoffBase time.Duration
	// RetryDelay is the fixed wait before retrying a transport failure.
	RetryDelay time.Duration

	// RequestTimeout applies per HTTP request, not per Fetch call
	// (a Fetch call may span several requests plus backoff waits).
	RequestTimeout time.Duration
	// RequestEvery paces outbound requests across all accounts.
	RequestEvery time.Duration
}

func (c *FetcherConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.AppID <= 0 {
		c.AppID = defaultAppID
	}
	if c.ContextID <= 0 {
		c.ContextID = defaultContextID
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 60 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.RequestEvery <= 0 {
		c.RequestEvery = time.Second
	}
}

// Fetcher retrieves one account's current inventory and normalizes it into
// a Snapshot. It owns the retry/backoff policy for a single fetch; callers
// see either a Snapshot or a *FetchError, never a partial result.
type Fetcher struct {
	cfg     FetcherConfig
	log     logx.Logger
	http    *http.Client
	limiter *rate.Limiter
	retry   retrier
}

func NewFetcher(cfg FetcherConfig, log logx.Logger) *Fetcher {
	cfg.applyDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	log.Debug("fetcher configured", logx.String("cfg", cfg.String()))
	return &Fetcher{
		cfg:     cfg,
		log:     log,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestEvery), 1),
		retry:   newRetrier(cfg.RetryMax),
	}
}

// inventoryPayload mirrors the community inventory endpoint body. Assets
// appear once per owned copy and reference a class/instance pair;
// descriptions carry the resolved metadata per unique pair.
type inventoryPayload struct {
	Assets []struct {
		ClassID    string `json:"classid"`
		InstanceID string `json:"instanceid"`
	} `json:"assets"`
	Descriptions []struct {
		ClassID        string `json:"classid"`
		InstanceID     string `json:"instanceid"`
		MarketHashName string `json:"market_hash_name"`
		Name           string `json:"name"`
	} `json:"descriptions"`
}

// Fetch retrieves the current snapshot for account.
//
// Retry policy, per attempt:
//   - 429: exponential backoff (2^attempt * BackoffBase), then retry.
//   - other non-2xx: fail immediately.
//   - transport failure: fixed RetryDelay, then retry.
//   - 2xx with a body that won't decode: fail immediately.
//
// A 2xx body without asset/description lists is a valid empty inventory,
// not an error.
func (f *Fetcher) Fetch(ctx context.Context, account string) (Snapshot, error) {
	var (
		snap       Snapshot
		lastStatus int
		attempts   int
	)
	err := f.retry.run(ctx, func(n int) (time.Duration, error) {
		attempts = n + 1
		s, status, err := f.fetchOnce(ctx, account)
		if err == nil {
			snap = s
			return 0, nil
		}
		lastStatus = status
		switch {
		case status == http.StatusTooManyRequests:
			delay := f.cfg.BackoffBase << n
			f.log.Warn("inventory rate limited",
				logx.String("account", account),
				logx.Int("attempt", attempts),
				logx.Duration("backoff", delay))
			return delay, err
		case status != 0:
			return failFast, err
		default:
			f.log.Warn("inventory request failed",
				logx.String("account", account),
				logx.Int("attempt", attempts),
				logx.Err(err))
			return f.cfg.RetryDelay, err
		}
	})
	if err != nil {
		return nil, &FetchError{Account: account, Status: lastStatus, Attempts: attempts, Err: err}
	}
	return snap, nil
}

// fetchOnce issues a single request. The returned status is 0 for
// transport-level failures (no response at all).
func (f *Fetcher) fetchOnce(ctx context.Context, account string) (Snapshot, int, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	u := fmt.Sprintf("%s/inventory/%s/%d/%d?l=english&count=%d",
		f.cfg.BaseURL, url.PathEscape(account), f.cfg.AppID, f.cfg.ContextID, defaultPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload inventoryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode inventory body: %w", err)
	}
	return normalize(payload), 0, nil
}

// normalize flattens raw asset records into a Snapshot. Each asset counts
// once; assets whose class/instance pair has no description entry with a
// usable name are dropped.
func normalize(p inventoryPayload) Snapshot {
	names := make(map[string]string, len(p.Descriptions))
	for _, d := range p.Descriptions {
		name := d.MarketHashName
		if name == "" {
			name = d.Name
		}
		if name == "" {
			continue
		}
		names[d.ClassID+"_"+d.InstanceID] = name
	}

	snap := make(Snapshot)
	for _, a := range p.Assets {
		name, ok := names[a.ClassID+"_"+a.InstanceID]
		if !ok {
			continue
		}
		snap[name]++
	}
	return snap
}

// String implements a compact form for logs.
func (c FetcherConfig) String() string {
	return "app=" + strconv.Itoa(c.AppID) + " ctx=" + strconv.Itoa(c.ContextID) +
		" retry_max=" + strconv.Itoa(c.RetryMax) + " backoff_base=" + c.BackoffBase.String()
}
