package espn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/feed"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/game"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL     = "https://site.api.espn.com/apis/site/v2/sports"
	defaultTimeout     = 10 * time.Second
	maxResponseBytes   = 6 << 20
	maxLoggedBodyBytes = 240
)

var errESPNTransient = crerr.New("espn transient failure")

// Doer is the subset of *fasthttp.Client the adapter needs.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

type ClientConfig struct {
	HTTPClient     Doer
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public ESPN site API. It is stateless apart from per-endpoint circuit
// breakers and in-flight request collapsing.
type Client struct {
	httpClient Doer
	baseURL    string
	timeout    time.Duration
	userAgent  string
	logger     *logging.Logger
	breakers   *resilience.BreakerSet
	flight     singleflight.Group
}

var _ usecase.FeedProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                     cfg.UserAgent,
			NoDefaultUserAgentHeader: cfg.UserAgent == "",
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      maxResponseBytes,
			MaxIdleConnDuration:      90 * time.Second,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		logger:     logger.Named("espn"),
		breakers:   resilience.NewBreakerSet(cfg.CircuitBreaker),
	}
}

func (c *Client) FetchScoreboard(ctx context.Context, spec league.Spec, query usecase.ScoreboardQuery) ([]game.Game, error) {
	params := map[string]string{}
	if query.Limit > 0 {
		params["limit"] = strconv.Itoa(query.Limit)
	}
	if query.Dates != "" {
		params["dates"] = query.Dates
	}
	if query.Groups != "" {
		params["groups"] = query.Groups
	}

	var payload scoreboardEnvelope
	if err := c.getJSON(ctx, spec, league.FeedScoreboard, params, &payload); err != nil {
		return nil, err
	}
	return mapEvents(spec, payload.Events), nil
}

func (c *Client) FetchNews(ctx context.Context, spec league.Spec) ([]feed.Article, error) {
	var payload newsEnvelope
	if err := c.getJSON(ctx, spec, league.FeedNews, nil, &payload); err != nil {
		return nil, err
	}
	return mapArticles(spec, payload.Articles), nil
}

func (c *Client) FetchTransactions(ctx context.Context, spec league.Spec) ([]feed.Transaction, error) {
	var payload transactionsEnvelope
	if err := c.getJSON(ctx, spec, league.FeedTransactions, nil, &payload); err != nil {
		return nil, err
	}
	return mapTransactions(spec, payload.Transactions), nil
}

func (c *Client) FetchInjuries(ctx context.Context, spec league.Spec) ([]feed.InjuryReport, error) {
	var payload injuriesEnvelope
	if err := c.getJSON(ctx, spec, league.FeedInjuries, nil, &payload); err != nil {
		return nil, err
	}
	return mapInjuries(spec, payload.Injuries), nil
}

// BreakerStates exposes the state of every endpoint breaker for status reporting.
func (c *Client) BreakerStates() map[string]resilience.CircuitState {
	return c.breakers.States()
}

func (c *Client) getJSON(ctx context.Context, spec league.Spec, name league.Feed, query map[string]string, target any) error {
	endpoint := string(name) + ":" + spec.Key()

	var breaker *resilience.CircuitBreaker
	if c.breakers.Enabled() {
		breaker = c.breakers.Get(endpoint)
		if err := breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "endpoint", endpoint, "state", breaker.State())
			return fmt.Errorf("%w: espn %s: %w", usecase.ErrDependencyUnavailable, endpoint, err)
		}
	}

	fullURL := c.buildURL(spec, name, query)
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if breaker != nil {
			if reqErr != nil && crerr.Is(reqErr, errESPNTransient) {
				breaker.RecordFailure()
			} else {
				breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "decode espn %s payload", endpoint)
	}
	return nil
}

func (c *Client) buildURL(spec league.Spec, name league.Feed, query map[string]string) string {
	fullURL := c.baseURL + "/" + url.PathEscape(spec.SportKey) + "/" + url.PathEscape(spec.LeagueKey) + "/" + string(name)
	if len(query) == 0 {
		return fullURL
	}
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	return fullURL + "?" + values.Encode()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		err = fmt.Errorf("%w: send request: %v", errESPNTransient, err)
		c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", err)
		return nil, err
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		var err error
		if isRetryableStatus(status) {
			err = fmt.Errorf("%w: espn status=%d body=%s", errESPNTransient, status, abbreviateBody(resp.Body()))
		} else {
			err = fmt.Errorf("espn status=%d body=%s", status, abbreviateBody(resp.Body()))
		}
		c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "status", status, "error", err)
		return nil, err
	}

	return append([]byte(nil), resp.Body()...), nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= maxLoggedBodyBytes {
		return text
	}
	return text[:maxLoggedBodyBytes] + "..."
}
