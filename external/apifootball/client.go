package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/pradiptarana/fixturesync/internal/platform/logging"
	"github.com/pradiptarana/fixturesync/internal/platform/resilience"
	"github.com/pradiptarana/fixturesync/internal/usecase"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"

	endpointFixtures   = "fixtures"
	endpointStatistics = "fixtures/statistics"

	maxResponseBytes = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`(apikey|api_key|token)=[^&\s"']+`)
var errTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the API-Football v3 REST API. Every public method maps to
// exactly one upstream endpoint call and always reports a FetchOutcome so the
// caller can log it against the daily quota, success or not.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) ListFixtureIDs(ctx context.Context, leagueID int64, season int) ([]int64, usecase.FetchOutcome, error) {
	params := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
	}
	envelope, outcome, err := c.doJSON(ctx, endpointFixtures, params)
	if err != nil {
		return nil, outcome, err
	}

	items, err := decodeFixtureItems(envelope.Response)
	if err != nil {
		return nil, outcome, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.parsed.Fixture.ID > 0 {
			ids = append(ids, item.parsed.Fixture.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, outcome, nil
}

func (c *Client) ListFixturesByDate(ctx context.Context, date time.Time) ([]usecase.ExternalFixture, usecase.FetchOutcome, error) {
	params := map[string]string{"date": date.UTC().Format("2006-01-02")}
	envelope, outcome, err := c.doJSON(ctx, endpointFixtures, params)
	if err != nil {
		return nil, outcome, err
	}

	items, err := decodeFixtureItems(envelope.Response)
	if err != nil {
		return nil, outcome, err
	}

	fixtures := make([]usecase.ExternalFixture, 0, len(items))
	for _, item := range items {
		fixtures = append(fixtures, item.toExternal())
	}
	return fixtures, outcome, nil
}

func (c *Client) FetchFixture(ctx context.Context, externalID int64) (usecase.ExternalFixture, usecase.FetchOutcome, error) {
	params := map[string]string{"id": strconv.FormatInt(externalID, 10)}
	envelope, outcome, err := c.doJSON(ctx, endpointFixtures, params)
	if err != nil {
		return usecase.ExternalFixture{}, outcome, err
	}

	items, err := decodeFixtureItems(envelope.Response)
	if err != nil {
		return usecase.ExternalFixture{}, outcome, err
	}
	if len(items) == 0 {
		return usecase.ExternalFixture{}, outcome, crerr.Newf("fixture %d not found upstream", externalID)
	}
	return items[0].toExternal(), outcome, nil
}

func (c *Client) FetchStatistics(ctx context.Context, externalID int64) ([]byte, usecase.FetchOutcome, error) {
	params := map[string]string{"fixture": strconv.FormatInt(externalID, 10)}
	envelope, outcome, err := c.doJSON(ctx, endpointStatistics, params)
	if err != nil {
		return nil, outcome, err
	}
	if len(envelope.Response) == 0 || string(envelope.Response) == "[]" {
		return nil, outcome, crerr.Newf("no statistics for fixture %d", externalID)
	}
	return append([]byte(nil), envelope.Response...), outcome, nil
}

type apiEnvelope struct {
	Get      string          `json:"get"`
	Errors   any             `json:"errors"`
	Results  int             `json:"results"`
	Response json.RawMessage `json:"response"`
}

func (c *Client) doJSON(ctx context.Context, endpoint string, params map[string]string) (apiEnvelope, usecase.FetchOutcome, error) {
	outcome := usecase.FetchOutcome{Endpoint: endpoint, Params: params}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			outcome.ErrorMessage = "circuit breaker open"
			return apiEnvelope{}, outcome, fmt.Errorf("%w: fixture data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	fullURL := c.baseURL + "/" + endpoint
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	type flightResult struct {
		raw     []byte
		status  int
		elapsed int64
	}

	key := endpoint + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, status, elapsed, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return flightResult{raw: raw, status: status, elapsed: elapsed}, reqErr
	})
	if result, ok := out.(flightResult); ok {
		outcome.HTTPStatus = result.status
		outcome.ResponseTimeMs = result.elapsed
	}
	if err != nil {
		outcome.ErrorMessage = c.sanitize(err.Error())
		return apiEnvelope{}, outcome, err
	}

	result := out.(flightResult)
	var envelope apiEnvelope
	if err := sonic.Unmarshal(result.raw, &envelope); err != nil {
		outcome.ErrorMessage = "decode provider payload"
		return apiEnvelope{}, outcome, fmt.Errorf("decode provider payload: %w", err)
	}
	if msg := apiErrorMessage(envelope.Errors); msg != "" {
		// The provider reports request-level errors inside a 200 response.
		outcome.ErrorMessage = msg
		return apiEnvelope{}, outcome, crerr.Newf("provider error: %s", msg)
	}

	outcome.Success = true
	outcome.ResultCount = envelope.Results
	return envelope, outcome, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, int, int64, error) {
	var lastErr error
	lastStatus := 0
	started := time.Now()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, 0, time.Since(started).Milliseconds(), fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("x-apisports-key", c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, c.sanitize(err.Error()))
		} else {
			buf := bytebufferpool.Get()
			_, readErr := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes))
			raw := append([]byte(nil), buf.B...)
			bytebufferpool.Put(buf)
			_ = resp.Body.Close()
			lastStatus = resp.StatusCode

			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, resp.StatusCode, time.Since(started).Milliseconds(), nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				lastErr = fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				return nil, resp.StatusCode, time.Since(started).Milliseconds(), lastErr
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastStatus, time.Since(started).Milliseconds(), ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastStatus, time.Since(started).Milliseconds(), lastErr
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "$1=REDACTED")
}

type fixtureItem struct {
	raw    json.RawMessage
	parsed fixtureDetails
}

type fixtureDetails struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int64 `json:"id"`
		Season int   `json:"season"`
	} `json:"league"`
	Events  []json.RawMessage `json:"events"`
	Lineups []json.RawMessage `json:"lineups"`
}

func decodeFixtureItems(response json.RawMessage) ([]fixtureItem, error) {
	if len(response) == 0 {
		return nil, nil
	}

	var rawItems []json.RawMessage
	if err := sonic.Unmarshal(response, &rawItems); err != nil {
		return nil, fmt.Errorf("decode fixture list: %w", err)
	}

	items := make([]fixtureItem, 0, len(rawItems))
	for _, raw := range rawItems {
		var parsed fixtureDetails
		if err := sonic.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("decode fixture item: %w", err)
		}
		items = append(items, fixtureItem{raw: raw, parsed: parsed})
	}
	return items, nil
}

func (item fixtureItem) toExternal() usecase.ExternalFixture {
	fixture := usecase.ExternalFixture{
		ExternalID: item.parsed.Fixture.ID,
		LeagueID:   item.parsed.League.ID,
		Season:     item.parsed.League.Season,
		Status:     mapFixtureStatus(item.parsed.Fixture.Status.Short),
		HasLineups: len(item.parsed.Lineups) > 0,
		HasEvents:  len(item.parsed.Events) > 0,
		Payload:    append([]byte(nil), item.raw...),
	}
	if parsed, err := time.Parse(time.RFC3339, item.parsed.Fixture.Date); err == nil {
		fixture.Date = parsed.UTC()
	}
	return fixture
}

// mapFixtureStatus folds the provider's short status codes into the cache's
// canonical set.
func mapFixtureStatus(short string) string {
	switch strings.ToUpper(strings.TrimSpace(short)) {
	case "NS", "TBD":
		return "SCHEDULED"
	case "1H", "HT", "2H", "ET", "BT", "P", "INT", "LIVE", "SUSP":
		return "LIVE"
	case "FT", "AET", "PEN":
		return "FINISHED"
	case "PST":
		return "POSTPONED"
	case "CANC", "ABD", "AWD", "WO":
		return "CANCELLED"
	case "":
		return "SCHEDULED"
	default:
		return strings.ToUpper(strings.TrimSpace(short))
	}
}

func apiErrorMessage(raw any) string {
	switch typed := raw.(type) {
	case map[string]any:
		parts := make([]string, 0, len(typed))
		for key, value := range typed {
			parts = append(parts, fmt.Sprintf("%s: %v", key, value))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	case []any:
		parts := make([]string, 0, len(typed))
		for _, value := range typed {
			parts = append(parts, fmt.Sprintf("%v", value))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
