package nflverse

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/cache"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/resilience"
	"github.com/riskibarqy/nfl-data-pipeline/internal/usecase"
)

const (
	defaultBaseURL   = "https://github.com/nflverse/nflverse-data/releases/download"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "nfl-data-pipeline/1.0"
	maxBodyBytes     = 512 << 20
	maxCachedBytes   = 64 << 20
)

var (
	errNFLVerseTransient = crerr.New("nflverse transient failure")
	errBodyTooLarge      = crerr.New("nflverse response body too large")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Cache keeps downloaded CSV bodies by URL so repeated steps in one run share a download.
	// Bodies larger than 64 MiB are never cached. Nil disables caching.
	Cache *cache.Store[[]byte]
}

// Client downloads nflverse release CSVs and converts each row into a record.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	bodies     *cache.Store[[]byte]
	maxBody    int64
}

var _ usecase.NFLDataProvider = (*Client)(nil)

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
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		bodies:     cfg.Cache,
		maxBody:    maxBodyBytes,
	}
}

func (c *Client) FetchRosters(ctx context.Context, years []int) ([]record.Record, error) {
	return c.fetchYears(ctx, years, nil, func(year int) string {
		return fmt.Sprintf("/rosters/roster_%d.csv", year)
	})
}

// FetchWeekly returns weekly player stat lines. An empty column list keeps every column.
func (c *Client) FetchWeekly(ctx context.Context, years []int, columns []string) ([]record.Record, error) {
	return c.fetchYears(ctx, years, columns, func(year int) string {
		return fmt.Sprintf("/player_stats/player_stats_%d.csv", year)
	})
}

func (c *Client) FetchSeasonal(ctx context.Context, years []int) ([]record.Record, error) {
	return c.fetchYears(ctx, years, nil, func(year int) string {
		return fmt.Sprintf("/player_stats/player_stats_season_%d.csv", year)
	})
}

func (c *Client) FetchPlayByPlay(ctx context.Context, years []int, columns []string) ([]record.Record, error) {
	return c.fetchYears(ctx, years, columns, func(year int) string {
		return fmt.Sprintf("/pbp/play_by_play_%d.csv", year)
	})
}

func (c *Client) FetchInjuries(ctx context.Context, season int) ([]record.Record, error) {
	return c.fetchYears(ctx, []int{season}, nil, func(year int) string {
		return fmt.Sprintf("/injuries/injuries_%d.csv", year)
	})
}

func (c *Client) FetchTeamDescriptions(ctx context.Context) ([]record.Record, error) {
	return c.fetchCSV(ctx, "/teams/teams_colors_logos.csv", nil)
}

// FetchSchedules downloads the all-seasons game file and keeps rows whose season is in years.
func (c *Client) FetchSchedules(ctx context.Context, years []int) ([]record.Record, error) {
	if len(years) == 0 {
		return nil, crerr.Wrap(usecase.ErrInvalidInput, "at least one season is required")
	}

	rows, err := c.fetchCSV(ctx, "/schedules/games.csv", nil)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int64]struct{}, len(years))
	for _, year := range years {
		wanted[int64(year)] = struct{}{}
	}

	out := make([]record.Record, 0, len(rows)/8)
	for _, row := range rows {
		season, _ := row.Get("season")
		value, ok := season.(int64)
		if !ok {
			continue
		}
		if _, ok := wanted[value]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (c *Client) fetchYears(ctx context.Context, years []int, columns []string, pathFor func(int) string) ([]record.Record, error) {
	if len(years) == 0 {
		return nil, crerr.Wrap(usecase.ErrInvalidInput, "at least one season is required")
	}

	var out []record.Record
	for _, year := range years {
		rows, err := c.fetchCSV(ctx, pathFor(year), columns)
		if err != nil {
			return nil, crerr.Wrapf(err, "season %d", year)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (c *Client) fetchCSV(ctx context.Context, path string, columns []string) ([]record.Record, error) {
	fullURL := c.baseURL + path

	body, cached := c.bodies.Get(ctx, fullURL)
	if !cached {
		err := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.download(ctx, fullURL)
			return reqErr
		}, isNFLVerseCircuitFailure)
		if err != nil {
			if stderrors.Is(err, resilience.ErrCircuitOpen) {
				c.logger.WarnContext(ctx, "nflverse circuit breaker rejected request", "url", fullURL, "state", c.breaker.State())
				return nil, fmt.Errorf("%w: nflverse is temporarily unavailable", usecase.ErrDependencyUnavailable)
			}
			c.logger.WarnContext(ctx, "nflverse request failed", "url", fullURL, "error", err)
			return nil, err
		}
		if len(body) <= maxCachedBytes {
			c.bodies.Set(ctx, fullURL, body)
		}
	}

	rows, err := parseCSV(bytes.NewReader(body), columns)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s", path)
	}

	c.logger.DebugContext(ctx, "nflverse download complete", "url", fullURL, "rows", len(rows), "cached", cached)
	return rows, nil
}

func (c *Client) download(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "text/csv")
	req.Header.Set("user-agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: send request: %v", errNFLVerseTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: provider status=%d body=%s", errNFLVerseTransient, resp.StatusCode, abbreviateBody(raw))
		}
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errNFLVerseTransient, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, crerr.Wrapf(errBodyTooLarge, "limit %d bytes", c.maxBody)
	}
	return body, nil
}

func isNFLVerseCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errNFLVerseTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 256 {
		return body[:256] + "..."
	}
	return body
}

// parseCSV reads a header row followed by data rows. When columns is non-empty only those
// columns are kept, in the requested order.
func parseCSV(r io.Reader, columns []string) ([]record.Record, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, crerr.Wrap(err, "read csv header")
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	indexes := selectColumns(header, columns)

	out := make([]record.Record, 0, 1024)
	for {
		fields, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, crerr.Wrapf(err, "read csv row %d", len(out)+1)
		}

		row := record.New()
		for _, idx := range indexes {
			var value any
			if idx < len(fields) {
				value = parseValue(fields[idx])
			}
			row.Set(header[idx], value)
		}
		out = append(out, row)
	}
	return out, nil
}

func selectColumns(header []string, columns []string) []int {
	if len(columns) == 0 {
		out := make([]int, len(header))
		for i := range header {
			out[i] = i
		}
		return out
	}

	position := make(map[string]int, len(header))
	for i, name := range header {
		if _, exists := position[name]; !exists {
			position[name] = i
		}
	}
	out := make([]int, 0, len(columns))
	for _, name := range columns {
		if idx, ok := position[name]; ok {
			out = append(out, idx)
		}
	}
	return out
}
