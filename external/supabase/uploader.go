package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
	"github.com/riskibarqy/nfl-data-pipeline/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	restPathPrefix  = "/rest/v1/"
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 4096
)

var resourceByDataType = map[string]string{
	usecase.DataTypePlayers:     "nfl_players",
	usecase.DataTypeStats:       "player_game_stats",
	usecase.DataTypeProjections: "player_projections",
}

var errBatchRejected = crerr.New("supabase rejected batch")

// ResolveResource maps a data type to its table name. Unknown data types are returned unchanged.
func ResolveResource(dataType string) string {
	if resource, ok := resourceByDataType[dataType]; ok {
		return resource
	}
	return dataType
}

type UploaderConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Key        string
	BatchSize  int
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Uploader pushes records to a PostgREST endpoint in fixed-size batches, one request at a time,
// stopping at the first rejected batch. Batches already written stay written.
type Uploader struct {
	httpClient *http.Client
	baseURL    string
	key        string
	batchSize  int
	logger     *logging.Logger
}

var _ usecase.RecordUploader = (*Uploader)(nil)

func NewUploader(cfg UploaderConfig) *Uploader {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	// Batches hold at most record.DefaultBatchSize entries.
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > record.DefaultBatchSize {
		batchSize = record.DefaultBatchSize
	}

	return &Uploader{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		key:        strings.TrimSpace(cfg.Key),
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Enabled reports whether both the endpoint and the access key are configured.
func (u *Uploader) Enabled() bool {
	return u != nil && u.baseURL != "" && u.key != ""
}

func (u *Uploader) Upload(ctx context.Context, dataType string, records []record.Record) usecase.UploadResult {
	result := usecase.UploadResult{
		DataType:          dataType,
		Resource:          ResolveResource(dataType),
		TotalRecords:      len(records),
		FirstFailureIndex: -1,
	}

	if !u.Enabled() {
		if u != nil {
			u.logger.WarnContext(ctx, "supabase credentials not found, skipping database update", "data_type", dataType)
		}
		result.Skipped = true
		return result
	}

	if len(records) == 0 {
		u.logger.InfoContext(ctx, "no records to upload", "data_type", dataType, "resource", result.Resource)
		result.Success = true
		return result
	}

	baseURL, err := validateHTTPBaseURL(u.baseURL)
	if err != nil {
		result.Err = crerr.Wrap(err, "invalid SUPABASE_URL")
		u.logger.ErrorContext(ctx, "error updating supabase", "data_type", dataType, "error", result.Err)
		return result
	}
	endpoint := baseURL + restPathPrefix + result.Resource

	batches := record.Batches(records, u.batchSize)
	result.TotalBatches = len(batches)
	u.logger.InfoContext(ctx, "updating supabase",
		"data_type", dataType,
		"resource", result.Resource,
		"records", len(records),
		"batches", len(batches),
	)

	for i, batch := range batches {
		result.AttemptedBatches++
		if err := u.writeBatch(ctx, endpoint, batch); err != nil {
			result.FirstFailureIndex = i
			result.Err = crerr.Wrapf(err, "batch %d/%d", i+1, len(batches))
			u.logger.ErrorContext(ctx, "error updating batch",
				"data_type", dataType,
				"resource", result.Resource,
				"batch", i+1,
				"batches", len(batches),
				"uploaded_records", result.UploadedRecords,
				"error", err,
			)
			return result
		}
		result.UploadedRecords += len(batch)
		u.logger.InfoContext(ctx, "updated batch", "resource", result.Resource, "batch", i+1, "batches", len(batches))
	}

	result.Success = true
	u.logger.InfoContext(ctx, "successfully updated records in supabase",
		"data_type", dataType,
		"resource", result.Resource,
		"records", result.UploadedRecords,
	)
	return result
}

func (u *Uploader) writeBatch(ctx context.Context, endpoint string, batch []record.Record) error {
	body, err := sonic.Marshal(batch)
	if err != nil {
		return crerr.Wrap(err, "marshal batch")
	}

	u.logger.DebugContext(ctx, "supabase insert request", "curl_preview", buildCurlPreview(endpoint, len(body)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create supabase request")
	}
	req.Header.Set("apikey", u.key)
	req.Header.Set("Authorization", "Bearer "+u.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return crerr.Wrapf(err, "post %s", endpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return crerr.Wrapf(errBatchRejected, "status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

// buildCurlPreview renders the request with credentials masked.
func buildCurlPreview(endpoint string, bodyLen int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(endpoint))
	appendHeader("apikey: ***")
	appendHeader("Authorization: Bearer ***")
	appendHeader("Content-Type: application/json")
	appendHeader("Prefer: return=minimal")
	appendPart("-d")
	appendPart(shellQuote(fmt.Sprintf("<%d bytes>", bodyLen)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}
