package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"ProStatistics/internal/metrics"
	"ProStatistics/internal/model"
)

const timeDimension = "time"

var (
	// ErrNoTimeDimension is returned when a dataset carries no time index.
	ErrNoTimeDimension = errors.New("dataset has no time dimension")
	// ErrUnpinnedDimension is returned when a non-time dimension has more than one category.
	ErrUnpinnedDimension = errors.New("dataset has an unpinned dimension")
	// ErrNoValues is returned when a dataset has no value member.
	ErrNoValues = errors.New("dataset has no values")
)

// EurostatFetcher implements Fetcher against the Eurostat dissemination API,
// which answers with JSON-stat 2.0 documents.
type EurostatFetcher struct {
	Client   *http.Client
	Attempts uint
	Delay    time.Duration
	Log      *zap.SugaredLogger
}

// NewEurostatFetcher creates a fetcher with optional proxy support.
// attempts <= 1 disables retries.
func NewEurostatFetcher(proxyURL string, timeout time.Duration, attempts uint, log *zap.SugaredLogger) *EurostatFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if attempts == 0 {
		attempts = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EurostatFetcher{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Attempts: attempts,
		Delay:    time.Second,
		Log:      log,
	}
}

func (f *EurostatFetcher) Name() string { return "eurostat" }

// jsonStat is the subset of a JSON-stat 2.0 dataset the dashboard reads.
type jsonStat struct {
	ID        []string                     `json:"id"`
	Size      []int                        `json:"size"`
	Value     json.RawMessage              `json:"value"`
	Dimension map[string]jsonStatDimension `json:"dimension"`
}

type jsonStatDimension struct {
	Category struct {
		Index json.RawMessage `json:"index"`
	} `json:"category"`
}

// FetchSeries downloads and decodes one dataset.
func (f *EurostatFetcher) FetchSeries(ctx context.Context, name, endpoint string) (*model.Series, error) {
	start := time.Now()
	var series *model.Series
	err := retry.Do(
		func() error {
			body, err := f.get(ctx, endpoint)
			if err != nil {
				return err
			}
			f.Log.Infow("raw response", "series", name, "bytes", len(body), "body", string(body))
			s, err := ParseJSONStat(name, body)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("eurostat decode %s: %w", name, err))
			}
			series = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.Attempts),
		retry.Delay(f.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.Log.Warnw("fetch failed, retrying", "series", name, "attempt", n+1, "error", err)
		}),
	)
	metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	metrics.FetchTotal.WithLabelValues(name, "ok").Inc()
	return series, nil
}

func (f *EurostatFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eurostat fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("eurostat read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eurostat: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// ParseJSONStat builds a Series from a JSON-stat 2.0 dataset whose only
// free dimension is time.
func ParseJSONStat(name string, data []byte) (*model.Series, error) {
	var doc jsonStat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	dim, ok := doc.Dimension[timeDimension]
	if !ok || isNull(dim.Category.Index) {
		return nil, ErrNoTimeDimension
	}
	if isNull(doc.Value) {
		return nil, ErrNoValues
	}

	stride, err := timeStride(doc.ID, doc.Size)
	if err != nil {
		return nil, err
	}

	s := model.NewSeries(name)
	if s.Years, err = parseIndex(dim.Category.Index); err != nil {
		return nil, fmt.Errorf("time index: %w", err)
	}
	flat, err := parseValues(doc.Value)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	for k, v := range flat {
		if k%stride != 0 {
			continue
		}
		s.Values[k/stride] = v
	}
	return s, nil
}

// isNull reports whether a member is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// timeStride returns the flat-index step between consecutive time
// positions. Every other dimension must be pinned to a single category.
func timeStride(ids []string, sizes []int) (int, error) {
	if len(ids) == 0 || len(ids) != len(sizes) {
		return 1, nil
	}
	timeAt := -1
	for i, id := range ids {
		if id == timeDimension {
			timeAt = i
			continue
		}
		if sizes[i] > 1 {
			return 0, fmt.Errorf("%w: %s has %d categories", ErrUnpinnedDimension, id, sizes[i])
		}
	}
	if timeAt < 0 {
		return 0, ErrNoTimeDimension
	}
	stride := 1
	for _, n := range sizes[timeAt+1:] {
		stride *= n
	}
	if stride < 1 {
		stride = 1
	}
	return stride, nil
}

// parseIndex accepts both the object form {"1995":0,...} and the array form
// ["1995",...] of a JSON-stat category index.
func parseIndex(raw json.RawMessage) (map[int]string, error) {
	years := make(map[int]string)

	var byLabel map[string]int
	if err := json.Unmarshal(raw, &byLabel); err == nil {
		for label, pos := range byLabel {
			years[pos] = label
		}
		return years, nil
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, err
	}
	for pos, label := range labels {
		years[pos] = label
	}
	return years, nil
}

// parseValues accepts the sparse object form {"0":1.2,...} and the dense
// array form [1.2,null,...]. Nulls are dropped.
func parseValues(raw json.RawMessage) (map[int]float64, error) {
	values := make(map[int]float64)

	var sparse map[string]*float64
	if err := json.Unmarshal(raw, &sparse); err == nil {
		for key, v := range sparse {
			if v == nil {
				continue
			}
			pos, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("position %q: %w", key, err)
			}
			values[pos] = *v
		}
		return values, nil
	}

	var dense []*float64
	if err := json.Unmarshal(raw, &dense); err != nil {
		return nil, err
	}
	for pos, v := range dense {
		if v != nil {
			values[pos] = *v
		}
	}
	return values, nil
}
