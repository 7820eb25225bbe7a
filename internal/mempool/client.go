package mempool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultEndpoint = "https://mempool.space/api/mempool"

// ErrMalformedListing indicates the listing body was not a txid to metadata object.
var ErrMalformedListing = errors.New("malformed mempool listing")

// StatusError reports a non-2xx listing response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mempool api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("mempool api error (%d): %s", e.StatusCode, e.Body)
}

// Options parameterise the listing client.
type Options struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

// Client polls a mempool listing endpoint.
type Client struct {
	opts     Options
	logger   zerolog.Logger
	client   *http.Client
	endpoint string
}

// NewClient constructs a listing client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &Client{
		opts:     opts,
		logger:   logger.With().Str("component", "mempool_client").Logger(),
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

// FetchCandidates downloads the listing and selects high-fee transactions.
func (c *Client) FetchCandidates(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create mempool request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "whalewatch/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch mempool listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	entries, err := DecodeListing(resp.Body, ScanLimit)
	if err != nil {
		return Result{}, err
	}

	res := SelectCandidates(entries)
	c.logger.Debug().
		Int("scanned", res.Scanned).
		Int("matched", res.Matched).
		Msg("mempool listing scanned")
	return res, nil
}

type listingValue struct {
	Fee  json.RawMessage `json:"fee"`
	Size json.RawMessage `json:"size"`
}

type rawEntry struct {
	id    string
	value json.RawMessage
}

// DecodeListing reads a JSON object keyed by txid and returns its first limit
// entries in the order the body lists them. The whole body must be a single
// well-formed object. A repeated txid keeps its first position and its last value.
func DecodeListing(r io.Reader, limit int) ([]Entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedListing, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrMalformedListing, tok)
	}

	kept := make([]rawEntry, 0, limit)
	index := make(map[string]int, limit)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedListing, err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrMalformedListing, keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrMalformedListing, id, err)
		}

		if i, seen := index[id]; seen {
			kept[i].value = value
			continue
		}
		if len(kept) < limit {
			index[id] = len(kept)
			kept = append(kept, rawEntry{id: id, value: value})
		}
	}

	tok, err = dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedListing, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '}' {
		return nil, fmt.Errorf("%w: unterminated object", ErrMalformedListing)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedListing)
	}

	entries := make([]Entry, 0, len(kept))
	for _, raw := range kept {
		entry, err := parseEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrMalformedListing, raw.id, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseEntry applies the listing rules: an absent fee is zero, a null fee is
// an error, and size is only required once the fee is above FeeThreshold.
func parseEntry(raw rawEntry) (Entry, error) {
	if isNull(raw.value) {
		return Entry{}, errors.New("metadata is null")
	}

	var value listingValue
	if err := json.Unmarshal(raw.value, &value); err != nil {
		return Entry{}, err
	}

	entry := Entry{ID: raw.id}
	if len(value.Fee) > 0 {
		if isNull(value.Fee) {
			return Entry{}, errors.New("fee is null")
		}
		if err := json.Unmarshal(value.Fee, &entry.Fee); err != nil {
			return Entry{}, fmt.Errorf("fee: %w", err)
		}
	}
	if entry.Fee <= FeeThreshold {
		return entry, nil
	}

	if len(value.Size) == 0 || isNull(value.Size) {
		return Entry{}, errors.New("size missing")
	}
	if err := json.Unmarshal(value.Size, &entry.Size); err != nil {
		return Entry{}, fmt.Errorf("size: %w", err)
	}
	return entry, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

var _ CandidateFetcher = (*Client)(nil)
