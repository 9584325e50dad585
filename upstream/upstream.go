// Package upstream implements the read-only upstream provider boundary:
// FetchAll for the full snapshot and a per-flight price/seat lookup for
// real-time variants. The thin requests.JSON request
// helper keeps request construction in one place; cenkalti/backoff
// covers retries so transient upstream failures do not bubble up as
// hard errors.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sakhatransit/routeengine/errs"
	"github.com/sakhatransit/routeengine/logging"
	"github.com/sakhatransit/routeengine/requests"
)

// RawStop, RawRoute, and RawFlight are the normalized shapes the provider
// hands back. Provider-native field names never escape this package.
type RawStop struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	HasCoords bool    `json:"hasCoords"`
	CityKey   string  `json:"cityKey"`
	Kind      string  `json:"kind"`
}

type RawRoute struct {
	ID       string   `json:"id"`
	StopIDs  []string `json:"stopIds"`
	Kind     string   `json:"kind"`
	Number   string   `json:"number"`
	BaseFare float64  `json:"baseFare"`
}

type RawFlight struct {
	ID             string    `json:"id"`
	FromStopID     string    `json:"fromStopId"`
	ToStopID       string    `json:"toStopId"`
	RouteID        string    `json:"routeId"`
	Departure      time.Time `json:"departure"`
	Arrival        time.Time `json:"arrival"`
	Price          float64   `json:"price"`
	AvailableSeats int       `json:"availableSeats"`
	Status         string    `json:"status"`
}

// Snapshot is the full upstream pull the ingestion worker hashes and diffs.
type Snapshot struct {
	Stops   []RawStop   `json:"stops"`
	Routes  []RawRoute  `json:"routes"`
	Flights []RawFlight `json:"flights"`
}

// Provider is the upstream capability surface consumed by the ingestion
// worker.
type Provider interface {
	FetchAll(ctx context.Context) (Snapshot, error)
	FlightQuote(ctx context.Context, flightID string) (price float64, availableSeats int, err error)
}

// Config tunes the ODATA_* options.
type Config struct {
	BaseURL       string
	Username      string
	Password      string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Client is the concrete HTTP-backed Provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New returns a Client wired for the given configuration.
func New(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchAll pulls the full upstream snapshot, retrying retryable failures
// with exponential backoff up to cfg.RetryAttempts.
func (c *Client) FetchAll(ctx context.Context) (Snapshot, error) {
	done := logging.Operation(logging.ForModule("upstream"), "fetch_all", nil)
	var snap Snapshot
	err := c.withRetry(ctx, func() error {
		var fetchErr error
		snap, fetchErr = c.doFetchAll(ctx)
		return fetchErr
	})
	done(err)
	return snap, err
}

func (c *Client) doFetchAll(ctx context.Context) (Snapshot, error) {
	req, err := requests.JSON(ctx, http.MethodGet, c.cfg.BaseURL+"/snapshot", nil)
	if err != nil {
		return Snapshot{}, err
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decoding snapshot: %v", errs.ErrUpstreamServer, err)
	}
	return snap, nil
}

// FlightQuote looks up the live price and seat count for one flight id, for
// real-time provider variants.
func (c *Client) FlightQuote(ctx context.Context, flightID string) (float64, int, error) {
	var price float64
	var seats int
	err := c.withRetry(ctx, func() error {
		req, err := requests.JSON(ctx, http.MethodGet, c.cfg.BaseURL+"/flights/"+flightID+"/quote", nil)
		if err != nil {
			return err
		}
		if c.cfg.Username != "" {
			req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
		}
		defer resp.Body.Close()
		if err := statusToError(resp.StatusCode); err != nil {
			return err
		}
		var body struct {
			Price          float64 `json:"price"`
			AvailableSeats int     `json:"availableSeats"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("%w: decoding quote: %v", errs.ErrUpstreamServer, err)
		}
		price, seats = body.Price, body.AvailableSeats
		return nil
	})
	return price, seats, err
}

// withRetry wraps op with exponential backoff, retrying only when the
// failure is classified as retryable.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	attempts := c.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := c.cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = delay
	bounded := backoff.WithMaxRetries(bo, uint64(attempts))
	withCtx := backoff.WithContext(bounded, ctx)

	var lastErr error
	err := backoff.Retry(func() error {
		err := op()
		lastErr = err
		if err == nil {
			return nil
		}
		if isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, withCtx)

	if err != nil && lastErr != nil && isRetryable(lastErr) {
		return fmt.Errorf("%w: %v", errs.ErrRetryExhausted, lastErr)
	}
	return err
}

func isRetryable(err error) bool {
	return errors.Is(err, errs.ErrUpstreamUnavailable) ||
		errors.Is(err, errs.ErrUpstreamTimeout) ||
		errors.Is(err, errs.ErrUpstreamServer)
}

func statusToError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", errs.ErrUpstreamAuth, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", errs.ErrUpstreamNotFound, code)
	case errs.RetryableStatus(code):
		return fmt.Errorf("%w: status %d", errs.ErrUpstreamServer, code)
	default:
		return fmt.Errorf("%w: status %d", errs.ErrUpstreamServer, code)
	}
}
