package employeeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultTimeout = 30 * time.Second

// ErrUnexpectedStatus is returned for any non-200, non-404 answer.
var ErrUnexpectedStatus = errors.New("employee service returned unexpected status")

// Client calls the internal, unauthenticated endpoints of the employee-management
// service. A 404 is reported as (nil/false, nil); transport failures, 5xx answers
// and an open breaker are returned as errors for the caller to degrade.
type Client struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker
}

// NewClient creates a client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	settings := gobreaker.Settings{
		Name:        "Employee-Service",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is at least 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

type response struct {
	status int
	body   []byte
}

// VerifyEmployeeExists reports whether the upstream service knows the employee.
func (c *Client) VerifyEmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	resp, err := c.get(ctx, "/api/v1/employees/internal/"+strconv.FormatInt(employeeID, 10), nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", employeeID).Msg("Error verifying employee")
		return false, err
	}

	switch resp.status {
	case http.StatusOK:
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Bool("exists", true).Msg("Employee existence check")
		return true, nil
	case http.StatusNotFound:
		log.Ctx(ctx).Info().Int64("employee_id", employeeID).Bool("exists", false).Msg("Employee existence check")
		return false, nil
	default:
		log.Ctx(ctx).Warn().Int64("employee_id", employeeID).Int("status", resp.status).Msg("Employee existence check failed")
		return false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}
}

// GetEmployee fetches one employee by id.
func (c *Client) GetEmployee(ctx context.Context, employeeID int64) (*RemoteEmployee, error) {
	resp, err := c.get(ctx, "/api/v1/employees/internal/"+strconv.FormatInt(employeeID, 10), nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", employeeID).Msg("Error retrieving employee")
		return nil, err
	}
	emp, err := decodeEmployee(resp)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("employee_id", employeeID).Int("status", resp.status).Msg("Employee not retrieved")
		return nil, err
	}
	if emp == nil {
		log.Ctx(ctx).Warn().Int64("employee_id", employeeID).Msg("Employee not found")
		return nil, nil
	}
	log.Ctx(ctx).Info().Int64("employee_id", employeeID).Msg("Retrieved employee details")
	return emp, nil
}

// GetEmployeeByEmail fetches one employee by email.
func (c *Client) GetEmployeeByEmail(ctx context.Context, email string) (*RemoteEmployee, error) {
	resp, err := c.get(ctx, "/api/v1/employees/internal/by-email/"+url.PathEscape(email), nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("email", email).Msg("Error retrieving employee by email")
		return nil, err
	}
	emp, err := decodeEmployee(resp)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("email", email).Int("status", resp.status).Msg("Failed to retrieve employee by email")
		return nil, err
	}
	if emp == nil {
		log.Ctx(ctx).Warn().Str("email", email).Msg("No employee found with email")
		return nil, nil
	}
	log.Ctx(ctx).Info().Str("email", email).Int64("employee_id", emp.ID).Msg("Found employee by email")
	return emp, nil
}

// ListEmployees fetches one page of employees.
func (c *Client) ListEmployees(ctx context.Context, offset, limit int) ([]RemoteEmployee, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, "/api/v1/employees/internal/list", q)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Error retrieving employees list")
		return nil, err
	}
	if resp.status != http.StatusOK {
		log.Ctx(ctx).Warn().Int("status", resp.status).Msg("Failed to retrieve employees list")
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}

	var employees []RemoteEmployee
	if err := json.Unmarshal(resp.body, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees list: %w", err)
	}
	log.Ctx(ctx).Info().Int("count", len(employees)).Int("offset", offset).Msg("Retrieved employees")
	return employees, nil
}

func decodeEmployee(resp response) (*RemoteEmployee, error) {
	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}

	var emp RemoteEmployee
	if err := json.Unmarshal(resp.body, &emp); err != nil {
		return nil, fmt.Errorf("failed to decode employee: %w", err)
	}
	return &emp, nil
}

// get runs one GET through the breaker. Only transport errors and 5xx answers count as failures.
func (c *Client) get(ctx context.Context, path string, query url.Values) (response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create employee service request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call employee service: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read employee service response: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Ctx(ctx).Warn().Str("breaker", c.cb.Name()).Msg("Circuit breaker is open; skipping employee service call")
		}
		return response{}, err
	}
	return out.(response), nil
}
