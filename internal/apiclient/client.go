// Package apiclient talks to the budgetwise REST API and serves as the engine's remote backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
	apiPrefix      = "/api/v1"
)

// ErrUnauthorized indicates the bearer token is missing, expired or invalid.
var ErrUnauthorized = errors.New("apiclient: unauthorized (token expired or invalid)")

// TransportError wraps failures to reach the API at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apiclient: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client calls the bills API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) List(ctx context.Context) ([]*bill.Bill, error) {
	var resp []BillResponse
	if err := c.do(ctx, http.MethodGet, "/bills", nil, &resp); err != nil {
		return nil, err
	}

	bills := make([]*bill.Bill, 0, len(resp))

	for _, r := range resp {
		b, err := r.toBill()
		if err != nil {
			return nil, fmt.Errorf("apiclient: parsing bills: %w", err)
		}

		bills = append(bills, b)
	}

	return bills, nil
}

func (c *Client) Create(ctx context.Context, d bill.Draft) (*bill.Bill, error) {
	req := createRequest{
		Name:      d.Name,
		Amount:    d.Amount,
		Category:  d.Category,
		DueDate:   dateString(d.DueDate),
		Recurring: string(d.Recurrence),
	}

	var resp BillResponse
	if err := c.do(ctx, http.MethodPost, "/bills", req, &resp); err != nil {
		return nil, err
	}

	return resp.toBill()
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, p bill.Patch) (*bill.Bill, error) {
	req := patchRequest{
		Name:     p.Name,
		Amount:   p.Amount,
		Category: p.Category,
	}

	if p.DueDate != nil {
		req.DueDate = new(dateString(*p.DueDate))
	}

	if p.Recurrence != nil {
		req.Recurring = new(string(*p.Recurrence))
	}

	var resp BillResponse
	if err := c.do(ctx, http.MethodPatch, "/bills/"+id.String(), req, &resp); err != nil {
		return nil, err
	}

	return resp.toBill()
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/bills/"+id.String(), nil, nil)
}

func (c *Client) Pay(ctx context.Context, id uuid.UUID, paidDate *time.Time) (*bill.Payment, error) {
	var req payRequest
	if paidDate != nil {
		req.PaidDate = new(dateString(*paidDate))
	}

	var resp PayResponse
	if err := c.do(ctx, http.MethodPost, "/bills/"+id.String()+"/pay", req, &resp); err != nil {
		return nil, err
	}

	return resp.Payment.toPayment()
}

// ListPayments returns the full payment log oldest first; the API serves it newest first.
func (c *Client) ListPayments(ctx context.Context) ([]*bill.Payment, error) {
	resp, err := c.PaymentHistory(ctx, 0)
	if err != nil {
		return nil, err
	}

	payments := make([]*bill.Payment, 0, len(resp.Payments))

	for _, r := range resp.Payments {
		p, err := r.toPayment()
		if err != nil {
			return nil, fmt.Errorf("apiclient: parsing payments: %w", err)
		}

		payments = append(payments, p)
	}

	slices.Reverse(payments)

	return payments, nil
}

// PaymentHistory returns the raw payments page with its summary. limit <= 0 fetches everything.
func (c *Client) PaymentHistory(ctx context.Context, limit int) (*PaymentsResponse, error) {
	path := "/payments"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var resp PaymentsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Refresh asks the server to run a status sweep. The server uses its own clock.
func (c *Client) Refresh(ctx context.Context, _ time.Time) error {
	return c.do(ctx, http.MethodPost, "/bills/refresh", nil, nil)
}

// do sends an authenticated JSON request and decodes the response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: encoding request: %w", err)
		}

		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(resp.StatusCode, data)
	}

	// Success bodies are read in full: the payment history grows without bound.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "reading response", Err: err}
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("apiclient: parsing response: %w", err)
	}

	return nil
}

// statusError maps API status codes back to the bill package sentinels.
func statusError(code int, data []byte) error {
	var e errorResponse
	_ = json.Unmarshal(data, &e)

	msg := e.Error
	if msg == "" {
		msg = http.StatusText(code)
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("apiclient: %w", bill.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("apiclient: %s: %w", msg, bill.ErrAlreadyPaid)
	case http.StatusBadRequest:
		return fmt.Errorf("apiclient: %s: %w", msg, bill.ErrValidation)
	}

	return fmt.Errorf("apiclient: unexpected status %d: %s", code, msg)
}
