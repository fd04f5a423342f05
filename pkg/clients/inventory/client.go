// Package inventory is a Go client of the stock ledger HTTP API.
package inventory

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/service/auth"
	"github.com/mamadbah2/stockledger/internal/service/ledger"
	"github.com/mamadbah2/stockledger/internal/service/logs"
	"github.com/mamadbah2/stockledger/internal/service/warehouse"
)

// APIError is a non-2xx answer of the server. It unwraps to the matching
// domain sentinel so callers can use errors.Is.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("stockledger api error: status=%d, message=%s, fields=%v", e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("stockledger api error: status=%d, message=%s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return models.ErrValidation
	case http.StatusUnauthorized:
		return auth.ErrInvalidToken
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrInsufficientStock
	case http.StatusServiceUnavailable:
		return models.ErrStoreUnavailable
	}
	return nil
}

// Client is a resty-backed stock ledger client.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a client for the server at baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v1").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{httpClient: restyClient}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.httpClient.SetAuthToken(token)
}

// Login exchanges credentials for a token and uses it for later calls.
func (c *Client) Login(ctx context.Context, userID, secret string) (auth.Token, error) {
	var token auth.Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"userId": userID, "secret": secret}, &token); err != nil {
		return auth.Token{}, fmt.Errorf("login: %w", err)
	}
	c.SetToken(token.Value)
	return token, nil
}

// ApplyStockChange adds or removes stock. The server fills in the user id.
func (c *Client) ApplyStockChange(ctx context.Context, change ledger.StockChange) (handlers.ChangeResponse, error) {
	var result handlers.ChangeResponse
	if err := c.do(ctx, http.MethodPost, "/stock/changes", change, &result); err != nil {
		return handlers.ChangeResponse{}, fmt.Errorf("apply stock change: %w", err)
	}
	return result, nil
}

// RegisterItemBrand registers an item/brand pair with its opening quantity.
func (c *Client) RegisterItemBrand(ctx context.Context, reg ledger.Registration) (models.StockRecord, error) {
	var record models.StockRecord
	if err := c.do(ctx, http.MethodPost, "/items", reg, &record); err != nil {
		return models.StockRecord{}, fmt.Errorf("register item brand: %w", err)
	}
	return record, nil
}

// RemoveStockRecord deletes a stock record and reports whether one existed.
func (c *Client) RemoveStockRecord(ctx context.Context, itemID, brandID string) (bool, error) {
	var result struct {
		Removed bool `json:"removed"`
	}
	if err := c.do(ctx, http.MethodDelete, stockPath(itemID, brandID), nil, &result); err != nil {
		return false, fmt.Errorf("remove stock record: %w", err)
	}
	return result.Removed, nil
}

// GetStock reads one stock record.
func (c *Client) GetStock(ctx context.Context, itemID, brandID string) (models.StockRecord, error) {
	var record models.StockRecord
	if err := c.do(ctx, http.MethodGet, stockPath(itemID, brandID), nil, &record); err != nil {
		return models.StockRecord{}, fmt.Errorf("get stock: %w", err)
	}
	return record, nil
}

// FetchLogPage fetches one newest-first page. pageSize <= 0 uses the server default.
func (c *Client) FetchLogPage(ctx context.Context, cursor string, pageSize int) (logs.Page, error) {
	query := map[string]string{}
	if cursor != "" {
		query["cursor"] = cursor
	}
	if pageSize > 0 {
		query["pageSize"] = strconv.Itoa(pageSize)
	}

	var page logs.Page
	apiErr := new(APIError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&page).
		SetError(apiErr).
		Get("/logs")
	if err := check(resp, err, apiErr); err != nil {
		return logs.Page{}, fmt.Errorf("fetch log page: %w", err)
	}
	return page, nil
}

// AllLogs follows cursors from the newest entry until the server reports no
// more pages.
func (c *Client) AllLogs(ctx context.Context, pageSize int) ([]models.LogEntry, error) {
	var all []models.LogEntry
	cursor := ""
	for {
		page, err := c.FetchLogPage(ctx, cursor, pageSize)
		if err != nil {
			return all, err
		}
		all = append(all, page.Entries...)
		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// Warehouse lists stock rows, optionally filtered by item or brand.
func (c *Client) Warehouse(ctx context.Context, filter models.StockFilter) ([]warehouse.Row, error) {
	query := map[string]string{}
	if filter.ItemID != "" {
		query["itemId"] = filter.ItemID
	}
	if filter.BrandID != "" {
		query["brandId"] = filter.BrandID
	}

	var rows []warehouse.Row
	apiErr := new(APIError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&rows).
		SetError(apiErr).
		Get("/warehouse")
	if err := check(resp, err, apiErr); err != nil {
		return nil, fmt.Errorf("list warehouse: %w", err)
	}
	return rows, nil
}

// DownloadInvoice returns the PDF of log entry id and its suggested file name.
func (c *Client) DownloadInvoice(ctx context.Context, id string) ([]byte, string, error) {
	apiErr := new(APIError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetPathParam("id", id).
		SetError(apiErr).
		Get("/logs/{id}/invoice")
	if err := check(resp, err, apiErr); err != nil {
		return nil, "", fmt.Errorf("download invoice %s: %w", id, err)
	}

	name := id + "_bill.pdf"
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return resp.Body(), name, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	apiErr := new(APIError)
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	return check(resp, err, apiErr)
}

func check(resp *resty.Response, err error, apiErr *APIError) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return apiErr
	}
	return nil
}

func stockPath(itemID, brandID string) string {
	return "/stock/" + url.PathEscape(itemID) + "/" + url.PathEscape(brandID)
}
