package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the terminal's view of the inventory backend REST API.
type Client interface {
	ScanImage(ctx context.Context, image Image) (*models.ScanResult, error)
	GetSizeOptions(ctx context.Context, productID string) ([]models.SizeOption, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateSale(ctx context.Context, req *models.CreateSaleRequest) (*models.Sale, error)
	Ping(ctx context.Context) error
}

// Image is a captured frame uploaded to the recognition endpoint.
type Image struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// Observer is notified once per backend call.
type Observer func(operation string, outcome string, duration time.Duration)

type Option func(*client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

// WithRetries sets how many times idempotent GETs are retried after the first attempt.
func WithRetries(n uint64) Option {
	return func(c *client) { c.retries = n }
}

func WithObserver(o Observer) Option {
	return func(c *client) { c.observe = o }
}

// WithTimeout bounds every call, including retries.
func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.http.Timeout = d }
}

type client struct {
	baseURL string
	http    *http.Client
	retries uint64
	observe Observer
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClient(baseURL string, opts ...Option) Client {
	c := &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		retries: 2,
		observe: func(string, string, time.Duration) {},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ScanImage implements Client.
func (c *client) ScanImage(ctx context.Context, image Image) (*models.ScanResult, error) {
	if image.Data == nil {
		return nil, errors.New("image data is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := image.Filename
	if filename == "" {
		filename = "capture.jpg"
	}

	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}

	if _, err := io.Copy(part, image.Data); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	var result models.ScanResult
	if err := c.do(ctx, "scan_image", http.MethodPost, "/ai/scan", writer.FormDataContentType(), body.Bytes(), false, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetSizeOptions implements Client.
func (c *client) GetSizeOptions(ctx context.Context, productID string) ([]models.SizeOption, error) {
	var sizes []models.SizeOption

	path := "/ai/products/" + url.PathEscape(productID) + "/sizes"
	if err := c.do(ctx, "size_options", http.MethodGet, path, "", nil, true, &sizes); err != nil {
		return nil, err
	}

	return sizes, nil
}

// SearchProducts implements Client.
func (c *client) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	payload, err := json.Marshal(models.SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	var products []models.Product
	if err := c.do(ctx, "search", http.MethodPost, "/ai/search", "application/json", payload, true, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetProduct implements Client.
func (c *client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product

	if err := c.do(ctx, "get_product", http.MethodGet, "/products/"+url.PathEscape(productID), "", nil, true, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// ListProducts implements Client.
func (c *client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var list models.ProductListResponse

	if err := c.do(ctx, "list_products", http.MethodGet, "/products", "", nil, true, &list); err != nil {
		return nil, err
	}

	return list.Products, nil
}

// CreateSale implements Client. Sales are never retried automatically.
func (c *client) CreateSale(ctx context.Context, req *models.CreateSaleRequest) (*models.Sale, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sale request: %w", err)
	}

	var sale models.Sale
	if err := c.do(ctx, "create_sale", http.MethodPost, "/sales", "application/json", payload, false, &sale); err != nil {
		return nil, err
	}

	return &sale, nil
}

// Ping implements Client. Any HTTP answer means the backend is reachable.
func (c *client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &StatusError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	return nil
}

func (c *client) do(ctx context.Context, operation, method, path, contentType string, payload []byte, idempotent bool, dest any) error {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return ErrMissingToken
	}

	start := time.Now()

	attempt := func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s request failed: %w", operation, err)
		}
		defer resp.Body.Close()

		err = decode(resp, dest)

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return backoff.Permanent(err)
		}

		return err
	}

	var err error
	if idempotent && c.retries > 0 {
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
		err = backoff.Retry(attempt, policy)
	} else {
		err = attempt()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}

	c.observe(operation, outcome(err), time.Since(start))

	return err
}

func decode(resp *http.Response, dest any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return &StatusError{StatusCode: resp.StatusCode, Message: resp.Status}
			}
			return fmt.Errorf("invalid response JSON: %w", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: resp.Status}
		if env.Error != nil {
			statusErr.Code = env.Error.Code
			statusErr.Message = env.Error.Message
		}
		return statusErr
	}

	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("invalid response data: %w", err)
	}

	return nil
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("http_%d", statusErr.StatusCode)
	}

	return "transport_error"
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
