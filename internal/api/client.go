package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pharmadash/pharmadash/internal/metrics"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/errors"
	"github.com/pharmadash/pharmadash/pkg/logger"
)

// TokenSource supplies the bearer token attached to outgoing requests. The
// read must be pure and synchronous: no refresh, no expiry check, no network.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to a TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Client is the single configured HTTP client shared by all resource modules.
// It owns base-URL and /api prefix resolution, bearer-token attachment and
// error decoding; resource modules only describe their operations.
type Client struct {
	baseURL    string
	httpClient *http.Client
	uploader   *http.Client
	tokens     TokenSource
	validate   *validator.Validate
	logger     *logger.Logger

	Auth        *AuthService
	Inventory   *InventoryService
	Forecasting *ForecastingService
	Alerts      *AlertService
	Suppliers   *SupplierService
	Orders      *OrderService
	Dashboard   *DashboardService
	Chatbot     *ChatbotService
	Waste       *WasteService
}

// New creates a configured API client. tokens may be nil for unauthenticated
// use (the mock server's health probe, tests).
func New(cfg *config.APIConfig, tokens TokenSource, log *logger.Logger) *Client {
	transport := metrics.InstrumentTransport(nil)

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout, Transport: transport},
		// Bulk uploads get their own client: server-side spreadsheet
		// parsing can take far longer than a normal request.
		uploader: &http.Client{Timeout: cfg.UploadTimeout, Transport: transport},
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log.WithComponent("api"),
	}

	c.Auth = &AuthService{c}
	c.Inventory = &InventoryService{c}
	c.Forecasting = &ForecastingService{c}
	c.Alerts = &AlertService{c}
	c.Suppliers = &SupplierService{c}
	c.Orders = &OrderService{c}
	c.Dashboard = &DashboardService{c}
	c.Chatbot = &ChatbotService{c}
	c.Waste = &WasteService{c}

	return c
}

// url joins the base URL, the /api prefix and a resource path. This is the
// only place the prefix appears; resource modules pass prefix-free paths.
func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to create request", 0)
	}
	return c.do(c.httpClient, req, out)
}

// postJSON issues a POST request with a JSON body (nil for empty) and decodes
// the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// putJSON issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) putJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// delete issues a DELETE request and decodes the response into out when out
// is non-nil.
func (c *Client) delete(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(path, nil), nil)
	if err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to create request", 0)
	}
	return c.do(c.httpClient, req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "REQUEST_SETUP", "failed to marshal request body", 0)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, nil), reader)
	if err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to create request", 0)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(c.httpClient, req, out)
}

// postForm issues a POST with an x-www-form-urlencoded body. The login
// endpoint follows the OAuth2 form convention rather than JSON.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to create request", 0)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(c.httpClient, req, out)
}

// ProgressFunc reports genuine transfer progress: bytes sent so far and the
// total payload size.
type ProgressFunc func(sent, total int64)

// postMultipart streams a file as a multipart form to path using the extended
// upload timeout. progress may be nil.
func (c *Client) postMultipart(ctx context.Context, path, field, filename string, content io.Reader, size int64, out any, progress ProgressFunc) error {
	// Buffer the multipart body up front; uploads are capped at 10MiB by
	// the validation layer so this stays bounded.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to build multipart body", 0)
	}
	if _, err := io.Copy(part, content); err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to read upload file", 0)
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to finish multipart body", 0)
	}

	total := int64(buf.Len())
	var body io.Reader = &buf
	if progress != nil {
		body = &progressReader{r: &buf, total: total, report: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), body)
	if err != nil {
		return errors.Wrap(err, "REQUEST_SETUP", "failed to create request", 0)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = total

	c.logger.Info().Str("path", path).Str("file", filename).Int64("bytes", size).Msg("uploading file")
	return c.do(c.uploader, req, out)
}

// do attaches the bearer token, executes the request and decodes the
// response. Failures are logged with status and payload detail, then
// returned to the caller; there is intentionally no automatic retry and no
// logout-on-401 at this layer (session teardown belongs to the session
// manager reacting to the error).
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", req.Method).Str("url", req.URL.Path).Msg("request failed")
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return errors.Connectivity(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := decodeError(resp)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("method", req.Method).
			Str("url", req.URL.Path).
			Str("detail", appErr.Message).
			Msg("server rejected request")
		return appErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "DECODE_ERROR", "failed to decode response", resp.StatusCode)
	}
	return nil
}

// decodeError extracts the FastAPI-style {"detail": ...} body. detail is
// usually a string but validation errors carry a list of objects; those are
// flattened into a readable message.
func decodeError(resp *http.Response) *errors.AppError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return errors.FromStatus(resp.StatusCode, "")
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return errors.FromStatus(resp.StatusCode, detail)
	}

	var items []struct {
		Msg string          `json:"msg"`
		Loc json.RawMessage `json:"loc"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return errors.FromStatus(resp.StatusCode, strings.Join(msgs, "; "))
		}
	}

	return errors.FromStatus(resp.StatusCode, string(payload.Detail))
}

// validateStruct runs validator tags on a client-built payload before any
// network call is made.
func (c *Client) validateStruct(v any) error {
	if err := c.validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return errors.Validation(invalid.Error())
		}
		details := map[string]string{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
			}
		}
		return errors.Validation("invalid request payload").WithDetails(details)
	}
	return nil
}

type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
