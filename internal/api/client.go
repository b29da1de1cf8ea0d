// Package api implements the pet manager backend client: authentication
// endpoints plus the paginated pet and tutor registries.
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
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/petmanager/petman/internal/common"
)

// APIError carries a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client talks to the registry resources through the authorized pipeline.
type Client struct {
	http     *http.Client
	baseURL  string
	validate *validator.Validate
}

// NewClient wraps hc, which is expected to be the transport pipeline so
// that bearer attachment and the 401 retry happen below this layer.
func NewClient(hc *http.Client, baseURL string) *Client {
	return &Client{
		http:     hc,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ListParams selects a page of a registry listing.
type ListParams struct {
	Page int
	Size int
}

func (p ListParams) query() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	size := p.Size
	if size <= 0 {
		size = 10
	}
	v.Set("size", strconv.Itoa(size))
	return v
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	payload := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}{}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message == "" {
		payload.Message = payload.Error
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: payload.Message}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, apiErr)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, apiErr)
	}
	return apiErr
}

// DownloadPhoto fetches a photo by the URL the backend handed out in a
// Photo record. Relative URLs are resolved against the API base. Returns
// the raw bytes and the content type.
func (c *Client) DownloadPhoto(ctx context.Context, photoURL string) ([]byte, string, error) {
	target := photoURL
	if strings.HasPrefix(photoURL, "/") {
		target = c.baseURL + photoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// uploadPhoto posts a multipart image to a resource's photo endpoint.
func (c *Client) uploadPhoto(ctx context.Context, path, filename string, data io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("foto", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}
