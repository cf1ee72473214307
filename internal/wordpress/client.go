// Package wordpress contains the gateway clients for the remote WordPress
// REST API: the auth client for the identity endpoints and the content
// client for /wp/v2 resources. Both share one base URL policy and one
// error taxonomy.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// normalizeBaseURL trims a trailing slash and ensures the URL points at the
// wp-json root.
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSuffix(raw, "/")
	if strings.Contains(raw, "/wp-json") {
		return raw
	}
	return raw + "/wp-json"
}

// httpDoer is the transport seam; *http.Client satisfies it.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type base struct {
	baseURL string
	http    httpDoer
}

func newBase(baseURL string, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{
		baseURL: normalizeBaseURL(baseURL),
		http:    &http.Client{Timeout: timeout},
	}
}

// do issues a JSON request and decodes a 2xx response into out. Failures
// come back as *apperrors.APIError with the provider's code/message when
// the error body parses, and the given fallbacks otherwise.
func (b *base) do(ctx context.Context, method, url, bearer string, body interface{}, out interface{}, fallbackCode, fallbackMsg string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperrors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return apperrors.NewAPIError(apperrors.KindTransport, fallbackCode, err.Error(), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeErrorBody(resp, fallbackCode, fallbackMsg)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewAPIError(apperrors.KindMalformed, fallbackCode, fallbackMsg, resp.StatusCode)
	}
	return nil
}

// decodeErrorBody turns a non-2xx response into a protocol error. A body
// that does not parse still yields the fallback code and message; malformed
// provider errors must never crash the caller.
func decodeErrorBody(resp *http.Response, fallbackCode, fallbackMsg string) *apperrors.APIError {
	apiErr := apperrors.NewAPIError(apperrors.KindProtocol, fallbackCode, fallbackMsg, resp.StatusCode)

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Code != "" {
			apiErr.Code = body.Code
		}
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		if body.Data.Status != 0 {
			apiErr.Status = body.Data.Status
		}
	}
	return apiErr
}
