package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	contentTypeJSON = "application/json"
	acceptImagePNG  = "image/png"
)

// RESTRequest describes one platform call. Body, when non-nil, is encoded as
// JSON unless it is already a []byte.
type RESTRequest struct {
	Method      string
	Path        string
	Body        any
	ContentType string
	Accept      string
	Query       url.Values
}

// RESTClient turns RESTRequest descriptors into transport calls against the
// configured base URL.
type RESTClient struct {
	baseURL      string
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	transport    TransportAdapter
	authorizer   RequestAuthorizer
}

func NewRESTClient(cfg Config, transport TransportAdapter, authorizer RequestAuthorizer) (*RESTClient, error) {
	if transport == nil {
		return nil, fmt.Errorf("core: transport adapter is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RESTClient{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		userAgent:    strings.TrimSpace(cfg.UserAgent),
		timeout:      cfg.TransportTimeout(),
		maxBodyBytes: cfg.Transport.MaxBodyBytes,
		transport:    transport,
		authorizer:   authorizer,
	}, nil
}

// Do executes the request and returns the response for any 2xx status.
// Transport errors are returned as produced by the adapter; other statuses
// become NewHTTPStatusError values.
func (c *RESTClient) Do(ctx context.Context, req RESTRequest) (TransportResponse, error) {
	if c == nil || c.transport == nil {
		return TransportResponse{}, goerrors.New("core: rest client is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ServiceErrorInternal)
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := "/" + strings.TrimLeft(strings.TrimSpace(req.Path), "/")

	transportReq := TransportRequest{
		Method:               method,
		URL:                  c.baseURL + path,
		Headers:              map[string]string{},
		Query:                cloneValues(req.Query),
		Timeout:              c.timeout,
		MaxResponseBodyBytes: c.maxBodyBytes,
		Metadata:             map[string]any{"path": path},
	}
	accept := strings.TrimSpace(req.Accept)
	if accept == "" {
		accept = contentTypeJSON
	}
	transportReq.Headers["Accept"] = accept
	if c.userAgent != "" {
		transportReq.Headers["User-Agent"] = c.userAgent
	}

	if req.Body != nil {
		body, err := encodeRequestBody(req.Body)
		if err != nil {
			return TransportResponse{}, badInputError("core: encode request body", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		}
		contentType := strings.TrimSpace(req.ContentType)
		if contentType == "" {
			contentType = contentTypeJSON
		}
		transportReq.Body = body
		transportReq.Headers["Content-Type"] = contentType
	}

	if c.authorizer != nil {
		if err := c.authorizer.Authorize(ctx, &transportReq); err != nil {
			return TransportResponse{}, err
		}
	}

	res, err := c.transport.Do(ctx, transportReq)
	if err != nil {
		return TransportResponse{}, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res, NewHTTPStatusError(method, path, res.StatusCode, res.Body)
	}
	return res, nil
}

func encodeRequestBody(body any) ([]byte, error) {
	if raw, ok := body.([]byte); ok {
		return raw, nil
	}
	return json.Marshal(body)
}

func cloneValues(values url.Values) url.Values {
	if len(values) == 0 {
		return url.Values{}
	}
	out := make(url.Values, len(values))
	for key, items := range values {
		out[key] = append([]string(nil), items...)
	}
	return out
}
