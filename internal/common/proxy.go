package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	OK                     int = 200
	BAD_REQUEST            int = 400
	UNAUTHORIZED           int = 401
	FORBIDDEN              int = 403
	DATA_NOT_FOUND         int = 404
	METHOD_NOT_ALLOWED     int = 405
	UNSUPPORTED_MEDIA_TYPE int = 415
	RATE_LIMIT_EXCEEDED    int = 429
	INTERNAL_SERVER_ERROR  int = 500
	BAD_GATEWAY            int = 502
	SERVICE_UNAVAILABLE    int = 503
	GATEWAY_TIMEOUT        int = 504
)

var messages = map[int]string{
	OK:                     "OK",
	BAD_REQUEST:            "Bad request",
	UNAUTHORIZED:           "Unauthorized",
	FORBIDDEN:              "Forbidden",
	DATA_NOT_FOUND:         "Data not found",
	METHOD_NOT_ALLOWED:     "Method not allowed",
	UNSUPPORTED_MEDIA_TYPE: "Unsupported media type",
	RATE_LIMIT_EXCEEDED:    "Rate limit exceeded",
	INTERNAL_SERVER_ERROR:  "Internal server error",
	BAD_GATEWAY:            "Bad gateway",
	SERVICE_UNAVAILABLE:    "Service unavailable",
	GATEWAY_TIMEOUT:        "Gateway timeout",
}

var ErrDataNotFound = errors.New("data not found")

// A status code other than 200 or 404
type StatusError struct {
	StatusCode int
	Url        string
}

func (e *StatusError) Error() string {
	message, ok := messages[e.StatusCode]
	if !ok {
		message = "status not understood"
	}
	return fmt.Sprintf("request to %s answered %d (%s)", e.Url, e.StatusCode, message)
}

type Proxy struct {
	client      *http.Client
	rateLimiter *RateLimiter
}

// The rate limiter is shared: every proxy built on it competes for the same budget
func NewProxy(rateLimiter *RateLimiter, timeout time.Duration) *Proxy {
	return &Proxy{&http.Client{Timeout: timeout}, rateLimiter}
}

// Make a request to the provided url with the provided headers, indicating if it is vital.
// The request will be performed depending on the status of the rate limiter
func (proxy *Proxy) Request(ctx context.Context, url string, header map[string]string, vital bool) ([]byte, error) {

	// ask for permission to execute the request
	// and wait if necessary
	if err := proxy.rateLimiter.Wait(ctx, vital); err != nil {
		return nil, err
	}

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for url %s: %w", url, err)
	}
	for key, value := range header {
		request.Header.Set(key, value)
	}

	// Perform the request
	res, err := proxy.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("could not perform request to %s: %w", url, err)
	}
	defer res.Body.Close()

	if message, ok := messages[res.StatusCode]; ok {
		log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, message))
	} else {
		log.Error().Msg(fmt.Sprintf("Status code of request (%d) is not understood", res.StatusCode))
	}

	switch res.StatusCode {
	case OK:
		// Read the response
		stream, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("could not extract the response for url %s: %w", url, err)
		}
		return stream, nil
	case DATA_NOT_FOUND:
		return nil, ErrDataNotFound
	case RATE_LIMIT_EXCEEDED:
		proxy.rateLimiter.ReceivedRateLimit(retryAfter(res.Header.Get("Retry-After")))
		return nil, &StatusError{res.StatusCode, url}
	default:
		return nil, &StatusError{res.StatusCode, url}
	}
}

func retryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return time.Second
	}
	return time.Duration(seconds) * time.Second
}
