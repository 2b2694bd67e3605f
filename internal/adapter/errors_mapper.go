package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// mapHTTPError classifies a non-2xx siteverify reply. Every outcome fails
// the CAPTCHA check; the sentinel only tells the log what went wrong.
func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrTooManyRequests, body)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrUnavailable, status, body)
	case status >= http.StatusBadRequest:
		return fmt.Errorf("%w: http %d: %s", ErrRejectedRequest, status, body)
	default:
		return fmt.Errorf("unexpected http %d: %s", status, body)
	}
}
