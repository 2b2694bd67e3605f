package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "go-login-portal"

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
//
// Example usage:
//
//	client := utils.NewHTTPClient(5 * time.Second)
//	resp, err := client.R().SetFormData(form).Post(verifyURL)
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an independent HTTPClient whose requests are bounded
// by timeout. A zero timeout leaves requests unbounded.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	return &HTTPClient{Client: client}
}
