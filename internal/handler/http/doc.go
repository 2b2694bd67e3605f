// Package http implements the HTTP transport layer of the login portal.
//
// Pages are served as JSON documents. The package wires the chi router, the
// identity gate that resolves the token cookie into the caller's account,
// the authentication and role guards, flash notices, the CAPTCHA session
// cookie and the credential throttle. Business decisions are delegated to
// the service layer.
package http
