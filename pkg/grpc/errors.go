// Package grpc pkg/grpc/errors.go
package grpc

import (
	"errors"
)

var (
	errUnknownSecurityMode     = errors.New("unknown security mode")
	errSecurityConfigRequired  = errors.New("security config required")
	errFailedToLoadClientCreds = errors.New("failed to load client credentials")
	errFailedToLoadServerCreds = errors.New("failed to load server credentials")
	errFailedToLoadClientCert  = errors.New("failed to load client certificate")
	errFailedToLoadServerCert  = errors.New("failed to load server certificate")
	errFailedToReadCACert      = errors.New("failed to read CA certificate")
	errFailedToAppendCACert    = errors.New("failed to append CA certificate")
)
