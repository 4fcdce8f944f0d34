// Package grpc pkg/grpc/security.go transport credentials for the lifecycle server
package grpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	SecurityModeNone models.SecurityMode = "none"
	SecurityModeTLS  models.SecurityMode = "tls"
	SecurityModeMTLS models.SecurityMode = "mtls"
)

// Certificate file names expected inside SecurityConfig.CertDir.
const (
	caCertFile     = "root.pem"
	serverCertFile = "server.pem"
	serverKeyFile  = "server-key.pem"
	clientCertFile = "client.pem"
	clientKeyFile  = "client-key.pem"
)

// NoSecurityProvider runs the transport in plaintext.
type NoSecurityProvider struct{}

func (*NoSecurityProvider) GetClientCredentials(context.Context) (grpc.DialOption, error) {
	return grpc.WithTransportCredentials(insecure.NewCredentials()), nil
}

func (*NoSecurityProvider) GetServerCredentials(context.Context) (grpc.ServerOption, error) {
	return grpc.Creds(insecure.NewCredentials()), nil
}

func (*NoSecurityProvider) Close() error {
	return nil
}

// TLSProvider authenticates the server to its clients. Clients are not
// asked for certificates.
type TLSProvider struct {
	clientCreds credentials.TransportCredentials
	serverCreds credentials.TransportCredentials
}

func NewTLSProvider(config *models.SecurityConfig) (*TLSProvider, error) {
	if config == nil {
		return nil, errSecurityConfigRequired
	}

	serverCreds, err := serverCredentials(config, tls.NoClientCert)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadServerCreds, err)
	}

	clientCreds, err := clientCredentials(config, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadClientCreds, err)
	}

	return &TLSProvider{clientCreds: clientCreds, serverCreds: serverCreds}, nil
}

func (p *TLSProvider) GetClientCredentials(context.Context) (grpc.DialOption, error) {
	return grpc.WithTransportCredentials(p.clientCreds), nil
}

func (p *TLSProvider) GetServerCredentials(context.Context) (grpc.ServerOption, error) {
	return grpc.Creds(p.serverCreds), nil
}

func (*TLSProvider) Close() error {
	return nil
}

// MTLSProvider requires certificates from both peers, all signed by the
// CA in CertDir.
type MTLSProvider struct {
	clientCreds credentials.TransportCredentials
	serverCreds credentials.TransportCredentials
}

func NewMTLSProvider(config *models.SecurityConfig) (*MTLSProvider, error) {
	if config == nil {
		return nil, errSecurityConfigRequired
	}

	serverCreds, err := serverCredentials(config, tls.RequireAndVerifyClientCert)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadServerCreds, err)
	}

	clientCreds, err := clientCredentials(config, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadClientCreds, err)
	}

	return &MTLSProvider{clientCreds: clientCreds, serverCreds: serverCreds}, nil
}

func (p *MTLSProvider) GetClientCredentials(context.Context) (grpc.DialOption, error) {
	return grpc.WithTransportCredentials(p.clientCreds), nil
}

func (p *MTLSProvider) GetServerCredentials(context.Context) (grpc.ServerOption, error) {
	return grpc.Creds(p.serverCreds), nil
}

func (*MTLSProvider) Close() error {
	return nil
}

// serverCredentials loads the server keypair, adding the CA as the client
// verifier when clientAuth demands certificates.
func serverCredentials(config *models.SecurityConfig, clientAuth tls.ClientAuthType) (credentials.TransportCredentials, error) {
	certificate, err := tls.LoadX509KeyPair(
		filepath.Join(config.CertDir, serverCertFile),
		filepath.Join(config.CertDir, serverKeyFile),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadServerCert, err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		ClientAuth:   clientAuth,
		MinVersion:   tls.VersionTLS13,
	}

	if clientAuth != tls.NoClientCert {
		caPool, err := caCertPool(config.CertDir)
		if err != nil {
			return nil, err
		}

		tlsConfig.ClientCAs = caPool
	}

	return credentials.NewTLS(tlsConfig), nil
}

// clientCredentials builds dial credentials that trust the CA, presenting
// the client keypair when mutual is set.
func clientCredentials(config *models.SecurityConfig, mutual bool) (credentials.TransportCredentials, error) {
	caPool, err := caCertPool(config.CertDir)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		RootCAs:    caPool,
		ServerName: config.ServerName,
		MinVersion: tls.VersionTLS13,
	}

	if mutual {
		certificate, err := tls.LoadX509KeyPair(
			filepath.Join(config.CertDir, clientCertFile),
			filepath.Join(config.CertDir, clientKeyFile),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errFailedToLoadClientCert, err)
		}

		tlsConfig.Certificates = []tls.Certificate{certificate}
	}

	return credentials.NewTLS(tlsConfig), nil
}

func caCertPool(certDir string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(filepath.Join(certDir, caCertFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToReadCACert, err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errFailedToAppendCACert
	}

	return caPool, nil
}

// NewSecurityProvider picks the provider for the configured mode. A nil
// config, like mode "none", runs in plaintext.
func NewSecurityProvider(config *models.SecurityConfig) (SecurityProvider, error) {
	if config == nil {
		log.Printf("No security config provided, gRPC transport is plaintext")
		return &NoSecurityProvider{}, nil
	}

	switch config.Mode {
	case SecurityModeNone, "":
		return &NoSecurityProvider{}, nil
	case SecurityModeTLS:
		return NewTLSProvider(config)
	case SecurityModeMTLS:
		return NewMTLSProvider(config)
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownSecurityMode, config.Mode)
	}
}
