// Package grpc pkg/grpc/cert_manager.go
package grpc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	certManagerPerms = 0700
)

var (
	errMissingCerts = errors.New("missing certificates")
)

// CertificateManager checks the certificate layout before a provider
// tries to load it, so startup failures name the missing files.
type CertificateManager struct {
	config *models.SecurityConfig
}

func NewCertificateManager(config *models.SecurityConfig) *CertificateManager {
	return &CertificateManager{config: config}
}

func (cm *CertificateManager) EnsureCertificateDirectory() error {
	return os.MkdirAll(cm.config.CertDir, certManagerPerms)
}

// ValidateCertificates reports every expected file that is absent from
// CertDir. The client keypair is only required for mutual TLS.
func (cm *CertificateManager) ValidateCertificates(mutual bool) error {
	required := []string{caCertFile, serverCertFile, serverKeyFile}
	if mutual {
		required = append(required, clientCertFile, clientKeyFile)
	}

	var missing []string

	for _, file := range required {
		path := filepath.Join(cm.config.CertDir, file)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, file)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingCerts, strings.Join(missing, ", "))
	}

	return nil
}
