package models

// SecurityConfig holds common transport security configuration.
type SecurityConfig struct {
	Mode       SecurityMode `json:"mode"`
	CertDir    string       `json:"cert_dir"`
	ServerName string       `json:"server_name,omitempty"`
}

// SecurityMode defines the type of transport security to use.
type SecurityMode string
