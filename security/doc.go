// Package security builds the TLS configuration of the pipelinectl HTTP API.
//
//	cfg := security.TLSConfig{
//	    CertFile:     "/etc/pipelinectl/tls.crt",
//	    KeyFile:      "/etc/pipelinectl/tls.key",
//	    ClientCAFile: "/etc/pipelinectl/clients-ca.pem", // optional, enables mTLS
//	}
//	tlsConfig, err := cfg.Build()
package security
