// Package tlsroots builds the TLS trust store used to reach the backend.
//
// The system pool is the default. A private CA bundle (tls.ca_file) is
// appended to it so self-hosted deployments with internal certificates
// work without disabling verification.
package tlsroots
