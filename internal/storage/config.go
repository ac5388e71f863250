package storage

import "strings"

// MinIOConfig holds the asset store connection settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	// PublicURL is the base used to build object URLs handed to browsers,
	// e.g. https://cdn.example.com. Empty means derive it from Endpoint.
	PublicURL string
	// Folder prefixes every key this service writes.
	Folder string
}

// Configured reports whether enough settings are present to dial MinIO.
func (c *MinIOConfig) Configured() bool {
	return c != nil && c.Endpoint != "" && c.Bucket != ""
}

// BaseURL returns the origin that object URLs are rooted at.
func (c *MinIOConfig) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	scheme := "http://"
	if c.UseSSL {
		scheme = "https://"
	}
	return scheme + strings.TrimRight(c.Endpoint, "/")
}
