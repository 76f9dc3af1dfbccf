package config

import (
	"strings"
	"time"
)

// Region represents a Langfuse cloud region.
type Region string

const (
	// RegionEU is the European cloud region.
	RegionEU Region = "eu"
	// RegionUS is the US cloud region.
	RegionUS Region = "us"
	// RegionHIPAA is the HIPAA-compliant US region.
	RegionHIPAA Region = "hipaa"
)

// RegionBaseURLs maps regions to their host URLs.
var RegionBaseURLs = map[Region]string{
	RegionEU:    "https://cloud.langfuse.com",
	RegionUS:    "https://us.cloud.langfuse.com",
	RegionHIPAA: "https://hipaa.cloud.langfuse.com",
}

// APIPrefix is prepended to every API path.
const APIPrefix = "/api/public"

// BaseURL returns the host URL for this region.
func (r Region) BaseURL() string {
	if url, ok := RegionBaseURLs[r]; ok {
		return url
	}
	return RegionBaseURLs[RegionEU]
}

// String returns the string representation of the region.
func (r Region) String() string {
	return string(r)
}

// NormalizeBaseURL trims trailing slashes and an API prefix so both
// "https://host" and "https://host/api/public/" name the same server.
func NormalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	u = strings.TrimSuffix(u, APIPrefix)
	return strings.TrimRight(u, "/")
}

// ResolveBaseURL picks the first non-empty of baseURL and host, falling back
// to the region's URL.
func ResolveBaseURL(baseURL, host string, region Region) string {
	for _, u := range []string{baseURL, host} {
		if u = NormalizeBaseURL(u); u != "" {
			return u
		}
	}
	return region.BaseURL()
}

// Transport defaults.
const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxRetries          = 3
	DefaultRetryDelay          = time.Second
	DefaultMaxRetryDelay       = 30 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
)

// Delivery defaults. Batch mode is on unless switched off.
const (
	DefaultBatchMode     = true
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second
	DefaultQueueCapacity = 50_000

	// DefaultBackgroundSendTimeout bounds one background batch, retries
	// included.
	DefaultBackgroundSendTimeout = 30 * time.Second

	// DefaultShutdownTimeout leaves room for one full request after the
	// final flush starts.
	DefaultShutdownTimeout = DefaultTimeout + 5*time.Second

	DefaultPromptCacheTTL = time.Minute
)

// Limits enforced by client validation.
const (
	MaxBatchSize     = 10_000
	MaxMaxRetries    = 100
	MaxTimeout       = 10 * time.Minute
	MinFlushInterval = 100 * time.Millisecond

	// Keys shorter than MinKeyLength or without the pk-/sk- prefix are
	// rejected before any request is made.
	MinKeyLength    = 8
	PublicKeyPrefix = "pk-"
	SecretKeyPrefix = "sk-"
)
