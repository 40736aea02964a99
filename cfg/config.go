// Package cfg loads the relay's startup configuration: an optional text
// file of "key = value" pairs, all of which have defaults. This mirrors
// the load-then-Init()-then-fatal-on-error startup flow this codebase's
// daemons use (see cmd/authn's main.go), generalized from a JSON
// jsp.LoadMeta call to this package's own key=value line format -- the
// format is spec-mandated and trivial enough that no third-party config
// library in this lineage (JSON-only jsp, or the KV-store-oriented
// tidwall/buntdb) is a better fit than a small bufio.Scanner parser.
package cfg

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the immutable snapshot of tunables loaded once at startup.
type Config struct {
	Bind                 string // host:port to listen on
	TimeoutSecs          int    // Transfer expiration window
	TimeoutScanIntervalS int    // sweeper period, seconds
	DownloadRetryMs      int    // delay between download retry attempts
	DownloadMaxRetries   int    // max retries before 503
	TokenLength          int    // length of id and of secret
	MaxContentLength     int64  // upper bound on declared length

	MaxQueueDepth       int     // per-Transfer uploader queue cap
	RequestIDRatePerSec float64 // token-bucket rate for request_id
	RegistryShards      int     // number of registry lock shards
	MetricsBind         string  // address /debug/metrics is reachable on
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Bind:                 "127.0.0.1:3000",
		TimeoutSecs:          3600,
		TimeoutScanIntervalS: 60,
		DownloadRetryMs:      200,
		DownloadMaxRetries:   9,
		TokenLength:          10,
		MaxContentLength:     1048576,

		MaxQueueDepth:       16,
		RequestIDRatePerSec: 20,
		RegistryShards:      16,
		MetricsBind:         "",
	}
}

// Load reads an optional key=value text config file. A missing file or
// empty path yields all defaults; a malformed file is an error the caller
// should treat as fatal.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("cfg: opening %q: %w", path, err)
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return Config{}, fmt.Errorf("cfg: %s:%d: expected key = value, got %q", path, lineNo, line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key == "" {
			return Config{}, fmt.Errorf("cfg: %s:%d: empty key", path, lineNo)
		}
		kv[key] = val
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("cfg: reading %q: %w", path, err)
	}

	if err := c.apply(kv); err != nil {
		return Config{}, fmt.Errorf("cfg: %s: %w", path, err)
	}
	if c.MetricsBind == "" {
		c.MetricsBind = c.Bind
	}
	return c, nil
}

func (c *Config) apply(kv map[string]string) error {
	for key, val := range kv {
		var err error
		switch key {
		case "bind":
			c.Bind = val
		case "timeout_secs":
			c.TimeoutSecs, err = strconv.Atoi(val)
		case "timeout_scan_interval_secs":
			c.TimeoutScanIntervalS, err = strconv.Atoi(val)
		case "download_retry_ms":
			c.DownloadRetryMs, err = strconv.Atoi(val)
		case "download_max_retries":
			c.DownloadMaxRetries, err = strconv.Atoi(val)
		case "token_length":
			c.TokenLength, err = strconv.Atoi(val)
		case "max_content_length":
			c.MaxContentLength, err = strconv.ParseInt(val, 10, 64)
		case "max_queue_depth":
			c.MaxQueueDepth, err = strconv.Atoi(val)
		case "request_id_rate_per_sec":
			c.RequestIDRatePerSec, err = strconv.ParseFloat(val, 64)
		case "registry_shards":
			c.RegistryShards, err = strconv.Atoi(val)
		case "metrics_bind":
			c.MetricsBind = val
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}
	return nil
}
