package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if c != Default() {
		t.Fatalf("expected defaults, got %+v", c)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	if err != nil {
		t.Fatalf("Load(missing): %v", err)
	}
	if c != Default() {
		t.Fatalf("expected defaults, got %+v", c)
	}
}

func TestLoadOverridesSelectedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rdv.conf")
	body := "bind = 0.0.0.0:9000\n" +
		"# a comment\n" +
		"timeout_secs = 120\n" +
		"max_queue_depth = 4\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Bind != "0.0.0.0:9000" {
		t.Errorf("Bind = %q", c.Bind)
	}
	if c.TimeoutSecs != 120 {
		t.Errorf("TimeoutSecs = %d", c.TimeoutSecs)
	}
	if c.MaxQueueDepth != 4 {
		t.Errorf("MaxQueueDepth = %d", c.MaxQueueDepth)
	}
	if c.MetricsBind != c.Bind {
		t.Errorf("MetricsBind should default to Bind, got %q vs %q", c.MetricsBind, c.Bind)
	}
	if c.DownloadMaxRetries != Default().DownloadMaxRetries {
		t.Errorf("unspecified key changed: DownloadMaxRetries = %d", c.DownloadMaxRetries)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.conf")
	if err := os.WriteFile(path, []byte("not a kv line\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unknown.conf")
	if err := os.WriteFile(path, []byte("bogus_key = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsInvalidInt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "badint.conf")
	if err := os.WriteFile(path, []byte("timeout_secs = not-a-number\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid integer")
	}
}
