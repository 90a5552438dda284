package domdrive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domdrive.yaml")
	content := `
browser:
  headed: true
  stealth: true
  window_width: 1920
  window_height: 1080
audit:
  path: /tmp/domdrive-audit.db
limits:
  max_wait: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.Browser.Headed || !cfg.Browser.Stealth {
		t.Errorf("browser flags: %+v", cfg.Browser)
	}
	if cfg.Browser.WindowWidth != 1920 || cfg.Browser.WindowHeight != 1080 {
		t.Errorf("window: %dx%d", cfg.Browser.WindowWidth, cfg.Browser.WindowHeight)
	}
	if cfg.Audit.Path != "/tmp/domdrive-audit.db" {
		t.Errorf("audit path: %q", cfg.Audit.Path)
	}
	if cfg.Limits.MaxWait != 10*time.Second {
		t.Errorf("max_wait: %v", cfg.Limits.MaxWait)
	}
	// Defaults fill unset fields.
	if cfg.Audit.Buffer != 256 {
		t.Errorf("audit buffer default: %d", cfg.Audit.Buffer)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.Browser.WindowWidth != 1280 || cfg.Browser.WindowHeight != 800 {
		t.Errorf("window defaults: %dx%d", cfg.Browser.WindowWidth, cfg.Browser.WindowHeight)
	}
	if cfg.Limits.MaxWait != 30*time.Second {
		t.Errorf("max_wait default: %v", cfg.Limits.MaxWait)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile("/nonexistent/domdrive.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
