package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 7000
log:
  level: debug
  filename: /tmp/miniredis.log
metrics:
  address: 127.0.0.1:9121
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if conf.Address() != "127.0.0.1:7000" {
		t.Errorf("Address = %q", conf.Address())
	}
	if conf.Log.Level != "debug" || conf.Log.FileName != "/tmp/miniredis.log" {
		t.Errorf("Log = %+v", conf.Log)
	}
	if conf.Metrics.Address != "127.0.0.1:9121" {
		t.Errorf("Metrics.Address = %q", conf.Metrics.Address)
	}

	// 未出现的字段保持默认值
	if conf.Server.PoolSize != DefaultPoolSize || conf.Log.MaxSize != 100 {
		t.Errorf("defaults lost: pool_size = %d, max_size = %d", conf.Server.PoolSize, conf.Log.MaxSize)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(t.TempDir(), "absent.yaml")},
		{name: "empty file", path: writeConfig(t, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := Load(tt.path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if conf.Address() != "0.0.0.0:6379" {
				t.Errorf("Address = %q, want 0.0.0.0:6379", conf.Address())
			}
			if err := conf.Validate(); err != nil {
				t.Errorf("default config invalid: %v", err)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "server:\n  prot: 1\n"},
		{name: "wrong type", content: "server:\n  port: many\n"},
		{name: "not yaml", content: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *GlobalConfig)
	}{
		{name: "zero port", modify: func(c *GlobalConfig) { c.Server.Port = 0 }},
		{name: "port out of range", modify: func(c *GlobalConfig) { c.Server.Port = 70000 }},
		{name: "zero pool", modify: func(c *GlobalConfig) { c.Server.PoolSize = 0 }},
		{name: "bad level", modify: func(c *GlobalConfig) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Default()
			tt.modify(conf)
			if err := conf.Validate(); err == nil {
				t.Error("Validate succeeded, want error")
			}
		})
	}

	conf := Default()
	conf.Log.Level = "WARN"
	if err := conf.Validate(); err != nil {
		t.Errorf("upper case level rejected: %v", err)
	}
}
