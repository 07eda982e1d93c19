package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `{
	"endpoint": "https://node.example/rpc",
	"calls": [
		{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "totalSupply()(uint256)"}
	]
}`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %d, want %d", cfg.RequestTimeout, DefaultRequestTimeout)
	}
	if got := cfg.GetRequestTimeoutDuration(); got != 15*time.Second {
		t.Errorf("GetRequestTimeoutDuration = %v", got)
	}
	if len(cfg.Calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(cfg.Calls))
	}
}

func TestLoad_Full(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"endpoint": "wss://node.example/ws",
		"logLevel": "debug",
		"requestTimeout": 3000,
		"multicallAddress": "0xcA11bde05977b3631167028862bE2a173976CA11",
		"block": "0x112a880",
		"inputKind": "input",
		"stateOverrides": {
			"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2": {"balance": "1000000000000000000"}
		},
		"calls": [
			{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "balanceOf(address)(uint256)", "args": ["\"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045\""], "allowFailure": true},
			{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "deposit()", "value": "0x2386f26fc10000"}
		]
	}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.InputKind != "input" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Calls[0].AllowFailure {
		t.Error("allowFailure not parsed")
	}
	if len(cfg.Calls[0].Args) != 1 {
		t.Errorf("args = %v", cfg.Calls[0].Args)
	}
	if cfg.Calls[1].Value != "0x2386f26fc10000" {
		t.Errorf("value = %q", cfg.Calls[1].Value)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{not json`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "missing endpoint",
			config:  `{"calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "endpoint is required",
		},
		{
			name:    "bad scheme",
			config:  `{"endpoint": "ftp://node.example", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "scheme",
		},
		{
			name:    "bad log level",
			config:  `{"endpoint": "http://node.example", "logLevel": "verbose", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "logLevel",
		},
		{
			name:    "bad multicall address",
			config:  `{"endpoint": "http://node.example", "multicallAddress": "0x1234", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "multicallAddress",
		},
		{
			name:    "bad block",
			config:  `{"endpoint": "http://node.example", "block": "newest", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "block",
		},
		{
			name:    "bad input kind",
			config:  `{"endpoint": "http://node.example", "inputKind": "calldata", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "inputKind",
		},
		{
			name:    "bad override address",
			config:  `{"endpoint": "http://node.example", "stateOverrides": {"vitalik.eth": {}}, "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`,
			wantErr: "stateOverrides",
		},
		{
			name:    "no calls",
			config:  `{"endpoint": "http://node.example", "calls": []}`,
			wantErr: "at least one call",
		},
		{
			name:    "bad call target",
			config:  `{"endpoint": "http://node.example", "calls": [{"target": "weth", "signature": "f()"}]}`,
			wantErr: "target",
		},
		{
			name:    "missing signature",
			config:  `{"endpoint": "http://node.example", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"}]}`,
			wantErr: "signature",
		},
		{
			name:    "bad call value",
			config:  `{"endpoint": "http://node.example", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()", "value": "one ether"}]}`,
			wantErr: "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NumericBlock(t *testing.T) {
	for _, block := range []string{"latest", "finalized", "18000000", "0x112a880"} {
		cfg := `{"endpoint": "http://node.example", "block": "` + block + `", "calls": [{"target": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "signature": "f()"}]}`
		if _, err := Load(writeConfig(t, cfg)); err != nil {
			t.Errorf("Load with block %q: %v", block, err)
		}
	}
}
