package config

import (
	"encoding/json"
	"time"
)

// Config represents the main configuration structure
type Config struct {
	Endpoint         string                    `json:"endpoint"`
	LogLevel         string                    `json:"logLevel"`
	RequestTimeout   int                       `json:"requestTimeout"` // ms
	MulticallAddress string                    `json:"multicallAddress"`
	Block            string                    `json:"block"`     // tag, decimal or 0x hex number
	InputKind        string                    `json:"inputKind"` // data | input | both
	StateOverrides   map[string]OverrideConfig `json:"stateOverrides,omitempty"`
	Calls            []CallConfig              `json:"calls"`
}

// OverrideConfig is one address's simulated state change, applied for the
// duration of the aggregation call only.
type OverrideConfig struct {
	Balance   string            `json:"balance,omitempty"` // decimal or 0x hex wei
	Nonce     *uint64           `json:"nonce,omitempty"`
	Code      string            `json:"code,omitempty"` // 0x hex bytecode
	State     map[string]string `json:"state,omitempty"`
	StateDiff map[string]string `json:"stateDiff,omitempty"`
}

// CallConfig is one sub-call of the batch.
type CallConfig struct {
	Target       string            `json:"target"`
	Signature    string            `json:"signature"` // e.g. "balanceOf(address)(uint256)"
	Args         []json.RawMessage `json:"args,omitempty"`
	AllowFailure bool              `json:"allowFailure"`
	Value        string            `json:"value,omitempty"` // decimal or 0x hex wei
}

// Default values
const (
	DefaultLogLevel       = "info"
	DefaultRequestTimeout = 15000 // ms
)

// GetRequestTimeoutDuration returns request timeout as time.Duration
func (c *Config) GetRequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}
