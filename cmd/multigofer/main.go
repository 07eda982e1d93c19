package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"multigofer/internal/config"
	"multigofer/internal/multicall"
	"multigofer/internal/rpcclient"
	"multigofer/internal/sig"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Basic logger for startup errors
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel)
	logger.Info().
		Str("config", *configPath).
		Str("endpoint", cfg.Endpoint).
		Int("calls", len(cfg.Calls)).
		Msg("starting multigofer")

	// Create transport
	client, err := rpcclient.New(rpcclient.Config{
		URL:            cfg.Endpoint,
		RequestTimeout: cfg.GetRequestTimeoutDuration(),
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create RPC client")
	}
	defer client.Close()

	// Build the batch
	builder, err := buildBatch(client, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build batch")
	}

	// One round trip
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetRequestTimeoutDuration())
	defer cancel()

	results, err := builder.Aggregate(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("aggregation failed")
	}

	printResults(cfg, results)
}

// buildBatch translates the config into a ready-to-run builder.
func buildBatch(client *rpcclient.Client, cfg *config.Config, logger zerolog.Logger) (*multicall.Builder, error) {
	builder := multicall.New(client, logger)

	if cfg.MulticallAddress != "" {
		builder = builder.WithContract(common.HexToAddress(cfg.MulticallAddress))
	}

	block, err := multicall.ParseBlockRef(cfg.Block)
	if err != nil {
		return nil, err
	}
	builder = builder.WithBlock(block)

	kind, err := multicall.ParseInputKind(cfg.InputKind)
	if err != nil {
		return nil, err
	}
	builder = builder.WithInputKind(kind)

	if len(cfg.StateOverrides) > 0 {
		overrides, err := buildOverrides(cfg.StateOverrides)
		if err != nil {
			return nil, err
		}
		builder = builder.WithOverrides(overrides)
	}

	for i, callCfg := range cfg.Calls {
		signature, err := sig.Parse(callCfg.Signature)
		if err != nil {
			return nil, fmt.Errorf("call[%d]: %w", i, err)
		}
		args, err := signature.ArgsFromJSON(callCfg.Args)
		if err != nil {
			return nil, fmt.Errorf("call[%d]: %w", i, err)
		}

		call := multicall.NewCall(common.HexToAddress(callCfg.Target), signature, args...).
			AllowFailure(callCfg.AllowFailure)
		if callCfg.Value != "" {
			value, ok := new(big.Int).SetString(callCfg.Value, 0)
			if !ok {
				return nil, fmt.Errorf("call[%d]: invalid value %q", i, callCfg.Value)
			}
			call = call.WithValue(value)
		}

		builder = builder.Add(call)
	}

	return builder, nil
}

// buildOverrides converts config-level overrides into the eth_call override
// object.
func buildOverrides(cfgOverrides map[string]config.OverrideConfig) (multicall.StateOverride, error) {
	overrides := make(multicall.StateOverride, len(cfgOverrides))
	for addr, o := range cfgOverrides {
		var account multicall.OverrideAccount

		if o.Balance != "" {
			balance, ok := new(big.Int).SetString(o.Balance, 0)
			if !ok {
				return nil, fmt.Errorf("override %s: invalid balance %q", addr, o.Balance)
			}
			account.Balance = (*hexutil.Big)(balance)
		}
		if o.Nonce != nil {
			nonce := hexutil.Uint64(*o.Nonce)
			account.Nonce = &nonce
		}
		if o.Code != "" {
			code, err := hexutil.Decode(o.Code)
			if err != nil {
				return nil, fmt.Errorf("override %s: invalid code: %w", addr, err)
			}
			account.Code = code
		}
		if len(o.State) > 0 {
			account.State = make(map[common.Hash]common.Hash, len(o.State))
			for k, v := range o.State {
				account.State[common.HexToHash(k)] = common.HexToHash(v)
			}
		}
		if len(o.StateDiff) > 0 {
			account.StateDiff = make(map[common.Hash]common.Hash, len(o.StateDiff))
			for k, v := range o.StateDiff {
				account.StateDiff[common.HexToHash(k)] = common.HexToHash(v)
			}
		}

		overrides[common.HexToAddress(addr)] = account
	}
	return overrides, nil
}

// resultLine is one line of output on stdout.
type resultLine struct {
	Index      int           `json:"index"`
	Signature  string        `json:"signature"`
	OK         bool          `json:"ok"`
	Values     []interface{} `json:"values,omitempty"`
	RevertData string        `json:"revertData,omitempty"`
}

func printResults(cfg *config.Config, results []multicall.Result) {
	enc := json.NewEncoder(os.Stdout)
	for i, res := range results {
		line := resultLine{
			Index:     i,
			Signature: cfg.Calls[i].Signature,
			OK:        !res.Failed(),
		}
		if res.Failed() {
			line.RevertData = hexutil.Encode(res.Failure.ReturnData)
		} else {
			line.Values = make([]interface{}, len(res.Values))
			for j, v := range res.Values {
				line.Values[j] = displayValue(v)
			}
		}
		enc.Encode(line)
	}
}

// displayValue renders decoded ABI values in a JSON-friendly way: big
// integers as decimal strings, byte blobs and addresses as hex.
func displayValue(v interface{}) interface{} {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case bool, string:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = displayValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		out := make([]interface{}, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			out[i] = displayValue(rv.Field(i).Interface())
		}
		return out
	}
	return fmt.Sprintf("%v", v)
}

// setupLogger configures the zerolog logger
func setupLogger(level string) zerolog.Logger {
	// Set log level
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
