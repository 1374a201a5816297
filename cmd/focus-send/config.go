package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/keyboardio/go-focus/discovery"
	"github.com/keyboardio/go-focus/focus"
)

// cliConfig is the resolved tool configuration: file values overridden by
// flags, defaults for everything else.
type cliConfig struct {
	device      string
	baudRate    int
	chunkSize   int
	writeDelay  time.Duration
	readTimeout time.Duration
	descriptors []discovery.Descriptor
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		baudRate:    focus.DefaultBaudRate,
		chunkSize:   focus.DefaultChunkSize,
		writeDelay:  focus.DefaultWriteDelay,
		readTimeout: focus.DefaultReadTimeout,
		descriptors: discovery.KnownDevices(),
	}
}

// cliOverrides holds the flag values that take precedence over the config
// file; zero values mean "not set on the command line".
type cliOverrides struct {
	device      string
	baudRate    int
	chunkSize   int
	writeDelay  time.Duration
	readTimeout time.Duration
}

// resolveConfig loads the config file (when path is non-empty) and applies
// the flag overrides on top.
func resolveConfig(path string, ov cliOverrides) (cliConfig, error) {
	cfg := defaultCLIConfig()

	if path != "" {
		var err error
		cfg, err = loadCLIConfig(path)
		if err != nil {
			return cliConfig{}, err
		}
	}

	if ov.device != "" {
		cfg.device = ov.device
	}
	if ov.baudRate != 0 {
		cfg.baudRate = ov.baudRate
	}
	if ov.chunkSize != 0 {
		cfg.chunkSize = ov.chunkSize
	}
	if ov.writeDelay != 0 {
		cfg.writeDelay = ov.writeDelay
	}
	if ov.readTimeout != 0 {
		cfg.readTimeout = ov.readTimeout
	}

	return cfg, nil
}

type fileConfig struct {
	Device      string        `toml:"device"`
	BaudRate    int           `toml:"baud_rate"`
	ChunkSize   int           `toml:"chunk_size"`
	WriteDelay  string        `toml:"write_delay"`
	ReadTimeout string        `toml:"read_timeout"`
	Devices     []deviceEntry `toml:"devices"`
}

// deviceEntry is an extra USB descriptor added to the discovery allowlist.
type deviceEntry struct {
	VendorID  string `toml:"vendor_id"`
	ProductID string `toml:"product_id"`
}

func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("device") {
		cfg.device = strings.TrimSpace(raw.Device)
	}

	if meta.IsDefined("baud_rate") {
		if raw.BaudRate <= 0 {
			return cliConfig{}, fmt.Errorf("baud_rate %d must be positive", raw.BaudRate)
		}
		cfg.baudRate = raw.BaudRate
	}

	if meta.IsDefined("chunk_size") {
		if raw.ChunkSize < focus.MinChunkSize || raw.ChunkSize > focus.MaxChunkSize {
			return cliConfig{}, fmt.Errorf("chunk_size %d out of range [%d, %d]",
				raw.ChunkSize, focus.MinChunkSize, focus.MaxChunkSize)
		}
		cfg.chunkSize = raw.ChunkSize
	}

	if meta.IsDefined("write_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteDelay))
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse write_delay: %w", err)
		}
		cfg.writeDelay = d
	}

	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return cliConfig{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.readTimeout = d
	}

	if meta.IsDefined("devices") {
		for _, entry := range raw.Devices {
			vid := strings.TrimSpace(entry.VendorID)
			pid := strings.TrimSpace(entry.ProductID)
			if vid == "" || pid == "" {
				return cliConfig{}, fmt.Errorf("devices entry needs both vendor_id and product_id, got %q/%q",
					entry.VendorID, entry.ProductID)
			}

			cfg.descriptors = append(cfg.descriptors, discovery.Descriptor{
				VendorID:  vid,
				ProductID: pid,
			})
		}
	}

	return cfg, nil
}
