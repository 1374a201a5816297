// focus-send sends a single Focus command to a Kaleidoscope-powered device
// and prints the reply.
//
// Usage:
//
//	focus-send [flags] <command> [args...]
//
// The target device is taken from -d, from the config file, or discovered
// by USB vendor/product ID.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keyboardio/go-focus/discovery"
	"github.com/keyboardio/go-focus/focus"
	"github.com/keyboardio/go-focus/logger"
)

func main() {
	var (
		device      = flag.String("d", "", "serial device path (default: autodetect)")
		configPath  = flag.String("c", "", "TOML config file")
		chunkSize   = flag.Int("chunk-size", 0, "bytes per chunk write")
		writeDelay  = flag.Duration("write-delay", 0, "delay between chunk writes")
		readTimeout = flag.Duration("read-timeout", 0, "per-read reply timeout")
		baudRate    = flag.Int("baud", 0, "serial baud rate")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <command> [args...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	log := logger.GetLogger()

	// Flags win over the config file.
	cfg, err := resolveConfig(*configPath, cliOverrides{
		device:      *device,
		baudRate:    *baudRate,
		chunkSize:   *chunkSize,
		writeDelay:  *writeDelay,
		readTimeout: *readTimeout,
	})
	if err != nil {
		log.Fatal("invalid config file", "path", *configPath, "error", err)
	}

	if cfg.device == "" {
		name, err := discovery.Detect(cfg.descriptors...)
		if err != nil {
			log.Fatal("no device found", "error", err)
		}
		cfg.device = name
		log.Debug("device discovered", "port", name)
	}

	// Release the signal handler before exiting so a late interrupt falls
	// through to the default disposition.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, flag.Arg(0), flag.Args()[1:], log)
	stop()

	if err != nil {
		log.Fatal("request failed", "device", cfg.device, "error", err)
	}
}

func run(ctx context.Context, cfg cliConfig, command string, args []string, log logger.Logger) error {
	transport, err := focus.OpenSerial(cfg.device,
		focus.WithBaudRate(cfg.baudRate),
		focus.WithReadTimeout(cfg.readTimeout),
	)
	if err != nil {
		return err
	}

	session, err := focus.NewSession(transport,
		focus.WithChunkSize(cfg.chunkSize),
		focus.WithWriteDelay(cfg.writeDelay),
		focus.WithLogger(log),
	)
	if err != nil {
		_ = transport.Close()

		return err
	}
	defer session.Close()

	start := time.Now()

	if err := session.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	reply, err := session.Request(ctx, command, args...)
	if err != nil {
		return err
	}

	log.Debug("request complete",
		"command", command,
		"elapsed", time.Since(start).String())

	fmt.Println(reply)

	return nil
}
