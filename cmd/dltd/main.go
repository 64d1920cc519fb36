package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"example.com/dltgate/internal/common"
)

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	Listen        string    `yaml:"listen"`
	StorageDir    string    `yaml:"storageDir"`
	FilePrefix    string    `yaml:"filePrefix"`
	MaxFileSizeMB int       `yaml:"maxFileSizeMB"`
	DefaultEcuID  string    `yaml:"defaultEcuId"`
	ReadBufferKB  int       `yaml:"readBufferKB"`
	StatsInterval string    `yaml:"statsInterval"`
	Logs          logConfig `yaml:"logs"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Listen == "" {
		cfg.Listen = ":3490"
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = filepath.Join(".", "data")
	}
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 256
	}
	if cfg.DefaultEcuID == "" {
		cfg.DefaultEcuID = "RCVR"
	}
	if len(cfg.DefaultEcuID) > 4 {
		return cfg, errors.New("defaultEcuId longer than 4 characters")
	}
	if cfg.ReadBufferKB <= 0 {
		cfg.ReadBufferKB = 64
	}
	if cfg.Logs.Directory == "" {
		cfg.Logs.Directory = filepath.Join(cfg.StorageDir, "logs")
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
	return cfg, nil
}

func setupLogging(cfg config) error {
	if err := os.MkdirAll(cfg.Logs.Directory, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logs.Directory, "dltd.log"),
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	common.SetLogOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

func ecuIDFromString(s string) [4]byte {
	var id [4]byte
	copy(id[:], strings.TrimSpace(s))
	return id
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		common.Fatalf("load config: %v", err)
	}
	if err := setupLogging(cfg); err != nil {
		common.Fatalf("setup logging: %v", err)
	}
	listenAddr := cfg.Listen
	if *addr != "" {
		listenAddr = *addr
	}

	collector, err := NewCollector(cfg.StorageDir, cfg.FilePrefix,
		int64(cfg.MaxFileSizeMB)<<20, ecuIDFromString(cfg.DefaultEcuID))
	if err != nil {
		common.Fatalf("collector init: %v", err)
	}
	defer collector.Close()

	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		common.Fatalf("listen: %v", err)
	}
	defer conn.Close()
	common.Logf("dltd listening on %s", conn.LocalAddr())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	statsInterval := time.Minute
	if cfg.StatsInterval != "" {
		if d, err := time.ParseDuration(cfg.StatsInterval); err == nil && d > 0 {
			statsInterval = d
		}
	}
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()
	go func() {
		for range statsTicker.C {
			s := collector.Stats()
			common.Logf("ingest: files=%d messages=%d bytes=%s badFrames=%d",
				s.Files, s.Messages, common.FormatBytes(s.Bytes), s.BadFrames)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, cfg.ReadBufferKB<<10)
		for {
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				common.Errorf("read: %v", err)
				continue
			}
			if _, err := collector.Feed(buf[:n], time.Now()); err != nil {
				common.Errorf("store: %v", err)
			}
		}
	}()

	<-shutdown
	conn.Close()
	<-done
	if err := collector.Close(); err != nil {
		common.Errorf("close storage: %v", err)
	}
	s := collector.Stats()
	common.Logf("dltd stopped: files=%d messages=%d bytes=%s badFrames=%d",
		s.Files, s.Messages, common.FormatBytes(s.Bytes), s.BadFrames)
}
