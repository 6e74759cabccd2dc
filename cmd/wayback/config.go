package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/wayback/archive"
)

// fileConfig is the optional YAML configuration. Environment variables
// override file values; both fall back to built-in defaults.
type fileConfig struct {
	Endpoints struct {
		Availability string `yaml:"availability"`
		CDX          string `yaml:"cdx"`
		ReplayBase   string `yaml:"replay_base"`
	} `yaml:"endpoints"`

	Timeouts struct {
		Lookup  time.Duration `yaml:"lookup"`
		Content time.Duration `yaml:"content"`
	} `yaml:"timeouts"`

	UserAgent       string `yaml:"user_agent"`
	MaxContentChars int    `yaml:"max_content_chars"`

	Audit struct {
		DB            string `yaml:"db"`
		BufferSize    int    `yaml:"buffer_size"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"audit"`

	Server struct {
		Transport string `yaml:"transport"` // "" (stdio) | "quic"
		HTTPAddr  string `yaml:"http_addr"`
		QUICAddr  string `yaml:"quic_addr"`
		TLSCert   string `yaml:"tls_cert"`
		TLSKey    string `yaml:"tls_key"`
	} `yaml:"server"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overlay merges env-over-file into runtime settings.
type settings struct {
	archive archive.Config

	auditDB            string
	auditBufferSize    int
	auditRetentionDays int

	transport string
	httpAddr  string
	quicAddr  string
	tlsCert   string
	tlsKey    string
}

func resolveSettings(fc *fileConfig) settings {
	s := settings{
		archive: archive.Config{
			AvailabilityURL: env("WAYBACK_AVAILABILITY_API", fc.Endpoints.Availability),
			CDXURL:          env("WAYBACK_CDX_API", fc.Endpoints.CDX),
			ReplayBaseURL:   env("WAYBACK_REPLAY_BASE", fc.Endpoints.ReplayBase),
			LookupTimeout:   fc.Timeouts.Lookup,
			ContentTimeout:  fc.Timeouts.Content,
			MaxContentChars: fc.MaxContentChars,
			UserAgent:       env("WAYBACK_USER_AGENT", fc.UserAgent),
		},
		auditDB:            env("AUDIT_DB", fc.Audit.DB),
		auditBufferSize:    fc.Audit.BufferSize,
		auditRetentionDays: fc.Audit.RetentionDays,
		transport:          env("MCP_TRANSPORT", fc.Server.Transport),
		httpAddr:           env("HTTP_ADDR", fc.Server.HTTPAddr),
		quicAddr:           env("MCP_QUIC_ADDR", fc.Server.QUICAddr),
		tlsCert:            env("TLS_CERT", fc.Server.TLSCert),
		tlsKey:             env("TLS_KEY", fc.Server.TLSKey),
	}
	if s.auditBufferSize <= 0 {
		s.auditBufferSize = 1000
	}
	if s.quicAddr == "" {
		s.quicAddr = ":9444"
	}
	return s
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
