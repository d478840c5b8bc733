package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps"`
	WhiteCap  float64 `yaml:"white_cap"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type Output struct {
	Device     string   `yaml:"device"` // "strip" | "console" | "mqtt" | "preview"
	ID         string   `yaml:"id,omitempty"`
	Pixels     int      `yaml:"pixels"`
	Brightness int      `yaml:"brightness"`
	IntervalMs int      `yaml:"interval_ms"`
	Power      PowerCfg `yaml:"power"`
}

func (o Output) Interval() time.Duration {
	return time.Duration(o.IntervalMs) * time.Millisecond
}

type SPI struct {
	Driver     string `yaml:"driver"`   // "spidev" | "nrz" | "sim"
	Dev        string `yaml:"dev"`      // e.g. /dev/spidev0.0
	SpeedHz    int    `yaml:"speed_hz"` // e.g. 2400000
	ResetUs    int    `yaml:"reset_us"` // e.g. 300
	ColorOrder string `yaml:"color_order"`
}

type Layout struct {
	Dim             Dim  `yaml:"dim"`
	XFlipEveryRow   bool `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool `yaml:"y_flip_every_panel"`
}

type Reconnect struct {
	InitialDelay int `yaml:"initial_delay"` // seconds
	MaxDelay     int `yaml:"max_delay"`     // seconds
}

type MQTT struct {
	Enabled     bool      `yaml:"enabled"`
	Host        string    `yaml:"host"`
	Port        int       `yaml:"port"`
	TLS         bool      `yaml:"tls"`
	ClientID    string    `yaml:"client_id"`
	Username    string    `yaml:"username,omitempty"`
	Password    string    `yaml:"password,omitempty"`
	TopicPrefix string    `yaml:"topic_prefix"`
	QoS         int       `yaml:"qos"`
	Reconnect   Reconnect `yaml:"reconnect"`
}

type Server struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type Store struct {
	Kind string `yaml:"kind"` // "file" | "sqlite" | "memory"
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

type Influx struct {
	Enabled         bool   `yaml:"enabled"`
	URL             string `yaml:"url"`
	Token           string `yaml:"token,omitempty"`
	Org             string `yaml:"org"`
	Bucket          string `yaml:"bucket"`
	BatchSize       uint   `yaml:"batch_size"`
	FlushIntervalMs uint   `yaml:"flush_interval_ms"`
}

type Audio struct {
	Source string  `yaml:"source"` // "generator" | "mqtt" | "none"
	Topic  string  `yaml:"topic,omitempty"`
	BPM    float64 `yaml:"bpm"`
	Bands  int     `yaml:"bands"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" | "json"
}

type Effect struct {
	Start    string `yaml:"start"`
	Playlist string `yaml:"playlist,omitempty"`
	Loop     bool   `yaml:"loop"`
}

type Discovery struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

type Config struct {
	Output    Output    `yaml:"output"`
	SPI       SPI       `yaml:"spi,omitempty"`
	Layout    Layout    `yaml:"layout"`
	MQTT      MQTT      `yaml:"mqtt"`
	Server    Server    `yaml:"server"`
	Store     Store     `yaml:"store"`
	Influx    Influx    `yaml:"influx"`
	Audio     Audio     `yaml:"audio"`
	Logging   Logging   `yaml:"logging"`
	Effect    Effect    `yaml:"effect"`
	Discovery Discovery `yaml:"discovery"`
}

// Default is a headless simulator setup that needs no hardware or network.
func Default() *Config {
	return &Config{
		Output: Output{
			Device:     "strip",
			Pixels:     60,
			Brightness: 80,
			IntervalMs: 20,
			Power:      PowerCfg{LimitAmps: 3.0, WhiteCap: 0.85},
		},
		SPI: SPI{Driver: "sim", Dev: "/dev/spidev0.0", SpeedHz: 2400000, ResetUs: 300, ColorOrder: "GRB"},
		MQTT: MQTT{
			Host: "localhost", Port: 1883, ClientID: "lightstream", TopicPrefix: "lightstream", QoS: 0,
			Reconnect: Reconnect{InitialDelay: 1, MaxDelay: 30},
		},
		Server:    Server{Enabled: true, Addr: ":8080"},
		Store:     Store{Kind: "file", Path: "settings", Key: "settings"},
		Influx:    Influx{URL: "http://localhost:8086", Org: "lightstream", Bucket: "lightstream", BatchSize: 100, FlushIntervalMs: 1000},
		Audio:     Audio{Source: "generator", BPM: 120, Bands: 16},
		Logging:   Logging{Level: "info", Format: "console"},
		Effect:    Effect{Start: "Fade", Loop: true},
		Discovery: Discovery{Instance: "lightstream"},
	}
}

// Load reads path over the defaults, so a partial file only overrides what it names.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, c.Validate()
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

var ErrInvalid = errors.New("config: invalid")

func (c *Config) Validate() error {
	switch {
	case c.Output.Pixels < 1:
		return fmt.Errorf("%w: output.pixels must be at least 1, got %d", ErrInvalid, c.Output.Pixels)
	case c.Output.Brightness < 0 || c.Output.Brightness > 100:
		return fmt.Errorf("%w: output.brightness must be 0..100, got %d", ErrInvalid, c.Output.Brightness)
	case c.Output.IntervalMs < 1:
		return fmt.Errorf("%w: output.interval_ms must be at least 1, got %d", ErrInvalid, c.Output.IntervalMs)
	case c.MQTT.QoS < 0 || c.MQTT.QoS > 2:
		return fmt.Errorf("%w: mqtt.qos must be 0..2, got %d", ErrInvalid, c.MQTT.QoS)
	}
	switch c.Output.Device {
	case "strip", "console", "mqtt", "preview":
	default:
		return fmt.Errorf("%w: unknown output.device %q", ErrInvalid, c.Output.Device)
	}
	if c.Layout.Dim.X*max(c.Layout.Dim.Y, 1)*max(c.Layout.Dim.Z, 1) > c.Output.Pixels {
		return fmt.Errorf("%w: layout needs more pixels than output.pixels", ErrInvalid)
	}
	return nil
}
