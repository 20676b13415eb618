package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 6379
	DefaultPoolSize = 1 << 16
)

// GlobalConfig 全局配置
type GlobalConfig struct {
	Server  ServerConfig  `yaml:"server"`  // 服务器配置
	Log     LogConfig     `yaml:"log"`     // 日志配置
	Metrics MetricsConfig `yaml:"metrics"` // 监控配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host     string `yaml:"host"`      // 绑定地址
	Port     int    `yaml:"port"`      // 监听端口
	PoolSize int    `yaml:"pool_size"` // 协程池容量，每个连接占用一个协程
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`       // debug/info/warn/error
	FileName   string `yaml:"filename"`    // 日志文件，为空则只输出到 stderr
	MaxSize    int    `yaml:"max_size"`    // 单个文件大小上限，MB
	MaxBackups int    `yaml:"max_backups"` // 保留的历史文件数
	MaxAge     int    `yaml:"max_age"`     // 保留天数
	Compress   bool   `yaml:"compress"`    // 是否压缩历史文件
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Address string `yaml:"address"` // /metrics 监听地址，为空则不启用
}

// Default 默认配置
func Default() *GlobalConfig {
	return &GlobalConfig{
		Server: ServerConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			PoolSize: DefaultPoolSize,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Load 读取 yaml 配置文件，文件不存在时返回默认配置
func Load(path string) (*GlobalConfig, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return conf, nil
		}
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	// 空文件按默认配置处理
	if err := decoder.Decode(conf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return conf, nil
}

// Validate 校验配置
func (c *GlobalConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.PoolSize <= 0 {
		return fmt.Errorf("invalid pool size %d", c.Server.PoolSize)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// Address 服务监听地址
func (c *GlobalConfig) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
