package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lovelydayss/miniredis/config"
	"github.com/lovelydayss/miniredis/server"
)

func main() {

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "miniredis: %v\n", err)
		os.Exit(1)
	}

}

func newApp() *cli.App {
	return &cli.App{
		Name:  "miniredis",
		Usage: "minimal in-memory key-value server speaking RESP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the yaml config file",
				EnvVars: []string{"MINIREDIS_CONFIG"},
				Value:   "./config.yaml",
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "address to bind",
				EnvVars: []string{"MINIREDIS_HOST"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "port to listen on",
				EnvVars: []string{"MINIREDIS_PORT"},
				Value:   config.DefaultPort,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"MINIREDIS_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "rolling log file, stderr only when empty",
				EnvVars: []string{"MINIREDIS_LOG_FILE"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "address of the prometheus /metrics endpoint, disabled when empty",
				EnvVars: []string{"MINIREDIS_METRICS_ADDR"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}

	s, err := server.ConstructServer(conf)
	if err != nil {
		return fmt.Errorf("server construct failed: %w", err)
	}

	if err := s.Serve(); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// loadConfig 读取配置文件，命令行参数优先
func loadConfig(c *cli.Context) (*config.GlobalConfig, error) {
	conf, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("host") {
		conf.Server.Host = c.String("host")
	}
	if c.IsSet("port") {
		conf.Server.Port = c.Int("port")
	}
	if c.IsSet("log-level") {
		conf.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		conf.Log.FileName = c.String("log-file")
	}
	if c.IsSet("metrics-addr") {
		conf.Metrics.Address = c.String("metrics-addr")
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}
