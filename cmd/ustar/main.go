package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := &config{}

	app := &cli.App{
		Name:  "ustar",
		Usage: "Inspect ustar archives",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "mmap",
				Usage:       "Memory-map archives instead of reading them with positioned reads",
				EnvVars:     []string{"USTAR_MMAP"},
				Destination: &cfg.mmap,
			},
			&cli.IntFlag{
				Name:        "cache-size",
				Usage:       "Number of entry lookups to cache per archive (0 disables the cache)",
				EnvVars:     []string{"USTAR_CACHE_SIZE"},
				Destination: &cfg.cacheSize,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Value:       "info",
				Usage:       "Log level (debug, info, warn, error)",
				EnvVars:     []string{"USTAR_LOG_LEVEL"},
				Destination: &cfg.logLevel,
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(cfg.logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetOutput(os.Stderr)
			return nil
		},
		Commands: []*cli.Command{
			checkCommand(cfg),
			listCommand(cfg),
			catCommand(cfg),
			statCommand(cfg),
			existsCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
