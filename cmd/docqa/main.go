package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "docqa",
		Usage: "Ask questions about a PDF or text document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to YAML config file (uses ./config.yaml or ~/.config/docqa/config.yaml if not provided)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides server.addr)",
					},
				},
			},
			{
				Name:      "chat",
				Usage:     "Open an interactive chat over one document",
				ArgsUsage: "FILE",
				Action:    chatAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Write logs to this file while the chat is open",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer one question about a document and exit",
				ArgsUsage: "FILE QUESTION",
				Action:    askAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "show-source",
						Usage: "Print the segment the answer is grounded on",
					},
				},
			},
			{
				Name:      "segment",
				Usage:     "Print the token segments of a document",
				ArgsUsage: "FILE",
				Action:    segmentAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Tokens per segment (overrides segmenter.max_tokens)",
					},
					&cli.BoolFlag{
						Name:  "text",
						Usage: "Print segment text, not only token counts",
					},
				},
			},
			{
				Name:  "config",
				Usage: "Configuration helpers",
				Commands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write the default configuration",
						Action: configInitAction,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "path",
								Usage: "Destination (defaults to ~/.config/docqa/config.yaml)",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing file",
							},
						},
					},
				},
			},
		},
	}
}
