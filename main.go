package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/williamcory/console/internal/app"
	"github.com/williamcory/console/internal/config"
	"github.com/williamcory/console/internal/mock"
	"github.com/williamcory/console/sdk/console"
)

func newClient(c *cli.Context) (*console.Client, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if url := c.String("backend"); url != "" {
		cfg.BackendURL = url
	}

	return console.NewClient(cfg.BackendURL,
		console.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		console.WithLogger(console.NewLoggerForLevel(cfg.LogLevel)),
	), nil
}

func runChat(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	model := app.New(client)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Set program reference for stream notifications
	model.SetProgram(p)

	_, err = p.Run()
	return err
}

func main() {
	cliApp := &cli.App{
		Name:  "console",
		Usage: "Terminal client for the AI platform backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Backend base URL (overrides config and CONSOLE_BACKEND_URL)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to config file",
				Value: config.DefaultPath(),
			},
		},
		Action: runChat,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Open the interactive chat view (default)",
				Action: runChat,
			},
			{
				Name:  "mock",
				Usage: "Run a mock backend speaking the SSE wire protocol",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Value: 8000,
						Usage: "Port for the mock backend",
					},
				},
				Action: func(c *cli.Context) error {
					return mock.NewServer(c.Int("port")).Start()
				},
			},
			{
				Name:  "health",
				Usage: "Check backend health",
				Action: func(c *cli.Context) error {
					client, err := newClient(c)
					if err != nil {
						return err
					}
					ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
					defer cancel()

					health, err := client.Health(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("status: %s", health.Status)
					if health.Version != "" {
						fmt.Printf(" (version %s)", health.Version)
					}
					fmt.Println()
					return nil
				},
			},
			{
				Name:  "agents",
				Usage: "List configured agents",
				Action: func(c *cli.Context) error {
					client, err := newClient(c)
					if err != nil {
						return err
					}
					ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
					defer cancel()

					agents, err := client.ListAgents(ctx)
					if err != nil {
						return err
					}
					for _, a := range agents {
						fmt.Printf("%-16s %-12s %s\n", a.ID, a.Model, a.Name)
					}
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
