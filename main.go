package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"pacduel/agent"
	"pacduel/config"
	"pacduel/experiments"
	"pacduel/game"
	"pacduel/searcher"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand(cfg).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func newCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "pacduel",
		Usage: "play matches between two Pacman agents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "agent1", Value: cfg.Agent1, Usage: "agent playing Pacman 1"},
			&cli.StringFlag{Name: "agent2", Value: cfg.Agent2, Usage: "agent playing Pacman 2"},
			&cli.StringFlag{Name: "layout", Value: cfg.Layout, Usage: "layout file, the built-in duel maze when empty"},
			&cli.Int64Flag{Name: "games", Value: int64(cfg.NumGames), Usage: "number of matches"},
			&cli.DurationFlag{Name: "timeout", Value: cfg.Timeout, Usage: "thinking budget per agent"},
			&cli.DurationFlag{Name: "game-time", Value: cfg.GameTime, Usage: "wall clock length of a match, 0 for none"},
			&cli.BoolFlag{Name: "catch-errors", Value: cfg.CatchErrors, Usage: "record agent failures as crashes instead of aborting"},
			&cli.StringFlag{Name: "output", Value: cfg.OutputDir, Usage: "directory for game and move records"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "zerolog level"},
			&cli.Int64Flag{Name: "goroutines", Value: int64(cfg.SearchGoroutines), Usage: "search goroutines of the mcts agent"},
			&cli.DurationFlag{Name: "search-time", Value: cfg.SearchDuration, Usage: "thinking time per move of the mcts agent"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, layout, err := setup(cfg, cmd)
			if err != nil {
				return err
			}
			_, err = experiments.Run(ctx, cfg, agent.Default, layout, os.Stdout)
			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "parallel",
				Usage: "compare mcts search goroutine counts against agent2",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, layout, err := setup(cfg, cmd)
					if err != nil {
						return err
					}
					_, err = experiments.RunParallelization(ctx, cfg, agent.Default, layout, os.Stdout)
					return err
				},
			},
			{
				Name:  "agents",
				Usage: "list the available agents",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					searcher.Register(agent.Default, cfg.SearchGoroutines, cfg.SearchDuration)
					for _, name := range agent.Default.Names() {
						fmt.Println(name)
					}
					return nil
				},
			},
		},
	}
}

// setup applies the command line over the environment configuration,
// configures logging and loads the layout.
func setup(cfg config.Config, cmd *cli.Command) (config.Config, *game.Layout, error) {
	cfg.Agent1 = cmd.String("agent1")
	cfg.Agent2 = cmd.String("agent2")
	cfg.Layout = cmd.String("layout")
	cfg.NumGames = int(cmd.Int64("games"))
	cfg.Timeout = cmd.Duration("timeout")
	cfg.GameTime = cmd.Duration("game-time")
	cfg.CatchErrors = cmd.Bool("catch-errors")
	cfg.OutputDir = cmd.String("output")
	cfg.LogLevel = cmd.String("log-level")
	cfg.SearchGoroutines = int(cmd.Int64("goroutines"))
	cfg.SearchDuration = cmd.Duration("search-time")
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)

	searcher.Register(agent.Default, cfg.SearchGoroutines, cfg.SearchDuration)

	layout := game.DefaultLayout()
	if cfg.Layout != "" {
		var err error
		layout, err = game.LoadLayout(cfg.Layout)
		if err != nil {
			return cfg, nil, err
		}
	}
	log.Info().Msgf("layout %s, %s vs %s, %d games", layout.Name, cfg.Agent1, cfg.Agent2, cfg.NumGames)
	return cfg, layout, nil
}
