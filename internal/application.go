package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/client"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/session"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/strategy"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/tui"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type history struct {
	games   repository.GameRepository
	players repository.PlayerRepository
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	clientID := uuid.NewString()
	log = log.With("client_id", clientID)

	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rnd := rand.New(rand.NewSource(seed)) //nolint: gosec // it's ok

	var hist history

	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.DB)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		hist.games = repository.NewGameRepository(redisStorage.Connection, conf.Redis.TTL)
		hist.players = repository.NewPlayerRepository(redisStorage.Connection)
	}

	dialer := websocket.NewDialer(logger, websocket.Options{
		WriteTimeout: conf.WriteTimeout,
		PingInterval: conf.PingInterval,
	})

	wsClient := client.New(logger, client.DialFunc(func(ctx context.Context, url string) (client.Conn, error) {
		conn, err := dialer.Dial(ctx, url)
		if err != nil {
			return nil, err
		}

		return conn, nil
	}), conf.ServerURL)

	opts := session.Options{
		Role:     conf.Role,
		Name:     conf.Name,
		ClientID: clientID,
		Rand:     rnd,
	}

	if hist.games != nil {
		opts.Recorder = hist.games
	}

	log.Info("Starting client", "mode", conf.Mode, "role", conf.Role, "server_url", conf.ServerURL, "seed", seed)

	var err error

	switch conf.Mode {
	case config.ModeTUI:
		err = runTUI(ctx, cancel, logger, wsClient, opts)
	default:
		err = runBot(ctx, logger, wsClient, opts, conf.Strategy, hist)
	}

	if errors.Is(err, context.Canceled) {
		log.Info("Application context canceled, shutting down")
		return nil
	}

	return err
}

func runBot(
	ctx context.Context,
	logger *slog.Logger,
	wsClient *client.Client,
	opts session.Options,
	strategyName string,
	hist history,
) error {
	if opts.Role == entity.RolePlayer {
		chooser, err := strategy.New(strategyName, opts.Rand)
		if err != nil {
			return fmt.Errorf("could not create move chooser: %w", err)
		}

		opts.Chooser = chooser
	}

	machine := session.New(logger, wsClient, presenter.NewLog(logger), opts)

	runErr := wsClient.Run(ctx, machine)

	if hist.players != nil && machine.Name() != "" && !machine.IsObserver() {
		logStats(logger, hist.players, machine.Name())
	}

	return runErr
}

func runTUI(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *slog.Logger,
	wsClient *client.Client,
	opts session.Options,
) error {
	model := tui.New(ctx, wsClient, tui.Options{Role: opts.Role, Name: opts.Name})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	machine := session.New(logger, wsClient, tui.NewSink(program.Send), opts)

	runErr := make(chan error, 1)
	go func() {
		runErr <- wsClient.Run(ctx, machine)
	}()

	_, err := program.Run()

	cancel()

	if clientErr := <-runErr; clientErr != nil && !errors.Is(clientErr, context.Canceled) {
		logger.Warn("session ended with error", "error", clientErr)
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	return nil
}

func logStats(logger *slog.Logger, players repository.PlayerRepository, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := players.GetStats(ctx, name)
	if err != nil {
		logger.Error("could not load player stats", "player", name, "error", err)
		return
	}

	logger.Info("Player stats",
		"player", stats.Name,
		"played", stats.Played(),
		"wins", stats.Wins,
		"losses", stats.Losses,
		"stalemates", stats.Stalemates,
	)
}
