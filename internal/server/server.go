package server

import (
	"bufio"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phasestarra7/GroundZero/internal/callbacks"
	"github.com/phasestarra7/GroundZero/internal/console"
	"github.com/phasestarra7/GroundZero/internal/gamemode"
	"github.com/phasestarra7/GroundZero/internal/match"
	"github.com/phasestarra7/GroundZero/internal/metrics"
	"github.com/phasestarra7/GroundZero/internal/notify"
	"github.com/phasestarra7/GroundZero/internal/player"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/tick"
	"github.com/phasestarra7/GroundZero/pkg/config"
	"github.com/phasestarra7/GroundZero/pkg/lua"
)

// Server owns the scheduler goroutine and everything driven from it: the
// match manager, the console host and the optional metrics endpoint.
type Server struct {
	config    *config.Config
	logger    *slog.Logger
	scheduler *tick.Scheduler
	session   *session.Session
	roster    *player.Manager
	world     *console.World
	match     *match.Manager
	shell     *console.Shell
	gameMode  gamemode.GameMode
	callbacks *callbacks.CallbackChain
	recorder  *metrics.Recorder
	metrics   *metrics.Server
	in        io.Reader
	out       io.Writer
	startTime time.Time
}

// NewSeed returns a random seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New wires a server reading console commands from in and writing the
// console host's output to out.
func New(cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	srv := &Server{
		config:    cfg,
		logger:    logger,
		scheduler: tick.NewScheduler(cfg.Server.TickRate, logger),
		session:   session.New(),
		roster:    player.NewManager(),
		callbacks: callbacks.NewCallbackChain(),
		in:        in,
		out:       out,
	}
	srv.world = console.NewWorld(out, srv.roster, rng)
	announcer := notify.NewAnnouncer(srv.world, cfg.Server.Language)

	srv.gameMode, err = srv.loadGamemode(announcer)
	if err != nil {
		return nil, err
	}
	srv.callbacks.Register(srv.gameMode)

	srv.recorder = metrics.NewRecorder(srv.session)
	srv.callbacks.Register(srv.recorder)
	if cfg.Server.MetricsAddr != "" {
		srv.metrics = metrics.NewServer(cfg.Server.MetricsAddr, srv.recorder.Registry(), logger)
	}

	srv.match, err = match.New(match.Deps{
		Config:      cfg,
		Logger:      logger,
		Scheduler:   srv.scheduler,
		Bus:         tick.NewBus(srv.scheduler, logger),
		Session:     srv.session,
		Roster:      srv.roster,
		Environment: srv.world,
		Menu:        srv.world,
		Announcer:   announcer,
		Hooks:       srv.callbacks,
		Rand:        rng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match manager: %w", err)
	}
	srv.shell = console.NewShell(srv.match, srv.world, out)

	return srv, nil
}

func (s *Server) loadGamemode(announcer *notify.Announcer) (gamemode.GameMode, error) {
	path := s.config.Server.GamemodeScript
	if path == "" {
		return gamemode.NewBaseGameMode(""), nil
	}
	if !lua.FileExists(path) {
		return nil, fmt.Errorf("gamemode script %s not found", path)
	}

	api := lua.NewGameAPI(s.session, s.roster, announcer, s.config.Server.TickRate)
	gm, err := gamemode.NewLuaGameMode(path, api, s.roster, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded gamemode script", "path", path, "gamemode", gm.Name())
	return gm, nil
}

func (s *Server) Match() *match.Manager {
	return s.match
}

func (s *Server) Scheduler() *tick.Scheduler {
	return s.scheduler
}

func (s *Server) GetUptime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// Run blocks until ctx is cancelled or the console asks to quit. Any match
// in progress is ended before Run returns.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.startTime = time.Now()
	s.logger.Info("server running",
		"name", s.config.Server.Name,
		"tick_rate", s.config.Server.TickRate,
		"gamemode", s.gameMode.Name(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.scheduler.Run(ctx)
	})
	g.Go(func() error {
		return s.readConsole(ctx, cancel)
	})
	if s.metrics != nil {
		g.Go(func() error {
			return s.metrics.Run(ctx)
		})
	}

	err := g.Wait()
	s.match.Shutdown()
	s.logger.Info("server stopped", "uptime", s.GetUptime().Round(time.Second))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Execute queues one console line for the scheduler goroutine.
func (s *Server) Execute(line string, quit func()) bool {
	return s.scheduler.Post(func() {
		err := s.shell.Execute(line)
		switch {
		case errors.Is(err, console.ErrQuit):
			s.logger.Info("quit requested from console")
			quit()
		case err != nil:
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	})
}

func (s *Server) readConsole(ctx context.Context, quit func()) error {
	if s.in == nil {
		return nil
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Warn("console read failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				s.logger.Info("console input closed")
				return nil
			}
			if !s.Execute(line, quit) {
				fmt.Fprintln(s.out, "error: server busy, command dropped")
			}
		}
	}
}
