package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/botguard/botguard/patrol/cachestore"
	"github.com/botguard/botguard/patrol/consumer"
	"github.com/botguard/botguard/patrol/engine"
	"github.com/botguard/botguard/patrol/intake"
	"github.com/botguard/botguard/patrol/mailroom"
	"github.com/botguard/botguard/patrol/schedule"
	"github.com/botguard/botguard/platform"
	"github.com/botguard/botguard/util"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Task intervals. Everything else falls back to the scheduler default.
var taskIntervals = map[string]time.Duration{
	"killSwitch":      60 * time.Second,
	"status":          300 * time.Second,
	"markedList":      600 * time.Second,
	"loadCommunities": 3600 * time.Second,
	"comments":        5 * time.Second,
	"submissions":     30 * time.Second,
	"queue":           60 * time.Second,
	"mail":            120 * time.Second,
	"contributions":   60 * time.Second,
	"reconcile":       300 * time.Second,
}

const (
	// pause between healthy iterations
	idleSleep = 1 * time.Second
	// pause after a failed iteration; longer than any single task interval
	// matters so a broken dependency is not hammered
	errorCooldown = 60 * time.Second
)

type Config struct {
	PlatformHost string
	Token        string
	Actor        string
	Home         string
	Scan         string
	ProfileBase  string
	RedisURL     string
	RequestRate  int
	Logger       *slog.Logger
}

type Server struct {
	logger   *slog.Logger
	engine   *engine.Engine
	sched    *schedule.Scheduler
	activity *consumer.ActivityPoller
	ledger   *consumer.LedgerConsumer
	mailroom *mailroom.Mailroom
	intake   *intake.Intake

	statusPostID string
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	if config.Actor == "" {
		return nil, fmt.Errorf("actor account name is required")
	}
	if config.Home == "" {
		config.Home = config.Actor
	}

	var cache cachestore.CacheStore
	if config.RedisURL != "" {
		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 5*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh
	} else {
		cache = cachestore.NewMemCacheStore(5_000, 5*time.Minute)
	}

	client := &platform.Client{
		Client:  util.RobustHTTPClient(),
		Host:    config.PlatformHost,
		Token:   config.Token,
		Limiter: rate.NewLimiter(rate.Limit(config.RequestRate), 1),
	}

	eng := &engine.Engine{
		Logger:      logger,
		Client:      client,
		Communities: engine.NewCommunitySet(),
		Marked:      engine.NewRoster(),
		Cache:       cache,
		Self:        config.Actor,
		Home:        config.Home,
	}

	s := &Server{
		logger:   logger,
		engine:   eng,
		sched:    schedule.NewScheduler(taskIntervals),
		activity: consumer.NewActivityPoller(logger, eng, config.Scan),
		ledger:   consumer.NewLedgerConsumer(logger, eng),
		mailroom: mailroom.NewMailroom(logger, eng),
		intake:   intake.NewIntake(logger, eng, config.ProfileBase),
	}
	eng.PreEnforce = func() {
		if err := s.killSwitch(context.Background()); err != nil {
			logger.Error("kill switch during enforcement", "err", err)
		}
	}
	return s, nil
}

// Run drives the single-threaded main loop. Tasks run strictly sequentially
// inside one iteration; any task error aborts the iteration and triggers the
// cooldown. The loop ends only on context cancellation (operator interrupt)
// or a persistent kill switch.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting")
	if err := s.killSwitch(ctx); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			s.logger.Info("received interrupt, stopping")
			return nil
		}
		if err := s.iteration(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("received interrupt, stopping")
				return nil
			}
			if err == errKillSwitch {
				return err
			}
			s.logger.Error("iteration error", "err", err)
			sleepCtx(ctx, errorCooldown)
			continue
		}
		sleepCtx(ctx, idleSleep)
	}
}

func (s *Server) iteration(ctx context.Context) error {
	if s.sched.Ready("killSwitch", false) {
		if err := s.killSwitch(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("status", false) {
		if err := s.updateStatus(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("markedList", false) {
		s.logger.Info("loading marked accounts")
		if err := s.engine.Marked.Refresh(ctx, s.engine.Client); err != nil {
			return err
		}
	}
	if s.sched.Ready("loadCommunities", false) {
		s.logger.Info("loading communities")
		if err := s.engine.Communities.Reload(ctx, s.engine.Client); err != nil {
			return err
		}
	}
	if s.sched.Ready("comments", false) {
		if err := s.activity.CheckComments(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("submissions", false) {
		if err := s.activity.CheckSubmissions(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("queue", false) {
		if err := s.activity.CheckQueue(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("mail", false) {
		if err := s.mailroom.CheckMail(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("contributions", false) {
		if err := s.intake.CheckContributions(ctx); err != nil {
			return err
		}
	}
	if s.sched.Ready("reconcile", false) {
		if err := s.ledger.CheckLedger(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
