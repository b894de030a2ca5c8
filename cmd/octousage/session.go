package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jgoulah/octousage/internal/config"
	"github.com/jgoulah/octousage/internal/daterange"
	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/internal/metrics"
	"github.com/jgoulah/octousage/internal/octopus"
	"github.com/jgoulah/octousage/pkg/models"
)

// session is everything one command needs to talk to the supplier
type session struct {
	cfg     *config.Config
	zone    *localtime.Zone
	client  *octopus.Client
	metrics *metrics.Metrics
	out     io.Writer

	token   string
	account string
}

func newSession(out io.Writer) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	zone, err := localtime.LoadZone(cfg.GetTimezone())
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	client := octopus.NewClient(cfg.GetAPIURL(), cfg.GetHTTPTimeout(),
		octopus.WithLogger(logger),
		octopus.WithMetrics(m),
	)

	return &session{
		cfg:     cfg,
		zone:    zone,
		client:  client,
		metrics: m,
		out:     out,
	}, nil
}

func (s *session) resolver() *daterange.Resolver {
	return daterange.NewResolver(s.zone, s.cfg.GetDefaultDays())
}

// login authenticates and looks up the account, in that order
func (s *session) login(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Authenticating as %s... ", s.cfg.Octopus.Email)
	token, err := s.client.Authenticate(ctx, s.cfg.Octopus.Email, s.cfg.Octopus.Password)
	if err != nil {
		fmt.Fprintln(s.out, "FAILED")
		return fmt.Errorf("authenticating: %w", err)
	}
	fmt.Fprintln(s.out, "✓")
	s.token = token

	account, err := s.client.FetchAccountNumber(ctx, token)
	if err != nil {
		return fmt.Errorf("fetching account number: %w", err)
	}
	s.account = account
	logger.Debug().Str("account", account).Msg("resolved account")
	return nil
}

func (s *session) fetch(ctx context.Context, rng daterange.Range) ([]models.Reading, error) {
	if err := s.login(ctx); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Fetching readings for %s (%s)... ", s.account, rng)
	to := rng.To
	readings, err := s.client.FetchReadings(ctx, s.account, s.token, rng.From, &to)
	if err != nil {
		fmt.Fprintln(s.out, "FAILED")
		return nil, fmt.Errorf("fetching readings: %w", err)
	}
	fmt.Fprintf(s.out, "✓ %d readings\n", len(readings))
	return readings, nil
}

// finish writes the metrics textfile when one is configured
func (s *session) finish() {
	if s.cfg.MetricsFile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
		logger.Warn().Err(err).Str("path", s.cfg.MetricsFile).Msg("could not write metrics")
		return
	}
	logger.Debug().Str("path", s.cfg.MetricsFile).Msg("wrote metrics textfile")
}

// parseDateArg accepts YYYY-MM-DD or a relative "Nd" meaning N days ago
func parseDateArg(zone *localtime.Zone, s string) (localtime.Date, error) {
	d, err := localtime.ParseDate(s)
	if err == nil {
		return d, nil
	}

	s = strings.TrimSpace(s)
	if len(s) > 1 && strings.HasSuffix(s, "d") {
		if n, convErr := strconv.Atoi(strings.TrimSuffix(s, "d")); convErr == nil && n >= 0 {
			return zone.DaysInThePast(n), nil
		}
	}

	return localtime.Date{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", s)
}
