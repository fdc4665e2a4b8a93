package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currency-converter/internal/logger"
	"currency-converter/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

var version string

const (
	defaultRatesURL   = "https://data.kurzy.cz/json/meny/b[6].json"
	defaultWebhookURL = "https://mike8nine.app.n8n.cloud/webhook/da05aab5-15e1-4964-96c1-9c56a641c40d"
	defaultListen     = ":8080"
)

type Service struct {
	log      *logrus.Logger
	ini      *ini.File
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	client   *http.Client
	sessions *sessions
	app      *fiber.App

	Listen     string
	RatesURL   string
	WebhookURL string

	CheckInterval   int64
	SessionTTL      int64
	TimeoutResponse int64
	TimeoutRequest  int64
}

func Version() {
	fmt.Print("Version=", version)
}

// New reads configFile if it exists. Every setting has a built-in default,
// so the service also runs without a config file.
func New(configFile string) (*Service, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		Loose:                    true,
		SpaceBeforeInlineComment: true,
	}, configFile)
	if err != nil {
		return nil, fmt.Errorf("load config files:%s", err)
	}
	return newService(cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func newService(cfg *ini.File, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Service, error) {
	cfg.NameMapper = ini.TitleUnderscore
	cfgLog := logger.DefaultConfig()
	if err := cfg.Section("logger").MapTo(cfgLog); err != nil {
		return nil, fmt.Errorf("mapping logger config:%s", err)
	}

	s := &Service{
		ini:             cfg,
		log:             logger.New(cfgLog),
		metrics:         metrics.New(reg),
		gatherer:        gatherer,
		Listen:          cfg.Section("http").Key("listen").MustString(defaultListen),
		RatesURL:        cfg.Section("api").Key("rates_url").MustString(defaultRatesURL),
		WebhookURL:      cfg.Section("api").Key("webhook_url").MustString(defaultWebhookURL),
		CheckInterval:   cfg.Section("service").Key("check_interval").MustInt64(10),
		SessionTTL:      cfg.Section("service").Key("session_ttl").MustInt64(60),
		TimeoutResponse: cfg.Section("service").Key("timeout_response").MustInt64(5),
		TimeoutRequest:  cfg.Section("service").Key("timeout_request").MustInt64(5),
	}
	if s.CheckInterval <= 0 {
		s.CheckInterval = 10
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 60
	}
	s.client = &http.Client{
		Timeout: time.Duration(s.TimeoutRequest) * time.Second,
	}
	s.sessions = newSessions(time.Duration(s.SessionTTL)*time.Minute, s.metrics)
	s.app = s.newApp()
	return s, nil
}

func (s *Service) Start() {
	s.log.Infof("***********************SERVICE [%s] START***********************", version)
	mainCtx, globCancel := context.WithCancel(context.Background())
	defer globCancel()

	go s.sweepSessions(mainCtx)

	go func() {
		s.log.Infof("listening on %s", s.Listen)
		if err := s.app.Listen(s.Listen); err != nil {
			s.log.Fatalln("http listen:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	q := <-quit
	s.log.Infof("recived signal: %v", q)

	globCancel()
	if err := s.app.ShutdownWithTimeout(time.Duration(s.TimeoutResponse) * time.Second); err != nil {
		s.log.Errorln("http shutdown:", err)
	}
	s.log.Info("Service: http server stopped")
	s.log.Info("***********************SERVICE STOP************************")
}

// sweepSessions drops pages that have been idle longer than SessionTTL.
func (s *Service) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.CheckInterval) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessions.sweep(now); n > 0 {
				s.log.Infof("dropped [%d] idle sessions", n)
			}
		}
	}
}
