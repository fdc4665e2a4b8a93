package logger

import (
	"fmt"
	"io"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/orandin/lumberjackrus"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Config is filled from the [logger] section of the ini file. A non-empty
// File adds a rotating log file next to stdout.
type Config struct {
	Level      string
	NoColors   bool
	ShowCaller bool
	File       string
	ErrorFile  string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	LocalTime  bool
}

func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		LocalTime:  true,
	}
}

// New builds the service logger. A bad level falls back to info and a
// failing file hook is reported on the returned logger instead of aborting.
func New(cfg *Config) *logrus.Logger {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg *Config, out io.Writer) *logrus.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetReportCaller(cfg.ShowCaller)
	log.SetFormatter(&nested.Formatter{
		TimestampFormat: timestampFormat,
		NoColors:        cfg.NoColors,
		ShowFullLevel:   true,
		HideKeys:        false,
		FieldsOrder:     []string{"session", "component"},
	})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using %s", cfg.Level, level)
	}

	if cfg.File != "" {
		hook, err := fileHook(cfg, level)
		if err != nil {
			log.Errorln("init log file:", err)
		} else {
			log.AddHook(hook)
		}
	}
	return log
}

func fileHook(cfg *Config, level logrus.Level) (*lumberjackrus.Hook, error) {
	file := func(name string) *lumberjackrus.LogFile {
		return &lumberjackrus.LogFile{
			Filename:   name,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		}
	}

	opts := lumberjackrus.LogFileOpts{}
	if cfg.ErrorFile != "" {
		opts[logrus.ErrorLevel] = file(cfg.ErrorFile)
		opts[logrus.FatalLevel] = file(cfg.ErrorFile)
		opts[logrus.PanicLevel] = file(cfg.ErrorFile)
	}

	hook, err := lumberjackrus.NewHook(
		file(cfg.File),
		level,
		&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		},
		&opts,
	)
	if err != nil {
		return nil, fmt.Errorf("lumberjack hook: %w", err)
	}
	return hook, nil
}
