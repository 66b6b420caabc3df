// Package profiling starts optional on-demand (pprof) and continuous
// (Pyroscope) profiling for a service.
package profiling

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/grafana/pyroscope-go"

	"github.com/jonesrussell/north-cloud/infrastructure/logger"
)

const pprofReadHeaderTimeout = 5 * time.Second

// Config selects which profilers run. Both are off by default.
type Config struct {
	PprofEnabled     bool   `env:"ENABLE_PROFILING"            yaml:"pprof_enabled"`
	PprofAddr        string `env:"PPROF_ADDR"                  yaml:"pprof_addr"`
	PyroscopeEnabled bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"pyroscope_enabled"`
	PyroscopeURL     string `env:"PYROSCOPE_SERVER_URL"        yaml:"pyroscope_url"`
	Environment      string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.PprofAddr == "" {
		c.PprofAddr = "localhost:6060"
	}
	if c.PyroscopeURL == "" {
		c.PyroscopeURL = "http://pyroscope:4040"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// Stop releases whatever Start started. It is never nil.
type Stop func() error

// Start launches the enabled profilers for service.
func Start(cfg Config, service, version string, log logger.Logger) (Stop, error) {
	cfg.SetDefaults()
	stops := make([]func() error, 0, 2)

	if cfg.PprofEnabled {
		srv := pprofServer(cfg.PprofAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("pprof server stopped", logger.Error(err))
			}
		}()
		log.Info("pprof server started", logger.String("address", cfg.PprofAddr))
		stops = append(stops, srv.Close)
	}

	if cfg.PyroscopeEnabled {
		p, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "north-cloud." + service,
			ServerAddress:   cfg.PyroscopeURL,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
			},
			Tags: map[string]string{
				"environment": cfg.Environment,
				"version":     version,
				"hostname":    hostname(),
				"go_version":  runtime.Version(),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("start pyroscope: %w", err)
		}
		log.Info("Continuous profiling started", logger.String("server", cfg.PyroscopeURL))
		stops = append(stops, p.Stop)
	}

	return func() error {
		var errs []error
		for _, stop := range stops {
			errs = append(errs, stop())
		}
		return errors.Join(errs...)
	}, nil
}

func pprofServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: pprofReadHeaderTimeout}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
