package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// ServerBuilder assembles a Server fluently.
type ServerBuilder struct {
	config      *Config
	logger      logger.Logger
	checks      map[string]HealthCheck
	setupRoutes func(*gin.Engine)
}

// NewServerBuilder starts a builder for serviceName listening on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config: &Config{
			Port:        port,
			ServiceName: serviceName,
			CORS:        CORSConfig{Enabled: true},
		},
		checks: make(map[string]HealthCheck),
	}
}

// WithLogger sets the logger. Without one the server logs nothing.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

func (b *ServerBuilder) WithTimeouts(read, write, idle, shutdown time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	b.config.ShutdownTimeout = shutdown
	return b
}

// WithHealthCheck adds a readiness check reported by /ready.
func (b *ServerBuilder) WithHealthCheck(name string, check HealthCheck) *ServerBuilder {
	b.checks[name] = check
	return b
}

// WithRoutes registers the service routes.
func (b *ServerBuilder) WithRoutes(setup func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setup
	return b
}

// Build creates the Server with health routes ahead of service routes.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.NewNop()
	}
	b.config.SetDefaults()

	return NewServer(b.config, b.logger, func(router *gin.Engine) {
		RegisterHealthRoutes(router, b.config.ServiceName, b.config.ServiceVersion, b.checks)
		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	})
}
