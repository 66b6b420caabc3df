// Package config holds the credibility service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	infraconfig "github.com/jonesrussell/north-cloud/infrastructure/config"
	"github.com/jonesrussell/north-cloud/infrastructure/profiling"
)

// Default configuration values.
const (
	defaultServiceName    = "credibility"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 3000
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"

	defaultBaseline = 50

	defaultTrustedImpact    = 25
	defaultUntrustedImpact  = -35
	defaultUnverifiedImpact = -5
	defaultInvalidURLImpact = -10
	defaultNeutralTrust     = 50

	defaultNegativeThreshold = -0.1
	defaultPositiveThreshold = 0.1
	defaultNegativeImpact    = -25
	defaultPositiveImpact    = -15
	defaultNeutralImpact     = 15

	defaultClickbaitMinLetters  = 10
	defaultClickbaitUpperRatio  = 0.5
	defaultClickbaitPunctuation = 3
	defaultClickbaitImpact      = -20

	defaultDataPresenceImpact = 15

	defaultDepthMinWords       = 150
	defaultDepthShortImpact    = -20
	defaultDepthAdequateImpact = 10

	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "credibility"
	defaultDBSSLMode      = "disable"
	defaultDBPath         = "credibility.db"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5
	defaultDBConnLifetime = 5 * time.Minute

	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "credibility"
	defaultMongoCollection = "source_reputations"
	defaultMongoMaxRetries = 5

	defaultRedisAddress   = "localhost:6379"
	defaultRedisKeyPrefix = "credibility"
	defaultRedisStream    = "credibility:events"

	defaultSentimentTimeout          = 5 * time.Second
	defaultSentimentMaxRetries       = 2
	defaultSentimentFailureThreshold = 5
	defaultSentimentResetTimeout     = 30 * time.Second

	defaultESURL   = "http://localhost:9200"
	defaultESIndex = "credibility_analyses"
)

// Source reputation policies.
const (
	PolicyLearned = "learned"
	PolicyList    = "list"
)

// Registrable domain extraction modes.
const (
	DomainModeTwoLabel     = "two_label"
	DomainModePublicSuffix = "public_suffix"
)

// Reputation store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongoDB  = "mongodb"
	BackendRedis    = "redis"
)

// Sentiment oracle providers.
const (
	SentimentLexicon = "lexicon"
	SentimentHTTP    = "http"
)

// Config holds all configuration for the credibility service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Reputation    ReputationConfig    `yaml:"reputation"`
	Database      DatabaseConfig      `yaml:"database"`
	MongoDB       MongoDBConfig       `yaml:"mongodb"`
	Redis         RedisConfig         `yaml:"redis"`
	Sentiment     SentimentConfig     `yaml:"sentiment"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Profiling     profiling.Config    `yaml:"profiling"`
}

// ServiceConfig holds service identity.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `env:"CREDIBILITY_PORT" yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// ScoringConfig holds the baseline and every extractor threshold.
type ScoringConfig struct {
	Baseline     int                `env:"SCORING_BASELINE" yaml:"baseline"`
	StripHTML    *bool              `yaml:"strip_html"`
	Source       SourceConfig       `yaml:"source"`
	Sentiment    SentimentScoring   `yaml:"sentiment"`
	Clickbait    ClickbaitConfig    `yaml:"clickbait"`
	DataPresence DataPresenceConfig `yaml:"data_presence"`
	Depth        DepthConfig        `yaml:"depth"`

	decoded bool
}

// SourceConfig configures the source reputation extractor.
type SourceConfig struct {
	Policy           string   `env:"SOURCE_POLICY"      yaml:"policy"`
	DomainMode       string   `env:"SOURCE_DOMAIN_MODE" yaml:"domain_mode"`
	TrustedImpact    int      `yaml:"trusted_impact"`
	UntrustedImpact  int      `yaml:"untrusted_impact"`
	UnverifiedImpact int      `yaml:"unverified_impact"`
	InvalidURLImpact int      `yaml:"invalid_url_impact"`
	NeutralTrust     int      `yaml:"neutral_trust"`
	TrustedSources   []string `yaml:"trusted_sources"`
	UntrustedSources []string `yaml:"untrusted_sources"`
}

// SentimentScoring maps polarity to impacts.
type SentimentScoring struct {
	NegativeThreshold float64 `yaml:"negative_threshold"`
	PositiveThreshold float64 `yaml:"positive_threshold"`
	NegativeImpact    int     `yaml:"negative_impact"`
	PositiveImpact    int     `yaml:"positive_impact"`
	NeutralImpact     int     `yaml:"neutral_impact"`
}

// ClickbaitConfig configures the title red flags.
type ClickbaitConfig struct {
	MinLetters       int     `yaml:"min_letters"`
	UppercaseRatio   float64 `yaml:"uppercase_ratio"`
	PunctuationCount int     `yaml:"punctuation_count"`
	Impact           int     `yaml:"impact"`
}

// DataPresenceConfig configures the data evidence reward.
type DataPresenceConfig struct {
	Impact int `yaml:"impact"`
}

// DepthConfig configures the word count threshold.
type DepthConfig struct {
	MinWords       int `yaml:"min_words"`
	ShortImpact    int `yaml:"short_impact"`
	AdequateImpact int `yaml:"adequate_impact"`
}

// ReputationConfig selects the store and curated seed records.
type ReputationConfig struct {
	Backend  string       `env:"REPUTATION_BACKEND"   yaml:"backend"`
	SeedFile string       `env:"REPUTATION_SEED_FILE" yaml:"seed_file"`
	Seed     []SeedRecord `yaml:"seed"`
	// SnapshotSchedule is a cron expression for refreshing the tracked
	// source gauges while serving. Empty disables the job.
	SnapshotSchedule string `env:"REPUTATION_SNAPSHOT_SCHEDULE" yaml:"snapshot_schedule"`
}

// SeedRecord is a curated reputation entry inserted when absent.
type SeedRecord struct {
	Domain string `yaml:"domain"`
	// TrustScore is nil when omitted; the record then starts at the
	// default trust score.
	TrustScore *int   `yaml:"trust_score"`
	Category   string `yaml:"category"`
}

// DatabaseConfig holds SQL settings. Path applies to sqlite, the other
// connection fields to postgres.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	Path            string        `env:"SQLITE_PATH"       yaml:"path"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// MongoDBConfig holds document store settings.
type MongoDBConfig struct {
	URI        string `env:"MONGODB_URI"      yaml:"uri"`
	Database   string `env:"MONGODB_DATABASE" yaml:"database"`
	Collection string `yaml:"collection"`
	MaxRetries int    `yaml:"max_retries"`
}

// RedisConfig holds Redis settings shared by the store and event stream.
type RedisConfig struct {
	Address       string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password      string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB            int    `env:"REDIS_DB"             yaml:"db"`
	KeyPrefix     string `yaml:"key_prefix"`
	EventsEnabled bool   `env:"REDIS_EVENTS_ENABLED" yaml:"events_enabled"`
	Stream        string `yaml:"stream"`
}

// SentimentConfig selects and configures the sentiment oracle.
type SentimentConfig struct {
	Provider         string        `env:"SENTIMENT_PROVIDER" yaml:"provider"`
	Stemming         *bool         `yaml:"stemming"`
	URL              string        `env:"SENTIMENT_URL"      yaml:"url"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	FailureThreshold int           `yaml:"failure_threshold"`
	ResetTimeout     time.Duration `yaml:"reset_timeout"`
}

// ElasticsearchConfig configures the analysis history index.
type ElasticsearchConfig struct {
	Enabled  bool   `env:"ELASTICSEARCH_ENABLED"  yaml:"enabled"`
	URL      string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	Index    string `yaml:"index"`
}

// Load reads path and applies defaults and env overrides.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, SetDefaults)
}

// Default returns a Config built from defaults and the environment only.
func Default() (*Config, error) {
	return infraconfig.Defaults[Config](SetDefaults)
}

// SetDefaults fills every unset field.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setServerDefaults(&cfg.Server)
	setLoggingDefaults(&cfg.Logging)
	setScoringDefaults(&cfg.Scoring)
	setReputationDefaults(&cfg.Reputation)
	setDatabaseDefaults(&cfg.Database)
	setMongoDefaults(&cfg.MongoDB)
	setRedisDefaults(&cfg.Redis)
	setSentimentDefaults(&cfg.Sentiment)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	cfg.Profiling.SetDefaults()
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
}

func setServerDefaults(s *ServerConfig) {
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

// DefaultScoring returns the stock scoring rules.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Baseline:  defaultBaseline,
		StripHTML: boolPtr(true),
		Source: SourceConfig{
			Policy:           PolicyLearned,
			DomainMode:       DomainModeTwoLabel,
			TrustedImpact:    defaultTrustedImpact,
			UntrustedImpact:  defaultUntrustedImpact,
			UnverifiedImpact: defaultUnverifiedImpact,
			InvalidURLImpact: defaultInvalidURLImpact,
			NeutralTrust:     defaultNeutralTrust,
			TrustedSources: []string{
				"kompas.com", "detik.com", "reuters.com", "apnews.com",
				"bbc.com", "antaranews.com", "cnnindonesia.com",
			},
			UntrustedSources: []string{"blogspot.com", "wordpress.com", "tribunnews.com", "suara.com"},
		},
		Sentiment: SentimentScoring{
			NegativeThreshold: defaultNegativeThreshold,
			PositiveThreshold: defaultPositiveThreshold,
			NegativeImpact:    defaultNegativeImpact,
			PositiveImpact:    defaultPositiveImpact,
			NeutralImpact:     defaultNeutralImpact,
		},
		Clickbait: ClickbaitConfig{
			MinLetters:       defaultClickbaitMinLetters,
			UppercaseRatio:   defaultClickbaitUpperRatio,
			PunctuationCount: defaultClickbaitPunctuation,
			Impact:           defaultClickbaitImpact,
		},
		DataPresence: DataPresenceConfig{Impact: defaultDataPresenceImpact},
		Depth: DepthConfig{
			MinWords:       defaultDepthMinWords,
			ShortImpact:    defaultDepthShortImpact,
			AdequateImpact: defaultDepthAdequateImpact,
		},
		decoded: true,
	}
}

// UnmarshalYAML decodes the section on top of DefaultScoring, so keys left
// out keep their defaults and an explicit 0 is kept as 0.
func (s *ScoringConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ScoringConfig
	p := plain(DefaultScoring())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = ScoringConfig(p)
	return nil
}

// setScoringDefaults fills a section that was never decoded. Numbers in a
// decoded section are left alone because 0 is a valid impact or baseline.
func setScoringDefaults(s *ScoringConfig) {
	if !s.decoded {
		*s = DefaultScoring()
		return
	}
	if s.StripHTML == nil {
		s.StripHTML = boolPtr(true)
	}
	if s.Source.Policy == "" {
		s.Source.Policy = PolicyLearned
	}
	if s.Source.DomainMode == "" {
		s.Source.DomainMode = DomainModeTwoLabel
	}
}

func setReputationDefaults(r *ReputationConfig) {
	if r.Backend == "" {
		r.Backend = BackendMemory
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.Path == "" {
		d.Path = defaultDBPath
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = defaultDBConnLifetime
	}
}

func setMongoDefaults(m *MongoDBConfig) {
	if m.URI == "" {
		m.URI = defaultMongoURI
	}
	if m.Database == "" {
		m.Database = defaultMongoDatabase
	}
	if m.Collection == "" {
		m.Collection = defaultMongoCollection
	}
	if m.MaxRetries == 0 {
		m.MaxRetries = defaultMongoMaxRetries
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = defaultRedisKeyPrefix
	}
	if r.Stream == "" {
		r.Stream = defaultRedisStream
	}
}

func setSentimentDefaults(s *SentimentConfig) {
	if s.Provider == "" {
		s.Provider = SentimentLexicon
	}
	if s.Stemming == nil {
		s.Stemming = boolPtr(true)
	}
	if s.Timeout == 0 {
		s.Timeout = defaultSentimentTimeout
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = defaultSentimentMaxRetries
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = defaultSentimentFailureThreshold
	}
	if s.ResetTimeout == 0 {
		s.ResetTimeout = defaultSentimentResetTimeout
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.Index == "" {
		e.Index = defaultESIndex
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// Validate checks choices that defaults cannot repair.
func (c *Config) Validate() error {
	errs := []error{
		infraconfig.ValidatePort("server.port", c.Server.Port),
		infraconfig.ValidateLogLevel(c.Logging.Level),
		infraconfig.ValidateLogFormat(c.Logging.Format),
		infraconfig.ValidateRange("scoring.baseline", c.Scoring.Baseline, 0, 100),
		infraconfig.ValidateRange("scoring.source.neutral_trust", c.Scoring.Source.NeutralTrust, 0, 100),
		infraconfig.ValidateOneOf("scoring.source.policy", c.Scoring.Source.Policy, PolicyLearned, PolicyList),
		infraconfig.ValidateOneOf("scoring.source.domain_mode", c.Scoring.Source.DomainMode,
			DomainModeTwoLabel, DomainModePublicSuffix),
		infraconfig.ValidateOneOf("reputation.backend", c.Reputation.Backend,
			BackendMemory, BackendPostgres, BackendSQLite, BackendMongoDB, BackendRedis),
		infraconfig.ValidateOneOf("sentiment.provider", c.Sentiment.Provider, SentimentLexicon, SentimentHTTP),
	}

	if c.Scoring.Sentiment.NegativeThreshold > c.Scoring.Sentiment.PositiveThreshold {
		errs = append(errs, &infraconfig.ValidationError{
			Field:   "scoring.sentiment",
			Message: "negative_threshold must not exceed positive_threshold",
		})
	}
	if c.Sentiment.Provider == SentimentHTTP {
		errs = append(errs, infraconfig.ValidateRequired("sentiment.url", c.Sentiment.URL))
	}
	for i, s := range c.Reputation.Seed {
		errs = append(errs, infraconfig.ValidateRequired(fmt.Sprintf("reputation.seed[%d].domain", i), s.Domain))
		if s.TrustScore != nil {
			errs = append(errs,
				infraconfig.ValidateRange(fmt.Sprintf("reputation.seed[%d].trust_score", i), *s.TrustScore, 0, 100))
		}
	}

	return errors.Join(errs...)
}
