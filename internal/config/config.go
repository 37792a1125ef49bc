package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Discord DiscordConfig `yaml:"discord"`
	LLM     LLMConfig     `yaml:"llm"`
	Grammar GrammarConfig `yaml:"grammar"`
	Flow    FlowConfig    `yaml:"flow"`
	Worker  WorkerConfig  `yaml:"worker"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// Secrets are only read from the environment.
type DiscordConfig struct {
	Token  string `yaml:"-" validate:"required"`
	Prefix string `yaml:"prefix" validate:"required,max=3"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider" validate:"oneof=gemini openai"`
	Model        string `yaml:"model"`
	GeminiAPIKey string `yaml:"-" validate:"required_if=Provider gemini"`
	OpenAIAPIKey string `yaml:"-" validate:"required_if=Provider openai"`
}

type GrammarConfig struct {
	URL      string `yaml:"url" validate:"required,url"`
	Language string `yaml:"language" validate:"required"`
}

type FlowConfig struct {
	UploadTimeout   time.Duration `yaml:"upload_timeout" validate:"gt=0"`
	TextTimeout     time.Duration `yaml:"text_timeout" validate:"gt=0"`
	ConsentTimeout  time.Duration `yaml:"consent_timeout" validate:"gt=0"`
	AnswerTimeout   time.Duration `yaml:"answer_timeout" validate:"gt=0"`
	ReviewCooldown  time.Duration `yaml:"review_cooldown" validate:"gte=0"`
	PromptMaxChars  int           `yaml:"prompt_max_chars" validate:"gte=0"`
	CompareStrategy string        `yaml:"compare_strategy" validate:"oneof=heuristic keyword generative"`
	MatchStrategy   string        `yaml:"match_strategy" validate:"oneof=heuristic keyword generative"`
	SuggestCourses  bool          `yaml:"suggest_courses"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency" validate:"min=1,max=64"`
}

// HTTPConfig enables the analysis API when Port is above zero.
type HTTPConfig struct {
	Port int `yaml:"port" validate:"min=0,max=65535"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

type StorageConfig struct {
	TempDir        string `yaml:"temp_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" validate:"gt=0"`
}

func Default() *Config {
	return &Config{
		Discord: DiscordConfig{Prefix: "!"},
		LLM:     LLMConfig{Provider: "gemini"},
		Grammar: GrammarConfig{
			URL:      "https://api.languagetool.org",
			Language: "en-US",
		},
		Flow: FlowConfig{
			UploadTimeout:   120 * time.Second,
			TextTimeout:     180 * time.Second,
			ConsentTimeout:  60 * time.Second,
			AnswerTimeout:   180 * time.Second,
			ReviewCooldown:  120 * time.Second,
			PromptMaxChars:  500,
			CompareStrategy: "heuristic",
			MatchStrategy:   "keyword",
		},
		Worker:  WorkerConfig{Concurrency: 3},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{MaxUploadBytes: 10 << 20},
	}
}

// Load reads .env if present, then the YAML file named by CONFIG_FILE, then
// environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment", "component", "config")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the values set in a YAML file.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Discord.Token, "DISCORD_BOT_TOKEN")
	setString(&c.Discord.Prefix, "COMMAND_PREFIX")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")

	setString(&c.Grammar.URL, "GRAMMAR_API_URL")
	setString(&c.Grammar.Language, "GRAMMAR_LANGUAGE")

	setString(&c.Flow.CompareStrategy, "COMPARE_SKILL_STRATEGY")
	setString(&c.Flow.MatchStrategy, "MATCH_SKILL_STRATEGY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Storage.TempDir, "TEMP_DIR")

	for key, dst := range map[string]*time.Duration{
		"UPLOAD_TIMEOUT":  &c.Flow.UploadTimeout,
		"TEXT_TIMEOUT":    &c.Flow.TextTimeout,
		"CONSENT_TIMEOUT": &c.Flow.ConsentTimeout,
		"ANSWER_TIMEOUT":  &c.Flow.AnswerTimeout,
		"REVIEW_COOLDOWN": &c.Flow.ReviewCooldown,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*int{
		"PROMPT_MAX_CHARS":   &c.Flow.PromptMaxChars,
		"WORKER_CONCURRENCY": &c.Worker.Concurrency,
		"HTTP_PORT":          &c.HTTP.Port,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.Storage.MaxUploadBytes = n
	}
	if v := os.Getenv("SUGGEST_COURSES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SUGGEST_COURSES %q: %w", v, err)
		}
		c.Flow.SuggestCourses = b
	}

	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	c.Log.Level = strings.ToLower(c.Log.Level)
	return nil
}

// Validate checks everything the bot needs to run.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateOffline skips the Discord and model settings, for local scoring.
func (c *Config) ValidateOffline() error {
	if err := validator.New().StructExcept(c, "Discord", "LLM"); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("90s") or a bare number of seconds.
func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
