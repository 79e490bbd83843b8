package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"quizvoice/internal/domain"
)

type Config struct {
	Audio  AudioConfig  `yaml:"audio"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Server ServerConfig `yaml:"server"`
	Quiz   QuizConfig   `yaml:"quiz"`
	Log    LogConfig    `yaml:"log"`
}

type AudioConfig struct {
	// Source is where answers are captured from: microphone, file or none.
	Source          string `yaml:"source"`
	FileDir         string `yaml:"file_dir"`
	SampleRate      int    `yaml:"sample_rate"`
	EnergyThreshold int    `yaml:"energy_threshold"`
	ListenTimeout   string `yaml:"listen_timeout"`
	PhraseLimit     string `yaml:"phrase_limit"`
	PollInterval    string `yaml:"poll_interval"`
	TempDir         string `yaml:"temp_dir"`
	// RecognitionFailure is fallback_to_text or return_failure.
	RecognitionFailure string `yaml:"recognition_failure"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	TTSModel string `yaml:"tts_model"`
	Voice    string `yaml:"voice"`
	STTModel string `yaml:"stt_model"`
	Language string `yaml:"language"`
}

type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	AuthToken      string  `yaml:"auth_token"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

type QuizConfig struct {
	QuestionsFile string `yaml:"questions_file"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML config at path. Variables from a .env file next to the
// process are loaded first so ${VARS} in the file can refer to them.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := domain.ParseRecognitionFailurePolicy(c.Audio.RecognitionFailure); err != nil {
		return fmt.Errorf("audio.recognition_failure: %w", err)
	}
	// samples are 16-bit, a larger threshold can never be crossed
	if c.Audio.EnergyThreshold < 1 || c.Audio.EnergyThreshold > math.MaxInt16 {
		return fmt.Errorf("audio.energy_threshold: %d out of range 1..%d", c.Audio.EnergyThreshold, math.MaxInt16)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "microphone"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./answers"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.EnergyThreshold == 0 {
		c.Audio.EnergyThreshold = 500
	}
	if c.Audio.ListenTimeout == "" {
		c.Audio.ListenTimeout = "10s"
	}
	if c.Audio.PhraseLimit == "" {
		c.Audio.PhraseLimit = "30s"
	}
	if c.Audio.PollInterval == "" {
		c.Audio.PollInterval = "100ms"
	}
	if c.Audio.RecognitionFailure == "" {
		c.Audio.RecognitionFailure = string(domain.FallbackToText)
	}
	if c.OpenAI.TTSModel == "" {
		c.OpenAI.TTSModel = "tts-1"
	}
	if c.OpenAI.Voice == "" {
		c.OpenAI.Voice = "alloy"
	}
	if c.OpenAI.STTModel == "" {
		c.OpenAI.STTModel = "whisper-1"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = domain.SpeechLanguage
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 0.5
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 10
	}
	if c.Quiz.QuestionsFile == "" {
		c.Quiz.QuestionsFile = "questions.yaml"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

type questionsFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// LoadQuestions reads a quiz file with a top level "questions" list.
func LoadQuestions(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions file: %w", err)
	}

	var file questionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing questions: %w", err)
	}

	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}
	for i, q := range file.Questions {
		if strings.TrimSpace(q.Prompt) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("question %d: prompt and answer are required", i+1)
		}
	}

	return file.Questions, nil
}
