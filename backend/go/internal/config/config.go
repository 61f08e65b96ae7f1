package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential 表示所选 LLM 提供商所需的凭证未配置，服务必须拒绝启动。
var ErrMissingCredential = errors.New("missing provider credential")

// 默认值。
const (
	DefaultProvider       = "gemini"
	DefaultGeminiModel    = "gemini-1.5-pro"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-latest"
	DefaultOllamaModel    = "llama3"
	DefaultAddress        = ":8080"
	DefaultMaxChars       = 5000
	DefaultMaxUploadBytes = 32 << 20
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address        string `yaml:"address"        env:"HTTP_ADDRESS"`     // 监听地址
	MaxUploadBytes int64  `yaml:"maxUploadBytes" env:"MAX_UPLOAD_BYTES"` // 请求体上限（字节）
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// NormalizerConfig 定义了上传文件归一化的配置。
type NormalizerConfig struct {
	MaxChars int `yaml:"maxChars" env:"NORMALIZER_MAX_CHARS"` // 归一化文本的最大字符数
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey" env:"GEMINI_API_KEY"` // Gemini API 密钥
	Model  string `yaml:"model"  env:"GEMINI_MODEL"`   // Gemini 模型名称
}

// OpenAIConfig 包含了 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"  env:"OPENAI_API_KEY"`
	Model   string `yaml:"model"   env:"OPENAI_MODEL"`
	BaseURL string `yaml:"baseURL" env:"OPENAI_BASE_URL"` // 为空时使用官方地址
}

// AnthropicConfig 包含了 Anthropic 模型的配置。
type AnthropicConfig struct {
	APIKey    string `yaml:"apiKey"    env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model"     env:"ANTHROPIC_MODEL"`
	BaseURL   string `yaml:"baseURL"   env:"ANTHROPIC_BASE_URL"`
	MaxTokens int64  `yaml:"maxTokens" env:"ANTHROPIC_MAX_TOKENS"`
}

// OllamaConfig 包含了本地 Ollama 服务的配置。
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL" env:"OLLAMA_BASE_URL"`
	Model   string `yaml:"model"   env:"OLLAMA_MODEL"`
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider  string          `yaml:"provider"  env:"LLM_PROVIDER"` // LLM提供商: "gemini", "openai", "anthropic", "ollama"
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Ollama    OllamaConfig    `yaml:"ollama"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"          env:"CIRCUIT_BREAKER_ENABLED"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// LoadConfig 从指定路径加载 YAML 配置（文件不存在时跳过），再用环境变量覆盖，最后填充默认值。
// 它不做凭证校验，调用方应随后调用 Validate。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// 仅依赖环境变量运行。
		case err != nil:
			return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
		default:
			if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
				return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
			}
		}
	}

	// 环境变量优先于文件中的值；未设置的变量不会覆盖已有字段。
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = DefaultGeminiModel
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = DefaultOpenAIModel
	}
	if c.LLM.Anthropic.Model == "" {
		c.LLM.Anthropic.Model = DefaultAnthropicModel
	}
	if c.LLM.Anthropic.MaxTokens <= 0 {
		c.LLM.Anthropic.MaxTokens = 1024
	}
	if c.LLM.Ollama.Model == "" {
		c.LLM.Ollama.Model = DefaultOllamaModel
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Normalizer.MaxChars <= 0 {
		c.Normalizer.MaxChars = DefaultMaxChars
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.App.Name == "" {
		c.App.Name = "QAService"
	}
	cb := &c.Middleware.CircuitBreaker
	if cb.FailureThreshold == 0 {
		cb.FailureThreshold = 5
	}
	if cb.SuccessThreshold == 0 {
		cb.SuccessThreshold = 1
	}
	if cb.Timeout == "" {
		cb.Timeout = "30s"
	}
}

// Validate 检查所选提供商的凭证是否存在。缺失时返回包装了 ErrMissingCredential 的错误，
// 错误信息中包含应设置的环境变量名称。
func (c *AppConfig) Validate() error {
	var key, name string
	switch c.LLM.Provider {
	case "gemini":
		key, name = c.LLM.Gemini.APIKey, "GEMINI_API_KEY"
	case "openai":
		key, name = c.LLM.OpenAI.APIKey, "OPENAI_API_KEY"
	case "anthropic":
		key, name = c.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY"
	case "ollama":
		return nil
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: %s is not set in environment variables", ErrMissingCredential, name)
	}
	return nil
}
