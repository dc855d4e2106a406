package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Provider  ProviderConfig  `json:"provider"`
	Workflow  WorkflowConfig  `json:"workflow"`
	Tools     ToolsConfig     `json:"tools"`
	Artifacts ArtifactsConfig `json:"artifacts"`
	UI        UIConfig        `json:"ui"`
	Log       LogConfig       `json:"log"`
}

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	WeatherSourceStatic = "static"
	WeatherSourceWttr   = "wttr"
)

type ProviderConfig struct {
	Name           string `json:"name"`            // Default: "anthropic"
	Model          string `json:"model"`           // Default: "" (provider default)
	MaxTokens      int    `json:"max_tokens"`      // Default: 4000
	SystemPrompt   string `json:"system_prompt"`   // Default: DefaultSystemPrompt
	BaseURL        string `json:"base_url"`        // Default: "" (SDK default)
	TimeoutSeconds int    `json:"timeout_seconds"` // Default: 120
	MaxRetries     int    `json:"max_retries"`     // Default: 2
	Stream         bool   `json:"stream"`          // Default: true
}

type WorkflowConfig struct {
	MaxRoundTrips   int `json:"max_round_trips"`  // Default: 10
	ToolConcurrency int `json:"tool_concurrency"` // Default: 4
}

type ToolsConfig struct {
	// Calculator
	CalculatorMaxLength int `json:"calculator_max_length"` // Default: 256

	// Weather
	WeatherSource         string `json:"weather_source"`          // Default: "static"
	WeatherEndpoint       string `json:"weather_endpoint"`        // Default: "https://wttr.in"
	WeatherTimeoutSeconds int    `json:"weather_timeout_seconds"` // Default: 10
}

type ArtifactsConfig struct {
	Dir      string `json:"dir"`       // Default: "" (per-process temp dir)
	AutoOpen bool   `json:"auto_open"` // Default: false
}

type UIConfig struct {
	TickIntervalMs int    `json:"tick_interval_ms"` // Default: 100
	MarkdownStyle  string `json:"markdown_style"`   // Default: "dark"
	ColorPrimary   string `json:"color_primary"`    // Default: "63"
	ColorUser      string `json:"color_user"`       // Default: "39"
	ColorTool      string `json:"color_tool"`       // Default: "214"
	ColorError     string `json:"color_error"`      // Default: "196"
	ColorMuted     string `json:"color_muted"`      // Default: "241"
}

type LogConfig struct {
	Path  string `json:"path"`  // Default: "" (discard)
	Level string `json:"level"` // Default: "info"
}

// DefaultSystemPrompt tells the model how to embed artifacts.
const DefaultSystemPrompt = `You are a helpful assistant running in a terminal chat client.
When you produce a self-contained web page, UI component or script, wrap it in an artifact block:
<artifact type="text/html" title="Short title" identifier="kebab-case-id">
...content...
</artifact>
Use type "text/html" for HTML pages, "application/vnd.ant.react" for React components
(define a component named App) and "text/javascript" or "text/typescript" for scripts.
Keep explanations outside the artifact block.`

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:           ProviderAnthropic,
			MaxTokens:      4000,
			SystemPrompt:   DefaultSystemPrompt,
			TimeoutSeconds: 120,
			MaxRetries:     2,
			Stream:         true,
		},
		Workflow: WorkflowConfig{
			MaxRoundTrips:   10,
			ToolConcurrency: 4,
		},
		Tools: ToolsConfig{
			CalculatorMaxLength:   256,
			WeatherSource:         WeatherSourceStatic,
			WeatherEndpoint:       "https://wttr.in",
			WeatherTimeoutSeconds: 10,
		},
		UI: UIConfig{
			TickIntervalMs: 100,
			MarkdownStyle:  "dark",
			ColorPrimary:   "63",
			ColorUser:      "39",
			ColorTool:      "214",
			ColorError:     "196",
			ColorMuted:     "241",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
