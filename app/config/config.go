package config

import "time"

type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Validator ValidatorConfig `mapstructure:"validator"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	NumPredict  int           `mapstructure:"num_predict"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ResolverConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// DefaultsConfig holds values for required fields the model left empty.
type DefaultsConfig struct {
	RGName        string `mapstructure:"rg_name"`
	Location      string `mapstructure:"location"`
	VMName        string `mapstructure:"vm_name"`
	VMSize        string `mapstructure:"vm_size"`
	StoragePrefix string `mapstructure:"storage_prefix"`
}

// PathsConfig locates the infrastructure repository. Relative paths are
// resolved against Repo.
type PathsConfig struct {
	Repo      string            `mapstructure:"repo"`
	EnvDir    string            `mapstructure:"env_dir"`
	TFFile    string            `mapstructure:"tf_file"`
	Templates map[string]string `mapstructure:"templates"`
}

type ValidatorConfig struct {
	TerraformBin string `mapstructure:"terraform_bin"`
	SkipStatic   bool   `mapstructure:"skip_static"`
}

type PublisherConfig struct {
	GitBin string   `mapstructure:"git_bin"`
	Remote string   `mapstructure:"remote"`
	Branch string   `mapstructure:"branch"`
	Paths  []string `mapstructure:"paths"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console|json
}

type MetricsConfig struct {
	// Textfile, when set, receives a metrics dump at the end of the run.
	Textfile string `mapstructure:"textfile"`
}
