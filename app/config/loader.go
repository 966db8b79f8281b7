package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "AIINFRA"

// defaultArtifactPath is the allow-list entry standing for the generated
// file; it is replaced by the configured artifact path.
const defaultArtifactPath = "env/main.tf"

// Load reads configuration for the repository rooted at dir: an optional
// .env file, an optional aiinfra.yaml, then AIINFRA_* environment variables.
func Load(dir string) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}

	// Real environment variables win over .env.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetConfigName("aiinfra")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("llm.base_url", "http://127.0.0.1:11434")
	v.SetDefault("llm.model", "phi3:mini")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.num_predict", 220)
	v.SetDefault("llm.timeout", 300*time.Second)

	v.SetDefault("resolver.max_retries", 3)

	v.SetDefault("defaults.rg_name", "ai-rg")
	v.SetDefault("defaults.location", "Central India")
	v.SetDefault("defaults.vm_name", "ai-vm")
	v.SetDefault("defaults.vm_size", "Standard_B1s")
	v.SetDefault("defaults.storage_prefix", "aistorage")

	v.SetDefault("paths.repo", dir)
	v.SetDefault("paths.env_dir", "env")
	v.SetDefault("paths.tf_file", "main.tf")
	v.SetDefault("paths.templates", map[string]string{
		"create_vm":      "templates/vm.tf.tpl",
		"create_storage": "templates/storage.tf.tpl",
	})

	v.SetDefault("validator.terraform_bin", "terraform")
	v.SetDefault("validator.skip_static", false)

	v.SetDefault("publisher.git_bin", "git")
	v.SetDefault("publisher.remote", "origin")
	v.SetDefault("publisher.branch", "main")
	v.SetDefault("publisher.paths", []string{".gitignore", defaultArtifactPath, "templates"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.textfile", "")
}

func (c *Config) resolvePaths() {
	if !filepath.IsAbs(c.Paths.EnvDir) {
		c.Paths.EnvDir = filepath.Join(c.Paths.Repo, c.Paths.EnvDir)
	}
	for action, p := range c.Paths.Templates {
		if !filepath.IsAbs(p) {
			c.Paths.Templates[action] = filepath.Join(c.Paths.Repo, p)
		}
	}
	c.Publisher.Paths = c.publishPaths()
}

// publishPaths makes sure the generated file is on the allow-list. An
// artifact outside the repository cannot be staged and is left out.
func (c *Config) publishPaths() []string {
	artifact, ok := c.ArtifactRelPath()
	paths := make([]string, 0, len(c.Publisher.Paths)+1)
	found := false
	for _, p := range c.Publisher.Paths {
		if p == defaultArtifactPath {
			if !ok {
				continue
			}
			p = artifact
		}
		if p == artifact {
			if found {
				continue
			}
			found = true
		}
		paths = append(paths, p)
	}
	if ok && !found {
		paths = append(paths, artifact)
	}
	return paths
}

// ArtifactRelPath is TFPath relative to the repository, slash separated.
// It reports false when the file lies outside the repository.
func (c *Config) ArtifactRelPath() (string, bool) {
	rel, err := filepath.Rel(c.Paths.Repo, c.TFPath())
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// TFPath is the full path of the generated Terraform file.
func (c *Config) TFPath() string {
	return filepath.Join(c.Paths.EnvDir, c.Paths.TFFile)
}

func (c *Config) Validate() error {
	var errs []error
	if c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("llm.base_url is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	if c.LLM.NumPredict <= 0 {
		errs = append(errs, errors.New("llm.num_predict must be positive"))
	}
	if c.Resolver.MaxRetries <= 0 {
		errs = append(errs, errors.New("resolver.max_retries must be positive"))
	}
	if c.Defaults.RGName == "" || c.Defaults.Location == "" || c.Defaults.VMName == "" || c.Defaults.VMSize == "" {
		errs = append(errs, errors.New("defaults must not be empty"))
	}
	if c.Paths.TFFile == "" || filepath.Base(c.Paths.TFFile) != c.Paths.TFFile {
		errs = append(errs, fmt.Errorf("paths.tf_file must be a file name, got %q", c.Paths.TFFile))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
