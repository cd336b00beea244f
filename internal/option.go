package internal

// Option is a functional option for configuring the serve runtime.
type Option func(*application)

type application struct {
	config    *Config
	outputDir string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutputDir sets the converted output directory to serve.
func WithOutputDir(dir string) Option {
	return func(a *application) {
		a.outputDir = dir
	}
}
