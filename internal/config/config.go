// Package config provides configuration management for the prime server and
// build pipeline using Viper for flexible configuration loading from files,
// environment variables, and command-line flags.
//
// Every key has a default, so a site with no .prime.yml builds and serves
// with the conventional layout: data/, views/, public/ and a Dockerfile in
// the site root, output written to dist/. The listening port additionally
// honours the conventional PORT variable.
package config

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PRIME"

// Config is the resolved configuration of one prime invocation.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Build  BuildConfig  `mapstructure:"build" yaml:"build"`
	Docker DockerConfig `mapstructure:"docker" yaml:"docker"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// ServerConfig is handed to the inventory server at construction.
type ServerConfig struct {
	Port      int    `mapstructure:"port" yaml:"port"`
	Host      string `mapstructure:"host" yaml:"host"`
	SiteDir   string `mapstructure:"site_dir" yaml:"site_dir"`
	DataFile  string `mapstructure:"data_file" yaml:"data_file"`
	ViewsDir  string `mapstructure:"views_dir" yaml:"views_dir"`
	View      string `mapstructure:"view" yaml:"view"`
	Slot      string `mapstructure:"slot" yaml:"slot"`
	PublicDir string `mapstructure:"public_dir" yaml:"public_dir"`
	Watch     bool   `mapstructure:"watch" yaml:"watch"`
}

// Address returns the host:port pair to listen on.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DataPath resolves the data file against the site directory.
func (s ServerConfig) DataPath() string {
	return filepath.Join(s.SiteDir, s.DataFile)
}

// ViewPath resolves the configured view against the site directory.
func (s ServerConfig) ViewPath() string {
	return filepath.Join(s.SiteDir, s.ViewsDir, s.View+".html")
}

// PublicPath resolves the static directory against the site directory.
func (s ServerConfig) PublicPath() string {
	return filepath.Join(s.SiteDir, s.PublicDir)
}

// AssetConfig describes one directory-tree input of the pipeline.
type AssetConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Dest    string `mapstructure:"dest" yaml:"dest"`
	// Bundle names the merged file for concatenating steps.
	Bundle string `mapstructure:"bundle" yaml:"bundle"`
}

// ImagesConfig is the image input of the pipeline plus its JPEG quality.
type ImagesConfig struct {
	AssetConfig `mapstructure:",squash" yaml:",inline"`
	JPEGQuality int `mapstructure:"jpeg_quality" yaml:"jpeg_quality"`
}

// BuildConfig holds the inputs, outputs and commands of the build pipeline.
type BuildConfig struct {
	SourceDir      string            `mapstructure:"source_dir" yaml:"source_dir"`
	OutputDir      string            `mapstructure:"output_dir" yaml:"output_dir"`
	Styles         AssetConfig       `mapstructure:"styles" yaml:"styles"`
	Scripts        AssetConfig       `mapstructure:"scripts" yaml:"scripts"`
	Views          AssetConfig       `mapstructure:"views" yaml:"views"`
	Data           AssetConfig       `mapstructure:"data" yaml:"data"`
	Images         ImagesConfig      `mapstructure:"images" yaml:"images"`
	Other          []string          `mapstructure:"other" yaml:"other"`
	Dockerfile     string            `mapstructure:"dockerfile" yaml:"dockerfile"`
	Replacements   map[string]string `mapstructure:"replacements" yaml:"replacements"`
	InstallCommand []string          `mapstructure:"install_command" yaml:"install_command"`
}

// Source resolves a path relative to the source directory.
func (b BuildConfig) Source(rel string) string {
	return filepath.Join(b.SourceDir, rel)
}

// Output resolves a path relative to the output directory.
func (b BuildConfig) Output(rel string) string {
	return filepath.Join(b.OutputDir, rel)
}

// DockerConfig names the container runtime, image and container.
type DockerConfig struct {
	Command   string `mapstructure:"command" yaml:"command"`
	Image     string `mapstructure:"image" yaml:"image"`
	Container string `mapstructure:"container" yaml:"container"`
	// Ports is a docker -p mapping such as "3000:3000".
	Ports string `mapstructure:"ports" yaml:"ports"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      3000,
			Host:      "",
			SiteDir:   ".",
			DataFile:  "data/cars.json",
			ViewsDir:  "views",
			View:      "inventory",
			Slot:      "cars",
			PublicDir: "public",
		},
		Build: BuildConfig{
			SourceDir: ".",
			OutputDir: "dist",
			Styles: AssetConfig{
				Dir: "public/css", Pattern: "*.css", Dest: "public/css", Bundle: "main.min.css",
			},
			Scripts: AssetConfig{
				Dir: "public/js", Pattern: "*.js", Dest: "public/js", Bundle: "main.min.js",
			},
			Views: AssetConfig{Dir: "views", Pattern: "*.html", Dest: "views"},
			Data:  AssetConfig{Dir: "data", Pattern: "*", Dest: "data"},
			Images: ImagesConfig{
				AssetConfig: AssetConfig{Dir: "public/images", Pattern: "*", Dest: "public/images"},
				JPEGQuality: 85,
			},
			Other:      []string{"package.json", "package-lock.json"},
			Dockerfile: "Dockerfile",
			Replacements: map[string]string{
				"css": "/css/main.min.css",
				"js":  "/js/main.min.js",
			},
			InstallCommand: []string{"npm", "install"},
		},
		Docker: DockerConfig{
			Command:   "docker",
			Image:     "prime-website",
			Container: "prime-website",
			Ports:     "3000:3000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every default with v so that environment variables
// and flags bound to the same keys are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.site_dir", d.Server.SiteDir)
	v.SetDefault("server.data_file", d.Server.DataFile)
	v.SetDefault("server.views_dir", d.Server.ViewsDir)
	v.SetDefault("server.view", d.Server.View)
	v.SetDefault("server.slot", d.Server.Slot)
	v.SetDefault("server.public_dir", d.Server.PublicDir)
	v.SetDefault("server.watch", d.Server.Watch)

	v.SetDefault("build.source_dir", d.Build.SourceDir)
	v.SetDefault("build.output_dir", d.Build.OutputDir)
	setAssetDefaults(v, "build.styles", d.Build.Styles)
	setAssetDefaults(v, "build.scripts", d.Build.Scripts)
	setAssetDefaults(v, "build.views", d.Build.Views)
	setAssetDefaults(v, "build.data", d.Build.Data)
	setAssetDefaults(v, "build.images", d.Build.Images.AssetConfig)
	v.SetDefault("build.images.jpeg_quality", d.Build.Images.JPEGQuality)
	v.SetDefault("build.other", d.Build.Other)
	v.SetDefault("build.dockerfile", d.Build.Dockerfile)
	v.SetDefault("build.replacements", d.Build.Replacements)
	v.SetDefault("build.install_command", d.Build.InstallCommand)

	v.SetDefault("docker.command", d.Docker.Command)
	v.SetDefault("docker.image", d.Docker.Image)
	v.SetDefault("docker.container", d.Docker.Container)
	v.SetDefault("docker.ports", d.Docker.Ports)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func setAssetDefaults(v *viper.Viper, prefix string, a AssetConfig) {
	v.SetDefault(prefix+".dir", a.Dir)
	v.SetDefault(prefix+".pattern", a.Pattern)
	v.SetDefault(prefix+".dest", a.Dest)
	if a.Bundle != "" {
		v.SetDefault(prefix+".bundle", a.Bundle)
	}
}

// BindEnv enables PRIME_ prefixed overrides on v and maps the bare PORT
// variable onto server.port. PRIME_SERVER_PORT wins when both are set.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
}

// Load reads the configuration held by the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Build.Replacements == nil {
		config.Build.Replacements = map[string]string{}
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}
