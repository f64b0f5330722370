package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/prime-website/internal/errors"
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "server config")
	}

	if err := validateBuildConfig(&config.Build); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "build config")
	}

	if err := validateDockerConfig(&config.Docker); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "docker config")
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// 0 lets the OS pick a port, which tests rely on.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if strings.ContainsAny(config.Host, " \t;&|$`<>\"'\\") {
		return fmt.Errorf("host contains invalid characters: %q", config.Host)
	}

	if config.SiteDir == "" {
		return fmt.Errorf("site_dir must not be empty")
	}

	if err := validatePath(config.DataFile); err != nil {
		return fmt.Errorf("invalid data_file: %w", err)
	}

	if err := validatePath(config.ViewsDir); err != nil {
		return fmt.Errorf("invalid views_dir: %w", err)
	}

	if config.View == "" || strings.ContainsAny(config.View, `/\`) {
		return fmt.Errorf("view must be a bare template name, got %q", config.View)
	}

	if config.Slot == "" {
		return fmt.Errorf("slot must not be empty")
	}

	return nil
}

// validateBuildConfig validates build configuration values
func validateBuildConfig(config *BuildConfig) error {
	if config.SourceDir == "" {
		return fmt.Errorf("source_dir must not be empty")
	}

	out := filepath.Clean(config.OutputDir)
	if config.OutputDir == "" || out == "." || out == string(filepath.Separator) {
		return fmt.Errorf("output_dir %q would delete the working tree on clean", config.OutputDir)
	}
	if strings.Contains(out, "..") {
		return errors.ErrPathTraversal(config.OutputDir)
	}
	// The output may live under the source root but never hold it.
	if contains(out, config.SourceDir) {
		return fmt.Errorf("output_dir %q would delete source_dir %q on clean", config.OutputDir, config.SourceDir)
	}

	assets := map[string]AssetConfig{
		"styles":  config.Styles,
		"scripts": config.Scripts,
		"views":   config.Views,
		"data":    config.Data,
		"images":  config.Images.AssetConfig,
	}
	for name, asset := range assets {
		if err := validateAsset(asset); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		input := config.Source(asset.Dir)
		if contains(out, input) || contains(input, out) {
			return fmt.Errorf("output_dir %q overlaps the %s input %q", config.OutputDir, name, input)
		}
	}

	if config.Styles.Bundle == "" || config.Scripts.Bundle == "" {
		return fmt.Errorf("styles and scripts need a bundle file name")
	}

	for _, other := range config.Other {
		if err := validatePath(other); err != nil {
			return fmt.Errorf("invalid other file: %w", err)
		}
	}

	if err := validatePath(config.Dockerfile); err != nil {
		return fmt.Errorf("invalid dockerfile: %w", err)
	}

	if q := config.Images.JPEGQuality; q < 1 || q > 100 {
		return fmt.Errorf("images.jpeg_quality %d is not in valid range 1-100", q)
	}

	if len(config.InstallCommand) == 0 || config.InstallCommand[0] == "" {
		return fmt.Errorf("install_command must name a program")
	}

	return nil
}

func validateAsset(asset AssetConfig) error {
	if err := validatePath(asset.Dir); err != nil {
		return fmt.Errorf("invalid dir: %w", err)
	}
	if err := validatePath(asset.Dest); err != nil {
		return fmt.Errorf("invalid dest: %w", err)
	}
	if _, err := filepath.Match(asset.Pattern, ""); err != nil || asset.Pattern == "" {
		return fmt.Errorf("invalid pattern %q", asset.Pattern)
	}
	return nil
}

func validateDockerConfig(config *DockerConfig) error {
	fields := map[string]string{
		"command":   config.Command,
		"image":     config.Image,
		"container": config.Container,
		"ports":     config.Ports,
	}
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if strings.ContainsAny(value, " \t\n") {
			return fmt.Errorf("%s must not contain whitespace: %q", name, value)
		}
	}
	return nil
}

// contains reports whether child is parent or lies beneath it.
func contains(parent, child string) bool {
	parentAbs, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	childAbs, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(parentAbs, childAbs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validatePath validates a relative file path
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return errors.ErrPathTraversal(path)
	}

	if filepath.IsAbs(cleanPath) {
		return errors.ErrInvalidPath(path)
	}

	return nil
}
