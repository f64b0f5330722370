package build

import (
	"github.com/conneroisu/prime-website/internal/config"
)

// DockerCommands builds the container runtime invocations used by the
// docker tasks. Image and container names are fixed by configuration.
type DockerCommands struct {
	config    config.DockerConfig
	outputDir string
}

// NewDockerCommands creates the docker command set for an output directory.
func NewDockerCommands(cfg config.DockerConfig, outputDir string) *DockerCommands {
	return &DockerCommands{config: cfg, outputDir: outputDir}
}

// Build tags an image from the output directory.
func (d *DockerCommands) Build() Command {
	return Command{
		Name: d.config.Command,
		Args: []string{"build", "-t", d.config.Image, "."},
		Dir:  d.outputDir,
	}
}

// Run starts a detached container publishing the configured ports.
func (d *DockerCommands) Run() Command {
	return Command{
		Name: d.config.Command,
		Args: []string{"run", "-d", "-p", d.config.Ports, "--name", d.config.Container, d.config.Image},
	}
}

// Stop stops the container.
func (d *DockerCommands) Stop() Command {
	return Command{Name: d.config.Command, Args: []string{"stop", d.config.Container}}
}

// RemoveContainer deletes the stopped container.
func (d *DockerCommands) RemoveContainer() Command {
	return Command{Name: d.config.Command, Args: []string{"rm", d.config.Container}}
}

// RemoveImage deletes the image.
func (d *DockerCommands) RemoveImage() Command {
	return Command{Name: d.config.Command, Args: []string{"rmi", d.config.Image}}
}
