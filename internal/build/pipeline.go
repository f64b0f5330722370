package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conneroisu/prime-website/internal/config"
	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
)

// Pipeline holds the step implementations of the asset build. Every step
// reads from the source directory and writes to a path of its own under the
// output directory.
type Pipeline struct {
	config    config.BuildConfig
	docker    *DockerCommands
	executor  Executor
	bundler   *AssetBundler
	optimizer *ImageOptimizer
	logger    logging.Logger
	registry  *Registry
}

// NewPipeline wires the steps for cfg. Commands go through executor.
func NewPipeline(cfg *config.Config, executor Executor, logger logging.Logger) *Pipeline {
	p := &Pipeline{
		config:    cfg.Build,
		docker:    NewDockerCommands(cfg.Docker, cfg.Build.OutputDir),
		executor:  executor,
		bundler:   NewAssetBundler(),
		optimizer: NewImageOptimizer(cfg.Build.Images.JPEGQuality),
		logger:    logger.WithComponent("build"),
	}
	p.registry = p.newRegistry()
	return p
}

// Registry returns the named tasks of the pipeline.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Clean deletes the output directory and everything in it.
func (p *Pipeline) Clean(ctx context.Context) error {
	if err := os.RemoveAll(p.config.OutputDir); err != nil {
		return errors.WrapIO(err, errors.ErrCodeStepFailed, "remove output directory", p.config.OutputDir)
	}
	return nil
}

// Styles merges and minifies the stylesheets.
func (p *Pipeline) Styles(ctx context.Context) error {
	return p.bundle(ctx, p.config.Styles, MediaTypeCSS)
}

// Scripts merges and minifies the scripts.
func (p *Pipeline) Scripts(ctx context.Context) error {
	return p.bundle(ctx, p.config.Scripts, MediaTypeJavaScript)
}

func (p *Pipeline) bundle(ctx context.Context, asset config.AssetConfig, mediaType string) error {
	files, err := matchFiles(p.config.Source(asset.Dir), asset.Pattern)
	if err != nil {
		return err
	}
	dest := filepath.Join(p.config.Output(asset.Dest), asset.Bundle)
	if len(files) == 0 {
		p.logger.Warn(ctx, nil, "No input files matched", "dir", asset.Dir, "pattern", asset.Pattern)
		// A bundle from an earlier run would outlive its sources.
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return errors.WrapIO(err, errors.ErrCodeStepFailed, "remove stale bundle", dest)
		}
		return nil
	}

	if err := p.bundler.Bundle(ctx, files, mediaType, dest); err != nil {
		return err
	}
	p.logger.Debug(ctx, "Wrote bundle", "path", dest, "inputs", len(files))
	return nil
}

// CopyOther copies the fixed file list to the output root. Every listed file
// must exist.
func (p *Pipeline) CopyOther(ctx context.Context) error {
	for _, name := range p.config.Other {
		src := p.config.Source(name)
		if err := copyFile(src, p.config.Output(filepath.Base(name))); err != nil {
			if os.IsNotExist(err) {
				return errors.NewIOError(errors.ErrCodeFileNotFound, "file not found", err).WithPath(src)
			}
			return fmt.Errorf("copy %s: %w", src, err)
		}
	}
	return nil
}

// ReplaceURLs rewrites build blocks in the views and writes them to the
// output views directory.
func (p *Pipeline) ReplaceURLs(ctx context.Context) error {
	root := p.config.Source(p.config.Views.Dir)
	files, err := matchFiles(root, p.config.Views.Pattern)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return err
		}
		out := ReplaceBlocks(src, p.config.Replacements)
		if err := writeFile(filepath.Join(p.config.Output(p.config.Views.Dest), rel), out); err != nil {
			return err
		}
	}
	return nil
}

// CopyData copies the data tree verbatim.
func (p *Pipeline) CopyData(ctx context.Context) error {
	_, err := copyTree(
		p.config.Source(p.config.Data.Dir),
		p.config.Data.Pattern,
		p.config.Output(p.config.Data.Dest),
	)
	return err
}

// CopyImages optimizes every image into the output images directory. A file
// that fails is logged and skipped; the joined failures are returned once all
// files have been attempted.
func (p *Pipeline) CopyImages(ctx context.Context) error {
	images := p.config.Images
	root := p.config.Source(images.Dir)
	files, err := matchFiles(root, images.Pattern)
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.copyImage(root, file); err != nil {
			p.logger.Error(ctx, err, "Error in copyImages task", "file", file)
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (p *Pipeline) copyImage(root, file string) error {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	optimized, err := p.optimizer.Optimize(file, data)
	if err != nil {
		return errors.NewBuildError(errors.ErrCodeImageOptimize, "optimize image", err).WithPath(file)
	}
	return writeFile(filepath.Join(p.config.Output(p.config.Images.Dest), rel), optimized)
}

// CopyDockerfile copies the deployment manifest to the output root.
func (p *Pipeline) CopyDockerfile(ctx context.Context) error {
	src := p.config.Source(p.config.Dockerfile)
	if err := copyFile(src, p.config.Output(filepath.Base(p.config.Dockerfile))); err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileNotFound, "copy deployment manifest", src)
	}
	return nil
}

// NpmInstall runs the dependency installer inside the output directory.
func (p *Pipeline) NpmInstall(ctx context.Context) error {
	install := p.config.InstallCommand
	return p.execute(ctx, Command{Name: install[0], Args: install[1:], Dir: p.config.OutputDir})
}

// DockerBuild builds the image from the output directory.
func (p *Pipeline) DockerBuild(ctx context.Context) error {
	p.logger.Info(ctx, "Building Docker image...")
	return p.execute(ctx, p.docker.Build())
}

// DockerRun starts the container.
func (p *Pipeline) DockerRun(ctx context.Context) error {
	p.logger.Info(ctx, "Running Docker container...")
	return p.execute(ctx, p.docker.Run())
}

// DockerStop stops the container.
func (p *Pipeline) DockerStop(ctx context.Context) error {
	return p.execute(ctx, p.docker.Stop())
}

// DockerRemoveContainer removes the container.
func (p *Pipeline) DockerRemoveContainer(ctx context.Context) error {
	return p.execute(ctx, p.docker.RemoveContainer())
}

// DockerRemoveImage removes the image.
func (p *Pipeline) DockerRemoveImage(ctx context.Context) error {
	return p.execute(ctx, p.docker.RemoveImage())
}

func (p *Pipeline) execute(ctx context.Context, cmd Command) error {
	_, err := p.executor.Execute(ctx, cmd)
	return err
}

// WatchTarget ties a watched source tree to the task that rebuilds its
// output.
type WatchTarget struct {
	Dir     string
	Pattern string
	Task    string
}

// WatchTargets lists the source trees watch mode observes.
func (p *Pipeline) WatchTargets() []WatchTarget {
	target := func(a config.AssetConfig, task string) WatchTarget {
		return WatchTarget{Dir: p.config.Source(a.Dir), Pattern: a.Pattern, Task: task}
	}
	return []WatchTarget{
		target(p.config.Styles, "styles"),
		target(p.config.Scripts, "scripts"),
		target(p.config.Views, "replaceUrls"),
		target(p.config.Data, "copyData"),
		target(p.config.Images.AssetConfig, "copyImages"),
	}
}
