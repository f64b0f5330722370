package build

import (
	"fmt"
	"sync"

	"github.com/conneroisu/prime-website/internal/errors"
)

// DefaultTask is run when no task is named.
const DefaultTask = "build"

// Registry holds tasks by name in registration order.
type Registry struct {
	tasks map[string]*Task
	order []string
	mutex sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Register adds task under its name.
func (r *Registry) Register(task *Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.tasks[task.Name]; exists {
		return fmt.Errorf("task %q already registered", task.Name)
	}
	r.tasks[task.Name] = task
	r.order = append(r.order, task.Name)
	return nil
}

// Get looks a task up by name.
func (r *Registry) Get(name string) (*Task, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	task, ok := r.tasks[name]
	if !ok {
		return nil, errors.ErrTaskNotFound(name)
	}
	return task, nil
}

// All returns the tasks in registration order.
func (r *Registry) All() []*Task {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tasks := make([]*Task, 0, len(r.order))
	for _, name := range r.order {
		tasks = append(tasks, r.tasks[name])
	}
	return tasks
}

// newRegistry declares the step table and the composite tasks.
func (p *Pipeline) newRegistry() *Registry {
	clean := Step("clean", "Delete the output directory", p.Clean)
	styles := Step("styles", "Concatenate and minify stylesheets", p.Styles)
	scripts := Step("scripts", "Concatenate and minify scripts", p.Scripts)
	copyOther := Step("copyOther", "Copy the fixed file list to the output root", p.CopyOther)
	replaceURLs := Step("replaceUrls", "Rewrite asset URLs in views", p.ReplaceURLs)
	copyData := Step("copyData", "Copy the data directory", p.CopyData)
	copyImages := Step("copyImages", "Optimize and copy images", p.CopyImages).Tolerate()
	copyDockerfile := Step("copyDockerfile", "Copy the Dockerfile", p.CopyDockerfile)
	npmInstall := Step("npmInstall", "Install dependencies in the output directory", p.NpmInstall)
	dockerBuild := Step("dockerBuild", "Build the container image", p.DockerBuild)
	dockerRun := Step("dockerRun", "Run the container", p.DockerRun)
	dockerStop := Step("dockerStop", "Stop the container", p.DockerStop)
	dockerRemoveContainer := Step("dockerRemoveContainer", "Remove the container", p.DockerRemoveContainer)
	dockerRemoveImage := Step("dockerRemoveImage", "Remove the image", p.DockerRemoveImage)

	build := Series(DefaultTask, "Clean, build every asset, then install dependencies",
		clean,
		Parallel("assets", "Asset steps with no ordering among themselves",
			styles, scripts, copyOther, replaceURLs, copyData, copyImages, copyDockerfile,
		),
		npmInstall,
	)
	docker := Series("docker", "Build, then build and run the container image",
		build, dockerBuild, dockerRun,
	)
	dockerClean := BestEffort("dockerClean", "Stop and remove the container and image",
		dockerStop, dockerRemoveContainer, dockerRemoveImage,
	)

	r := NewRegistry()
	for _, task := range []*Task{
		clean, styles, scripts, copyOther, replaceURLs, copyData, copyImages, copyDockerfile,
		npmInstall, build, dockerBuild, dockerRun, dockerStop, dockerRemoveContainer,
		dockerRemoveImage, dockerClean, docker,
	} {
		// Names above are unique and every tree is well formed.
		if err := r.Register(task); err != nil {
			panic(err)
		}
	}
	return r
}
