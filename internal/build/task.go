// Package build implements the static-asset pipeline: a fixed set of named
// steps grouped into composite tasks and executed by a Runner that honours
// series, parallel and best-effort grouping.
package build

import (
	"context"
	"fmt"
	"strings"
)

// Mode says how a task runs its children.
type Mode int

const (
	// ModeStep is a leaf task with an Action.
	ModeStep Mode = iota
	// ModeSeries runs children one after another and stops at the first failure.
	ModeSeries
	// ModeParallel runs children concurrently and waits for all of them.
	ModeParallel
	// ModeBestEffort runs every child in order regardless of failures.
	ModeBestEffort
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeStep:
		return "step"
	case ModeSeries:
		return "series"
	case ModeParallel:
		return "parallel"
	case ModeBestEffort:
		return "best-effort"
	default:
		return "unknown"
	}
}

// Action is the unit of work of a step.
type Action func(ctx context.Context) error

// Task is a named step or a composition of tasks. Tasks are static
// descriptors; the same *Task may appear under several composites.
type Task struct {
	Name        string
	Description string
	Mode        Mode
	Action      Action
	Children    []*Task
	// Tolerant failures are logged and then swallowed by the runner.
	Tolerant bool
}

// Step creates a leaf task.
func Step(name, description string, action Action) *Task {
	return &Task{Name: name, Description: description, Mode: ModeStep, Action: action}
}

// Series creates a task whose children run strictly in order.
func Series(name, description string, children ...*Task) *Task {
	return &Task{Name: name, Description: description, Mode: ModeSeries, Children: children}
}

// Parallel creates a task whose children have no ordering among themselves.
func Parallel(name, description string, children ...*Task) *Task {
	return &Task{Name: name, Description: description, Mode: ModeParallel, Children: children}
}

// BestEffort creates a task whose children all run even when earlier ones fail.
func BestEffort(name, description string, children ...*Task) *Task {
	return &Task{Name: name, Description: description, Mode: ModeBestEffort, Children: children}
}

// Tolerate marks the task's failure as non-fatal and returns it.
func (t *Task) Tolerate() *Task {
	t.Tolerant = true
	return t
}

// Validate checks that the task tree is well formed.
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task without a name")
	}
	switch t.Mode {
	case ModeStep:
		if t.Action == nil {
			return fmt.Errorf("step %q has no action", t.Name)
		}
		if len(t.Children) > 0 {
			return fmt.Errorf("step %q must not have children", t.Name)
		}
	case ModeSeries, ModeParallel, ModeBestEffort:
		if len(t.Children) == 0 {
			return fmt.Errorf("%s task %q has no children", t.Mode, t.Name)
		}
		for _, child := range t.Children {
			if child == nil {
				return fmt.Errorf("%s task %q has a nil child", t.Mode, t.Name)
			}
			if err := child.Validate(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("task %q has unknown mode %d", t.Name, t.Mode)
	}
	return nil
}

// Steps returns the names of the leaf steps in declaration order.
func (t *Task) Steps() []string {
	if t.Mode == ModeStep {
		return []string{t.Name}
	}
	var names []string
	for _, child := range t.Children {
		names = append(names, child.Steps()...)
	}
	return names
}

// Tree renders the composition, one task per line.
func (t *Task) Tree() string {
	var b strings.Builder
	t.writeTree(&b, 0)
	return b.String()
}

func (t *Task) writeTree(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(t.Name)
	if t.Mode != ModeStep {
		fmt.Fprintf(b, " (%s)", t.Mode)
	}
	if t.Tolerant {
		b.WriteString(" [tolerant]")
	}
	b.WriteString("\n")
	for _, child := range t.Children {
		child.writeTree(b, depth+1)
	}
}
