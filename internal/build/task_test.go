package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noop(context.Context) error { return nil }

func TestModeString(t *testing.T) {
	assert.Equal(t, "step", ModeStep.String())
	assert.Equal(t, "series", ModeSeries.String())
	assert.Equal(t, "parallel", ModeParallel.String())
	assert.Equal(t, "best-effort", ModeBestEffort.String())
	assert.Equal(t, "unknown", Mode(99).String())
}

func TestTaskValidate(t *testing.T) {
	testCases := []struct {
		name    string
		task    *Task
		wantErr string
	}{
		{"valid step", Step("a", "", noop), ""},
		{"valid tree", Series("s", "", Step("a", "", noop), Parallel("p", "", Step("b", "", noop))), ""},
		{"unnamed", Step("", "", noop), "without a name"},
		{"step without action", Step("a", "", nil), "has no action"},
		{"empty series", Series("s", ""), "has no children"},
		{"nil child", Parallel("p", "", nil), "nil child"},
		{"invalid grandchild", Series("s", "", BestEffort("b", "", Step("x", "", nil))), `"x" has no action`},
		{"step with children", &Task{Name: "a", Action: noop, Children: []*Task{Step("b", "", noop)}}, "must not have children"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestTaskTree(t *testing.T) {
	task := Series("build", "",
		Step("clean", "", noop),
		Parallel("assets", "", Step("styles", "", noop), Step("copyImages", "", noop).Tolerate()),
	)

	expected := "build (series)\n" +
		"  clean\n" +
		"  assets (parallel)\n" +
		"    styles\n" +
		"    copyImages [tolerant]\n"
	assert.Equal(t, expected, task.Tree())
	assert.Equal(t, []string{"clean", "styles", "copyImages"}, task.Steps())
}
