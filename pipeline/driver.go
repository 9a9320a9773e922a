package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/keroloshany47/retail-etl/constants"
	"github.com/rotisserie/eris"
)

// Stage is one step of the pipeline, run as a child process.
type Stage struct {
	Name string
	Args []string
}

// DefaultStages are the stage subcommands of the etl binary, in run order.
func DefaultStages() []Stage {
	return []Stage{
		{Name: "Extraction", Args: []string{"extract"}},
		{Name: "Data Quality", Args: []string{"quality"}},
		{Name: "Transformation", Args: []string{"transform"}},
		{Name: "Modeling", Args: []string{"model"}},
		{Name: "Visualization", Args: []string{"visualize"}},
	}
}

// Driver runs the stages in order and stops at the first failure.
type Driver struct {
	Executable string
	Stages     []Stage
	RunID      string
	Out        io.Writer
	Logger     *slog.Logger
}

// NewDriver returns a driver that re-runs the current binary for every
// stage under a fresh run id.
func NewDriver(out io.Writer, logger *slog.Logger) (*Driver, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve executable")
	}
	return &Driver{
		Executable: exe,
		Stages:     DefaultStages(),
		RunID:      uuid.NewString(),
		Out:        out,
		Logger:     logger,
	}, nil
}

// Run executes every stage. The output of each stage is reprinted to Out
// after it exits.
func (d *Driver) Run(ctx context.Context) error {
	d.Logger.Info("Starting pipeline", "run_id", d.RunID, "stages", len(d.Stages))

	for _, stage := range d.Stages {
		fmt.Fprintf(d.Out, "\n=== Running %s ===\n", stage.Name)

		stdout, stderr, err := d.runStage(ctx, stage)
		fmt.Fprint(d.Out, stdout)
		if strings.TrimSpace(stderr) != "" {
			fmt.Fprintf(d.Out, "Errors in %s:\n%s", stage.Name, stderr)
		}
		if err != nil {
			fmt.Fprintf(d.Out, "%s failed. Stopping execution.\n", stage.Name)
			d.Logger.Error("Stage failed", "stage", stage.Name, "run_id", d.RunID, "error", err)
			return eris.Wrapf(err, "stage %s failed", stage.Name)
		}
	}

	fmt.Fprintln(d.Out, "\nAll stages ran successfully!")
	d.Logger.Info("Pipeline finished", "run_id", d.RunID)
	return nil
}

func (d *Driver) runStage(ctx context.Context, stage Stage) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, d.Executable, stage.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), constants.RunIDEnv+"="+d.RunID)

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
