package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"cimapbench/kv"

	"github.com/sugawarayuuta/sonnet"
)

// ForkRequest is written by the parent to a child's stdin.
type ForkRequest struct {
	Config         Config `json:"config"`
	Implementation string `json:"implementation"`
	Mode           Mode   `json:"mode"`
	Fork           int    `json:"fork"`
}

// ForkResponse is written by the child to its stdout.
type ForkResponse struct {
	Trial TrialResult `json:"trial"`
	Error string      `json:"error,omitempty"`
}

// Forker runs one trial in isolation and returns its result.
type Forker interface {
	Fork(ctx context.Context, req ForkRequest) (TrialResult, error)
}

// ExecForker re-executes a binary that answers with ServeFork.
type ExecForker struct {
	Path string
	Args []string
	// Stderr receives the child's logs. Defaults to os.Stderr.
	Stderr io.Writer
}

// Fork starts the child, hands it req and decodes its response. A response
// that decodes wins over the child's exit status. ctx is checked only before
// the child starts; a started trial runs to completion.
func (f *ExecForker) Fork(ctx context.Context, req ForkRequest) (TrialResult, error) {
	if err := ctx.Err(); err != nil {
		return TrialResult{}, fmt.Errorf("fork %d: %w", req.Fork, err)
	}
	in, err := sonnet.Marshal(req)
	if err != nil {
		return TrialResult{}, fmt.Errorf("fork %d: encode request: %w", req.Fork, err)
	}

	var out bytes.Buffer
	cmd := exec.Command(f.Path, f.Args...)
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &out
	cmd.Stderr = f.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	runErr := cmd.Run()

	var resp ForkResponse
	if err := sonnet.Unmarshal(out.Bytes(), &resp); err != nil {
		if runErr != nil {
			return TrialResult{}, fmt.Errorf("fork %d: %w", req.Fork, runErr)
		}
		return TrialResult{}, fmt.Errorf("fork %d: decode response: %w", req.Fork, err)
	}
	if resp.Error != "" {
		return resp.Trial, fmt.Errorf("fork %d: %s", req.Fork, resp.Error)
	}
	return resp.Trial, nil
}

// ServeFork is the child side: it reads one ForkRequest from r, runs the
// trial in-process and writes one ForkResponse to w. The trial's error is
// both reported in the response and returned.
func ServeFork(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read fork request: %w", err)
	}
	var req ForkRequest
	if err := sonnet.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode fork request: %w", err)
	}

	trial, trialErr := serveTrial(req)
	resp := ForkResponse{Trial: trial}
	if trialErr != nil {
		resp.Error = trialErr.Error()
	}
	out, err := sonnet.Marshal(resp)
	if err != nil {
		return errors.Join(trialErr, fmt.Errorf("encode fork response: %w", err))
	}
	if _, err := w.Write(out); err != nil {
		return errors.Join(trialErr, fmt.Errorf("write fork response: %w", err))
	}
	return trialErr
}

func serveTrial(req ForkRequest) (TrialResult, error) {
	cfg := req.Config
	cfg.Forks = 0
	if err := cfg.Validate(); err != nil {
		return TrialResult{Phase: PhaseFailed}, err
	}
	if req.Mode == 0 || req.Mode&(req.Mode-1) != 0 || req.Mode&^All != 0 {
		return TrialResult{Phase: PhaseFailed}, fmt.Errorf("%w: fork needs exactly one mode, got %s", ErrInvalidConfig, req.Mode)
	}
	fs, err := kv.Lookup(req.Implementation)
	if err != nil {
		return TrialResult{Phase: PhaseFailed}, err
	}
	return runTrial(cfg, fs[0], req.Mode)
}
