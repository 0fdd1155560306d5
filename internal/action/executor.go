package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/defs"
)

// Executor performs the admin action on the managed client
type Executor interface {
	Execute(action defs.Action) error
}

// NewExecutor returns a hook executor when a command is configured, otherwise the action is only logged
func NewExecutor(cfg config.Executor, log *zap.SugaredLogger) Executor {
	if len(cfg.Command) == 0 {
		return &logExecutor{
			log: log,
		}
	}

	return &hookExecutor{
		command: cfg.Command,
		args:    cfg.Args,
		timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		log:     log,
	}
}

type logExecutor struct {
	log *zap.SugaredLogger
}

func (e *logExecutor) Execute(action defs.Action) error {
	base := action.Base()
	e.log.Infow("Executor: admin action executed", "actionID", base.ID, "kind", action.Kind(), "resource", base.Resource)
	return nil
}

type hookExecutor struct {
	command string
	args    []string
	timeout time.Duration
	log     *zap.SugaredLogger
}

// Execute runs the hook with the action JSON on stdin
func (e *hookExecutor) Execute(action defs.Action) error {
	base := action.Base()

	data, err := json.Marshal(action)
	if err != nil {
		return errors.Wrap(err, "encode action")
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("ADMIN_ACTION_ID=%s", base.ID),
		fmt.Sprintf("ADMIN_ACTION_KIND=%s", action.Kind()),
		fmt.Sprintf("ADMIN_ACTION_RESOURCE=%s", base.Resource),
	)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		e.log.Debugf("Executor: hook output for action `%s`: %s", base.ID, string(out))
	}
	if err != nil {
		e.log.Errorf("Executor: hook failed for action `%s`, err: %v", base.ID, err)
		return errors.Wrapf(err, "hook failed for action `%s`", base.ID)
	}

	e.log.Infof("Executor: action `%s` executed by hook", base.ID)
	return nil
}
