package runtime

import (
	"io"
	"os"
	"os/exec"
	"time"
)

const stopGrace = 5 * time.Second

type Process interface {
	Pid() int
	// Stop asks the process to exit and kills it after a grace period.
	Stop() error
}

type ProcessStarter interface {
	Start(name string, args []string, output io.Writer) (Process, error)
}

type execStarter struct{}

// ExecStarter runs processes with os/exec.
func ExecStarter() ProcessStarter {
	return execStarter{}
}

func (execStarter) Start(name string, args []string, output io.Writer) (Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		return p.cmd.Process.Kill()
	}
	select {
	case <-p.done:
		return nil
	case <-time.After(stopGrace):
		return p.cmd.Process.Kill()
	}
}
