package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// JobState describes a job lifecycle phase.
type JobState string

const (
	// JobStatePending means the job has not started yet.
	JobStatePending JobState = "pending"
	// JobStateRunning means the process is executing.
	JobStateRunning JobState = "running"
	// JobStateSucceeded means the process exited with code 0.
	JobStateSucceeded JobState = "succeeded"
	// JobStateFailed means the process exited with a non-zero code or could not start.
	JobStateFailed JobState = "failed"
	// JobStateCanceled means the job was canceled before completion.
	JobStateCanceled JobState = "canceled"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateSucceeded, JobStateFailed, JobStateCanceled:
		return true
	default:
		return false
	}
}

// Request describes one tool invocation.
type Request struct {
	// Tool is the binary to run, as an absolute path or a PATH name.
	Tool string

	// Args are passed positionally; nothing is shell-interpreted.
	Args []string

	// Dir is the working directory. Empty means the caller's directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// OnDone, if set, runs on the job's goroutine after the final state
	// is recorded and before Done is closed, so a waiter that wakes up
	// observes a fully handled job. The callback receives the job it
	// was registered on and nothing else, so concurrent jobs stay
	// independent. It runs outside the concurrency cap and may dispatch
	// follow-up jobs, but must not call Wait on its own job.
	OnDone func(*Job)
}

// Job tracks one tool invocation.
type Job struct {
	// ID uniquely identifies the job.
	ID string

	// Request is the originating request.
	Request Request

	// State is the current lifecycle phase.
	State JobState

	// StartTime is when the process started.
	StartTime time.Time

	// EndTime is when the job reached a terminal state.
	EndTime time.Time

	// ExitCode is the process exit code. -1 until known.
	ExitCode int

	// Err holds the failure cause, if any.
	Err error

	cmd      *exec.Cmd
	cancel   context.CancelFunc
	capture  *Capture
	done     chan struct{}
	doneOnce sync.Once

	mu sync.RWMutex
}

// Done returns a channel closed exactly once, after the job has reached
// a terminal state and its OnDone callback has returned.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or the context is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the job. The process group is killed so children of the
// tool do not linger.
func (j *Job) Cancel() {
	j.mu.RLock()
	cancel := j.cancel
	cmd := j.cmd
	j.mu.RUnlock()

	if cancel != nil {
		cancel()
	}

	if cmd != nil && cmd.Process != nil {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

// IsRunning reports whether the process is currently executing.
func (j *Job) IsRunning() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.State == JobStateRunning
}

// Duration returns how long the job has been running, or took to run.
func (j *Job) Duration() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.StartTime.IsZero() {
		return 0
	}
	if j.EndTime.IsZero() {
		return time.Since(j.StartTime)
	}
	return j.EndTime.Sub(j.StartTime)
}

// Stdout returns the captured standard output.
func (j *Job) Stdout() string {
	return j.capture.Content(StreamStdout)
}

// Stderr returns the captured standard error.
func (j *Job) Stderr() string {
	return j.capture.Content(StreamStderr)
}

// StdoutLines returns captured standard output lines.
func (j *Job) StdoutLines() []string {
	return j.capture.StreamLines(StreamStdout)
}

// StderrLines returns captured standard error lines.
func (j *Job) StderrLines() []string {
	return j.capture.StreamLines(StreamStderr)
}

// Truncated reports whether captured output was dropped.
func (j *Job) Truncated() bool {
	return j.capture.Truncated()
}

func (j *Job) finish(state JobState, exitCode int, err error) {
	j.mu.Lock()
	j.State = state
	j.ExitCode = exitCode
	j.Err = err
	j.EndTime = time.Now()
	j.mu.Unlock()
}

func (j *Job) markDone() {
	j.doneOnce.Do(func() {
		close(j.done)
	})
}

// RunnerConfig configures the job dispatcher.
type RunnerConfig struct {
	// CaptureLimit bounds retained output per job in bytes.
	CaptureLimit int

	// MaxConcurrent limits simultaneously running jobs.
	MaxConcurrent int
}

// DefaultRunnerConfig returns the default runner configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		CaptureLimit:  DefaultCaptureLimit,
		MaxConcurrent: 4,
	}
}

// Runner dispatches tool invocations without blocking the caller.
type Runner struct {
	config RunnerConfig

	jobs   map[string]*Job
	jobsMu sync.RWMutex

	sem chan struct{}

	idCounter   int64
	idCounterMu sync.Mutex
}

// NewRunner creates a runner with the given configuration.
func NewRunner(config RunnerConfig) *Runner {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	if config.CaptureLimit <= 0 {
		config.CaptureLimit = DefaultCaptureLimit
	}

	return &Runner{
		config: config,
		jobs:   make(map[string]*Job),
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Run dispatches a tool invocation and returns immediately.
//
// The returned job is already registered with the runner; its Done channel
// closes once it has reached a terminal state and OnDone (if set) has
// returned.
func (r *Runner) Run(ctx context.Context, req Request) (*Job, error) {
	if req.Tool == "" {
		return nil, ErrToolNotResolved
	}

	jobCtx, cancel := context.WithCancel(ctx)

	job := &Job{
		ID:       r.generateID(),
		Request:  req,
		State:    JobStatePending,
		ExitCode: -1,
		cancel:   cancel,
		capture:  NewCapture(r.config.CaptureLimit),
		done:     make(chan struct{}),
	}

	r.jobsMu.Lock()
	r.jobs[job.ID] = job
	r.jobsMu.Unlock()

	go func() {
		r.runJob(jobCtx, job)
		r.complete(job)
	}()

	return job, nil
}

// Get returns a job by ID.
func (r *Runner) Get(id string) (*Job, bool) {
	r.jobsMu.RLock()
	defer r.jobsMu.RUnlock()

	job, ok := r.jobs[id]
	return job, ok
}

// Jobs returns all registered jobs.
func (r *Runner) Jobs() []*Job {
	r.jobsMu.RLock()
	defer r.jobsMu.RUnlock()

	result := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		result = append(result, job)
	}
	return result
}

// Cancel stops the job with the given ID.
func (r *Runner) Cancel(id string) error {
	job, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	job.Cancel()
	return nil
}

// CancelAll stops every registered job.
func (r *Runner) CancelAll() {
	for _, job := range r.Jobs() {
		job.Cancel()
	}
}

// CleanupFinished removes terminal jobs from the registry and returns
// how many were removed.
func (r *Runner) CleanupFinished() int {
	r.jobsMu.Lock()
	defer r.jobsMu.Unlock()

	count := 0
	for id, job := range r.jobs {
		job.mu.RLock()
		terminal := job.State.Terminal()
		job.mu.RUnlock()

		if terminal {
			delete(r.jobs, id)
			count++
		}
	}
	return count
}

func (r *Runner) generateID() string {
	r.idCounterMu.Lock()
	r.idCounter++
	counter := r.idCounter
	r.idCounterMu.Unlock()

	return fmt.Sprintf("job-%d-%d", time.Now().UnixNano(), counter)
}

func (r *Runner) runJob(ctx context.Context, job *Job) {
	// Respect the concurrency cap.
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		job.finish(JobStateCanceled, -1, ctx.Err())
		return
	}

	cmd := exec.CommandContext(ctx, job.Request.Tool, job.Request.Args...)
	if job.Request.Dir != "" {
		cmd.Dir = job.Request.Dir
	}
	if len(job.Request.Env) > 0 {
		cmd.Env = append(os.Environ(), job.Request.Env...)
	}

	// Own process group, so Cancel can kill the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		job.finish(JobStateFailed, -1, fmt.Errorf("stdout pipe: %w", err))
		return
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		job.finish(JobStateFailed, -1, fmt.Errorf("stderr pipe: %w", err))
		return
	}

	job.mu.Lock()
	job.State = JobStateRunning
	job.StartTime = time.Now()
	job.mu.Unlock()

	if err := cmd.Start(); err != nil {
		job.finish(JobStateFailed, -1, fmt.Errorf("start %s: %w", job.Request.Tool, err))
		return
	}

	job.mu.Lock()
	job.cmd = cmd
	job.mu.Unlock()

	var outputWg sync.WaitGroup
	outputWg.Add(2)

	go func() {
		defer outputWg.Done()
		_ = job.capture.Consume(stdout, StreamStdout)
	}()

	go func() {
		defer outputWg.Done()
		_ = job.capture.Consume(stderr, StreamStderr)
	}()

	// Drain the pipes before Wait closes them.
	outputWg.Wait()

	err = cmd.Wait()

	switch {
	case ctx.Err() != nil:
		job.finish(JobStateCanceled, -1, ctx.Err())
	case err != nil:
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		job.finish(JobStateFailed, exitCode, err)
	default:
		job.finish(JobStateSucceeded, 0, nil)
	}
}

// complete runs the completion callback and then closes the done channel.
// It is called after runJob returns, so the concurrency slot is already
// released and the callback cannot starve other jobs.
func (r *Runner) complete(job *Job) {
	if job.Request.OnDone != nil {
		job.Request.OnDone(job)
	}

	job.markDone()
}
