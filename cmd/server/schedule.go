package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/internal/csvio"
	"github.com/rhyrak/term-scheduler/internal/pipeline"
	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/metrics"
)

const (
	stateRunning = "running"
	stateDone    = "done"
	stateFailed  = "failed"
)

type runStatus struct {
	State string
	Error string
}

// runRegistry tracks pipeline runs started by this process. Each run owns
// the directory root/<id>.
type runRegistry struct {
	root string
	mu   sync.Mutex
	runs map[string]runStatus
	wg   sync.WaitGroup
}

func newRunRegistry(root string) *runRegistry {
	return &runRegistry{root: root, runs: make(map[string]runStatus)}
}

func (r *runRegistry) dir(id string) string {
	return filepath.Join(r.root, id)
}

func (r *runRegistry) start(id string, cfg *config.Config, log *zap.Logger, rec *metrics.Recorder) {
	r.set(id, runStatus{State: stateRunning})
	runner := pipeline.NewWithID(id, cfg, log, rec)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := runner.Run(context.Background()); err != nil {
			r.set(id, runStatus{State: stateFailed, Error: err.Error()})
			return
		}
		r.set(id, runStatus{State: stateDone})
	}()
}

func (r *runRegistry) set(id string, st runStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[id] = st
}

func (r *runRegistry) status(id string) (runStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.runs[id]
	return st, ok
}

// wait blocks until every started run has finished.
func (r *runRegistry) wait() {
	r.wg.Wait()
}

// list returns the ids of runs that exported a term schedule.
func (r *runRegistry) list() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	ids := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.root, entry.Name(), csvio.TermScheduleFile)); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
