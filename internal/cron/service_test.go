package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name  string
	err   error
	runs  int
	panic bool
	block bool
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(ctx context.Context) error {
	t.runs++
	if t.panic {
		panic("job exploded")
	}
	if t.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return t.err
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	fail := &testJob{name: "fail", err: errors.New("boom")}
	registry, err := NewRegistry(ok, fail)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewCron(reg)
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: lock, Metrics: m})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if ok.runs != 1 || fail.runs != 1 {
		t.Fatalf("expected both jobs to run once, got ok=%d fail=%d", ok.runs, fail.runs)
	}
	if lock.held || lock.releases != 1 {
		t.Fatalf("expected lock released once, held=%v releases=%d", lock.held, lock.releases)
	}
	count, err := testutil.GatherAndCount(reg, "storefront_cron_job_runs_total")
	if err != nil || count != 2 {
		t.Fatalf("run series=%d err=%v", count, err)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	registry, _ := NewRegistry(job)
	lock := &fakeLock{held: true}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: lock})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job should not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("lock should not be released when not acquired")
	}
}

func TestRunOnceSurfacesLockErrors(t *testing.T) {
	registry, _ := NewRegistry(&testJob{name: "job"})
	service, _ := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: &fakeLock{acquireErr: errors.New("redis down")}})
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	registry, _ := NewRegistry(job)
	service, _ := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: &fakeLock{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewServiceValidates(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected lock error")
	}
}

func TestRunOnceRecoversPanickingJob(t *testing.T) {
	bad := &testJob{name: "bad", panic: true}
	next := &testJob{name: "next"}
	registry, _ := NewRegistry(bad, next)
	reg := prometheus.NewRegistry()
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: lock, Metrics: metrics.NewCron(reg)})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if next.runs != 1 {
		t.Fatalf("expected the next job to run after a panic")
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock release, got %d", lock.releases)
	}
}

func TestRunOnceBoundsJobsByTimeout(t *testing.T) {
	slow := &testJob{name: "slow", block: true}
	registry, _ := NewRegistry(slow)
	service, err := NewService(ServiceParams{
		Logger:     testLogger(),
		Registry:   registry,
		Lock:       &fakeLock{},
		JobTimeout: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- service.RunOnce(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run once: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job timeout not applied")
	}
	if slow.runs != 1 {
		t.Fatalf("expected one run, got %d", slow.runs)
	}
}
