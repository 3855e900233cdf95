package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAddEmptyScheduleIsDisabled(t *testing.T) {
	s := New()
	if err := s.Add(Job{Name: "autosave", Run: func() {}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Stats()) != 0 {
		t.Error("disabled job should not be registered")
	}

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start with no jobs should return at once")
	}
}

func TestAddRejectsBadSchedule(t *testing.T) {
	s := New()
	if err := s.Add(Job{Name: "x", Schedule: "not a schedule", Run: func() {}}); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
	if err := s.Add(Job{Name: "y", Schedule: "* * * * * *"}); err == nil {
		t.Error("expected an error for a job without a function")
	}
}

func TestJobRuns(t *testing.T) {
	s := New()
	ran := make(chan struct{}, 4)
	if err := s.Add(Job{Name: "tick", Schedule: "* * * * * *", Run: func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()
	<-done

	if st := s.Stats()["tick"]; st.RunCount < 1 || st.LastRun.IsZero() {
		t.Errorf("stats = %+v", st)
	}
}

func TestExecuteSkipsOverlappingRun(t *testing.T) {
	s := New()
	job := Job{Name: "slow", Schedule: "@every 1h"}
	release := make(chan struct{})
	started := make(chan struct{})
	job.Run = func() {
		close(started)
		<-release
	}
	if err := s.Add(job); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.execute(job)
	}()
	<-started
	s.execute(job)
	close(release)
	wg.Wait()

	st := s.Stats()["slow"]
	if st.RunCount != 1 || st.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 run and 1 skip", st)
	}
}
