// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

package logbus

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestPublishDeliversAll(t *testing.T) {
	var mu sync.Mutex
	var got []string
	b := New(func(msg string) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	})

	const actors = 10
	const perActor = 100
	var wg sync.WaitGroup
	for a := 0; a < actors; a++ {
		wg.Add(1)
		go func(a int) {
			defer wg.Done()
			for i := 0; i < perActor; i++ {
				b.Publish(fmt.Sprintf("actor %d event %d", a, i))
			}
		}(a)
	}
	wg.Wait()
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != actors*perActor {
		t.Fatalf("Delivered %d events, want %d", len(got), actors*perActor)
	}
}

func TestPublishAfterCloseDropped(t *testing.T) {
	var count int
	b := New(func(string) { count++ })
	b.Publish("before")
	b.Close()
	b.Publish("after")
	if count != 1 {
		t.Fatalf("Sink saw %d events, want 1", count)
	}
}

func TestPerActorOrderPreserved(t *testing.T) {
	var mu sync.Mutex
	var got []string
	b := New(func(msg string) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	})
	for i := 0; i < 50; i++ {
		b.Publish(fmt.Sprintf("%d", i))
	}
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	for i, msg := range got {
		if msg != fmt.Sprintf("%d", i) {
			t.Fatalf("Event %d out of order: %q", i, msg)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	b := New(nil)
	b.Publish("x")
	b.Close()
	b.Close()
	// Double Close must return promptly without deadlock.
	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout on repeated Close")
	}
}
