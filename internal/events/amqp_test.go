package events

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"
)

// hangingBroker accepts TCP connections and never answers the AMQP handshake.
func hangingBroker(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		ln.Close()
		wg.Wait()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishHonorsContextDeadline(t *testing.T) {
	p := newAMQPPublisher(hangingBroker(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, KeyOrderCreated, map[string]string{"orderId": "1"})
	if err == nil {
		t.Fatal("expected error from unresponsive broker")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Publish took %s, want it bounded by the context deadline", elapsed)
	}
}

func TestPublishWaitsForLockWithinDeadline(t *testing.T) {
	p := newAMQPPublisher(hangingBroker(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Another publisher holds the connection.
	p.lock <- struct{}{}
	defer func() { <-p.lock }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := p.Publish(ctx, KeyOrderStatusChanged, map[string]string{}); err == nil {
		t.Fatal("expected error while lock is held")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Publish waited %s for the lock", elapsed)
	}
}

func TestDialAMQPGivesUpWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := DialAMQP(ctx, hangingBroker(t), time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected error from unresponsive broker")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("DialAMQP took %s", elapsed)
	}
}
