package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestShutdownOnSignal(t *testing.T) {
	tests := []struct {
		name   string
		signal os.Signal
	}{
		{name: "SIGTERM", signal: syscall.SIGTERM},
		{name: "Interrupt", signal: os.Interrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() {
				signalNotify = signal.Notify
			})

			var watched []os.Signal
			signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
				watched = sig
				go func() {
					ch <- tt.signal
				}()
			}

			server := &http.Server{}
			called := make(chan struct{}, 1)
			server.RegisterOnShutdown(func() {
				called <- struct{}{}
			})

			core, logs := observer.New(zap.InfoLevel)
			shutdown(server, time.Millisecond, zap.New(core))

			select {
			case <-called:
			case <-time.After(time.Second):
				t.Fatalf("expected server shutdown callback to execute")
			}

			if !containsSignal(watched, tt.signal) {
				t.Fatalf("expected %v among watched signals %v", tt.signal, watched)
			}
			if logs.FilterMessage("shutting down server").Len() != 1 {
				t.Fatalf("expected shutdown log entry, got %v", logs.All())
			}
			if logs.FilterMessage("graceful shutdown failed").Len() != 0 {
				t.Fatalf("expected clean shutdown of an idle server")
			}
		})
	}
}

func containsSignal(signals []os.Signal, want os.Signal) bool {
	for _, sig := range signals {
		if sig == want {
			return true
		}
	}
	return false
}
