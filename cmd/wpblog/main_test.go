package main

import (
	"errors"
	"testing"
)

type fakeServer struct {
	startErr error
	closed   int
}

func (s *fakeServer) Start() error { return s.startErr }

func (s *fakeServer) Close() error {
	s.closed++
	return nil
}

func TestServeClosesOnStartError(t *testing.T) {
	boom := errors.New("listen: address in use")
	srv := &fakeServer{startErr: boom}
	if err := serve(srv); !errors.Is(err, boom) {
		t.Fatalf("serve = %v, want %v", err, boom)
	}
	if srv.closed != 1 {
		t.Errorf("Close called %d times, want 1", srv.closed)
	}
}

func TestServeClosesOnCleanStop(t *testing.T) {
	srv := &fakeServer{}
	if err := serve(srv); err != nil {
		t.Fatalf("serve = %v", err)
	}
	if srv.closed != 1 {
		t.Errorf("Close called %d times, want 1", srv.closed)
	}
}
