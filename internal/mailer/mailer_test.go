package mailer

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestOtpBodyContainsCodeAndTTL(t *testing.T) {
	html, text := OtpBody("042913", 10*time.Minute)
	for name, body := range map[string]string{"html": html, "text": text} {
		if !strings.Contains(body, "042913") {
			t.Errorf("%s body missing the code", name)
		}
		if !strings.Contains(body, "10 minutes") {
			t.Errorf("%s body missing the expiry window", name)
		}
	}
}

func TestSendBoundedByTimeout(t *testing.T) {
	// A server that accepts the connection but never sends the SMTP
	// greeting. Send must give up once the session deadline passes
	// instead of blocking the delivery loop forever.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-done // hold open, write nothing
	}()

	m := &Mailer{
		host:     "127.0.0.1",
		port:     ln.Addr().(*net.TCPAddr).Port,
		username: "user",
		password: "pass",
		from:     "Paper Portal <no-reply@example.com>",
		timeout:  300 * time.Millisecond,
	}

	start := time.Now()
	err = m.Send("x@y.edu", "subject", "", "body")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Send succeeded against a silent server")
	}
	if elapsed > 5*time.Second {
		t.Fatalf("Send took %v, deadline not applied", elapsed)
	}
}

func TestSendUnconfigured(t *testing.T) {
	m := &Mailer{}
	if m.IsConfigured() {
		t.Fatal("empty mailer reports configured")
	}
	if err := m.Send("x@y.edu", "subject", "", "body"); err == nil {
		t.Error("Send succeeded without SMTP credentials")
	}
}
