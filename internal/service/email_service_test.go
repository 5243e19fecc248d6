package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
)

func TestIsRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "mailbox_unavailable", err: &textproto.Error{Code: 550, Msg: "No such recipient here"}, want: true},
		{name: "user_not_local", err: &textproto.Error{Code: 551, Msg: "User not local"}, want: true},
		{name: "bad_address_syntax", err: fmt.Errorf("rcpt: %w", &textproto.Error{Code: 501, Msg: "5.1.3 Bad recipient address syntax"}), want: true},
		{name: "greylisted", err: &textproto.Error{Code: 451, Msg: "Try again later"}, want: false},
		{name: "auth_required", err: &textproto.Error{Code: 530, Msg: "Authentication required"}, want: false},
		{name: "network_timeout", err: errors.New("dial tcp timeout"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSendHTMLRequiresConfiguration(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendHTML(context.Background(), "a@example.com", "s", "<p>b</p>"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}

	missingHost := NewEmailService(&config.EmailConfig{Enabled: true, Port: 25, From: "shop@example.com"})
	if err := missingHost.SendHTML(context.Background(), "a@example.com", "s", "<p>b</p>"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got %v", err)
	}

	configured := NewEmailService(&config.EmailConfig{Enabled: true, Host: "localhost", Port: 25, From: "shop@example.com"})
	if err := configured.SendHTML(context.Background(), "not-an-address", "s", "<p>b</p>"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestBuildEmailMessageUsesHTMLContentType(t *testing.T) {
	msg := string(buildEmailMessage(headerFrom("shop@example.com", "Tea Shop"), "a@example.com", "Order #12000 confirmed", "<p>hi</p>"))
	if !strings.Contains(msg, "Content-Type: text/html; charset=UTF-8\r\n") {
		t.Fatalf("missing html content type: %q", msg)
	}
	if !strings.HasPrefix(msg, "From: \"Tea Shop\" <shop@example.com>\r\n") {
		t.Fatalf("unexpected from header: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>") {
		t.Fatalf("body not appended after headers: %q", msg)
	}
	if got := headerFrom("shop@example.com", "  "); got != "shop@example.com" {
		t.Fatalf("blank name should leave the bare address, got %q", got)
	}
}

// scriptedSMTPServer 按固定应答走完一次会话，记录收到的命令
func scriptedSMTPServer(t *testing.T, rcptReply string) (string, int, <-chan []string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	seen := make(chan []string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		var commands []string
		defer func() { seen <- commands }()
		_ = tp.PrintfLine("220 test ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			commands = append(commands, line)
			verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch verb {
			case "EHLO", "HELO", "MAIL":
				_ = tp.PrintfLine("250 ok")
			case "RCPT":
				_ = tp.PrintfLine("%s", rcptReply)
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				if _, err := tp.ReadDotLines(); err != nil {
					return
				}
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, seen
}

func TestSendHTMLDeliversWithBareEnvelopeSender(t *testing.T) {
	host, port, seen := scriptedSMTPServer(t, "250 ok")
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: host, Port: port, From: "shop@example.com", FromName: "Tea Shop"})

	if err := svc.SendHTML(context.Background(), "a@example.com", "Hello", "<p>hi</p>"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	commands := <-seen
	var mailFrom string
	for _, cmd := range commands {
		if strings.HasPrefix(strings.ToUpper(cmd), "MAIL FROM:") {
			mailFrom = cmd
		}
	}
	if !strings.HasPrefix(mailFrom, "MAIL FROM:<shop@example.com>") {
		t.Fatalf("envelope sender should be the bare address, got %q in %v", mailFrom, commands)
	}
}

func TestSendHTMLMapsRecipientRejection(t *testing.T) {
	host, port, _ := scriptedSMTPServer(t, "550 5.1.1 no such user")
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: host, Port: port, From: "shop@example.com"})

	err := svc.SendHTML(context.Background(), "ghost@example.com", "Hello", "<p>hi</p>")
	if !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("expected ErrEmailRecipientRejected, got %v", err)
	}
}

func TestSendHTMLKeepsTransientRecipientErrorsRetryable(t *testing.T) {
	host, port, _ := scriptedSMTPServer(t, "451 4.7.1 try again later")
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: host, Port: port, From: "shop@example.com"})

	err := svc.SendHTML(context.Background(), "a@example.com", "Hello", "<p>hi</p>")
	if err == nil || errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("451 should surface as a retryable error, got %v", err)
	}
}

// silentSMTPServer 接受连接但从不发送问候
func silentSMTPServer(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	done := make(chan struct{})
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
			select {
			case <-done:
				return
			default:
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		_ = ln.Close()
	})
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestSendHTMLHonorsContextDeadline(t *testing.T) {
	host, port := silentSMTPServer(t)
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: host, Port: port, From: "shop@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	err := svc.SendHTML(ctx, "a@example.com", "s", "<p>b</p>")
	if err == nil {
		t.Fatalf("expected timeout error from silent server")
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Fatalf("send should stop near the deadline, took %s", elapsed)
	}
}

func TestSendHTMLStopsOnCancel(t *testing.T) {
	host, port := silentSMTPServer(t)
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: host, Port: port, From: "shop@example.com"})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(150*time.Millisecond, cancel)

	started := time.Now()
	if err := svc.SendHTML(ctx, "a@example.com", "s", "<p>b</p>"); err == nil {
		t.Fatalf("expected error after cancel")
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Fatalf("cancel should interrupt the greeting read, took %s", elapsed)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if err := svc.SendHTML(cancelled, "a@example.com", "s", "<p>b</p>"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
