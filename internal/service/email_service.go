package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
)

// Mailer 发送 HTML 邮件
type Mailer interface {
	SendHTML(ctx context.Context, toEmail, subject, htmlBody string) error
}

// defaultSMTPTimeout 上下文未设置截止时间时单次发送的上限
const defaultSMTPTimeout = 30 * time.Second

// EmailService SMTP 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否已启用并配置
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && s.cfg.Host != "" && s.cfg.Port != 0 && s.cfg.From != ""
}

// SendHTML 发送 HTML 邮件，连接与会话受 ctx 截止时间约束
func (s *EmailService) SendHTML(ctx context.Context, toEmail, subject, htmlBody string) error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}
	if ctx == nil {
		ctx = context.Background()
	}

	msg := buildEmailMessage(headerFrom(s.cfg.From, s.cfg.FromName), toEmail, subject, htmlBody)

	client, release, err := dialSMTP(ctx, net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)), s.cfg.Host, s.cfg.UseSSL)
	if err != nil {
		return err
	}
	defer release()
	defer client.Close()

	if s.cfg.UseTLS && !s.cfg.UseSSL {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.Username != "" || s.cfg.Password != "" {
		if err := authenticate(client, smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	return deliver(client, s.cfg.From, toEmail, msg)
}

// headerFrom 发件人头，显示名按 RFC 2047 编码；信封发件人始终是裸地址
func headerFrom(address, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return address
	}
	return (&mail.Address{Name: mime.QEncoding.Encode("UTF-8", name), Address: address}).String()
}

func buildEmailMessage(from, to, subject, body string) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("UTF-8", subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	var buf bytes.Buffer
	for _, h := range headers {
		buf.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// smtpDeadline 取 ctx 截止时间与默认上限中较早者
func smtpDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(defaultSMTPTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

// dialSMTP 建立连接并读取服务端问候，整个会话共用同一截止时间
func dialSMTP(ctx context.Context, addr, host string, useSSL bool) (*smtp.Client, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	deadline := smtpDeadline(ctx)
	dialer := &net.Dialer{Deadline: deadline}

	var conn net.Conn
	var err error
	if useSSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	// ctx 提前取消时立即打断阻塞中的读写
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		stop()
		_ = conn.Close()
		return nil, nil, err
	}
	return client, func() { stop() }, nil
}

func authenticate(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return nil
	}
	return client.Auth(auth)
}

// deliver 单收件人投递；RCPT 阶段的永久拒绝归为 ErrEmailRecipientRejected，不再重试
func deliver(client *smtp.Client, from, to string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		if isRecipientRejected(err) {
			return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
		}
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end data: %w", err)
	}
	return client.Quit()
}

// isRecipientRejected 550 邮箱不可用、551 非本地用户、553 邮箱名非法、501 地址语法错误
func isRecipientRejected(err error) bool {
	var reply *textproto.Error
	if !errors.As(err, &reply) {
		return false
	}
	switch reply.Code {
	case 501, 550, 551, 553:
		return true
	}
	return false
}
