package imapsmtp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const smtpDialTimeout = 30 * time.Second

// smtpConfig holds the SMTP server settings for sending replies.
type smtpConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}

// composeReply builds a minimal RFC 5322 reply message. inReplyTo ties
// the reply to the original conversation thread when non-empty.
func composeReply(
	from, to, subject, body, inReplyTo, messageID string,
) string {
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Message-ID: <%s>\r\n", messageID))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	if inReplyTo != "" {
		// Envelope message IDs may arrive with or without angle brackets.
		inReplyTo = strings.Trim(inReplyTo, "<>")
		msg.WriteString(fmt.Sprintf("In-Reply-To: <%s>\r\n", inReplyTo))
		msg.WriteString(fmt.Sprintf("References: <%s>\r\n", inReplyTo))
	}
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.String()
}

// sendMail delivers a composed message over SMTP, using implicit TLS or
// STARTTLS depending on configuration.
func sendMail(cfg smtpConfig, from, to, body string) error {
	addr := cfg.Host + ":" + cfg.Port

	if cfg.TLS {
		return sendWithTLS(addr, cfg, from, to, body)
	}
	return sendWithStartTLS(addr, cfg, from, to, body)
}

// sendWithTLS sends over an implicit TLS connection.
func sendWithTLS(addr string, cfg smtpConfig, from, to, body string) error {
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return submit(client, from, to, body)
}

// sendWithStartTLS sends using STARTTLS.
func sendWithStartTLS(addr string, cfg smtpConfig, from, to, body string) error {
	conn, err := net.DialTimeout("tcp", addr, smtpDialTimeout)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return submit(client, from, to, body)
}

// submit sends a message using an already-authenticated SMTP client.
func submit(client *smtp.Client, from, to, body string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write([]byte(body)); err != nil {
		writer.Close()
		return fmt.Errorf("writing SMTP body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finishing SMTP body: %w", err)
	}

	return client.Quit()
}
