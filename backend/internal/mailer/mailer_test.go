package mailer

import (
	"context"
	"io"
	"mime/quotedprintable"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
)

// session é o que o servidor fake recebeu.
type session struct {
	from string
	rcpt []string
	data string
}

// fakeSMTP aceita uma única sessão em texto simples, sem STARTTLS nem AUTH.
func fakeSMTP(t *testing.T) (host string, port int, got <-chan session) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan session, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		var s session
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 8BITMIME")
			case "MAIL":
				s.from = line[strings.Index(line, "<")+1 : strings.Index(line, ">")]
				_ = tp.PrintfLine("250 OK")
			case "RCPT":
				s.rcpt = append(s.rcpt, line[strings.Index(line, "<")+1:strings.Index(line, ">")])
				_ = tp.PrintfLine("250 OK")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				b, err := io.ReadAll(tp.DotReader())
				if err != nil {
					return
				}
				s.data = string(b)
				_ = tp.PrintfLine("250 OK")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				out <- s
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, out
}

func TestMailer_Send(t *testing.T) {
	host, port, got := fakeSMTP(t)
	m := New(config.SMTPConfig{
		Host:      host,
		Port:      port,
		TLSVerify: true,
		From:      "escuta@exemplo.org",
		To:        []string{"ouvidoria@exemplo.org", "backup@exemplo.org"},
	}, zap.NewNop())
	m.now = func() time.Time { return time.Date(2025, 6, 2, 13, 5, 0, 0, time.UTC) }

	err := m.Send(context.Background(), "Nova denúncia anônima ABC", "Tipo: Tráfico de drogas\nDescrição: teste")
	require.NoError(t, err)

	var s session
	select {
	case s = <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no SMTP session")
	}
	assert.Equal(t, "escuta@exemplo.org", s.from)
	assert.Equal(t, []string{"ouvidoria@exemplo.org", "backup@exemplo.org"}, s.rcpt)

	headers, body, ok := strings.Cut(s.data, "\n\n")
	require.True(t, ok, s.data)
	assert.Contains(t, headers, "Subject: =?utf-8?q?Nova_den=C3=BAncia_an=C3=B4nima_ABC?=")
	assert.Contains(t, headers, "To: ouvidoria@exemplo.org, backup@exemplo.org")
	assert.Contains(t, headers, "Date: Mon, 02 Jun 2025 13:05:00 +0000")

	decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Tipo: Tráfico de drogas")
}

func TestMailer_NoRecipients(t *testing.T) {
	m := New(config.SMTPConfig{Host: "127.0.0.1", Port: 25, TLSVerify: true}, zap.NewNop())
	assert.Error(t, m.Send(context.Background(), "s", "b"))
}

func TestMailer_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	m := New(config.SMTPConfig{Host: "127.0.0.1", Port: port, To: []string{"a@b.c"}}, zap.NewNop())
	err = m.Send(context.Background(), "s", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp dial 127.0.0.1:"+strconv.Itoa(port))
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("a@b.c", []string{"d@e.f"}, "Olá", "linha 1\nlinha 2", time.Unix(0, 0).UTC()))

	assert.True(t, strings.HasPrefix(msg, "From: a@b.c\r\n"))
	assert.Contains(t, msg, "Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	assert.Contains(t, msg, "linha 1\r\nlinha 2")
}
