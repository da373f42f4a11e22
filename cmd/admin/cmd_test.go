package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/config"
	"proxedu/pkg/api"
	"proxedu/pkg/client"
	"proxedu/pkg/logger"
	"proxedu/pkg/notify"
	"proxedu/service"
	"proxedu/storage/inmem"
)

// syncBuffer lets the test read output while a command is still writing it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func setup(t *testing.T) (*commandLine, service.IServiceManager, *syncBuffer) {
	t.Helper()
	cfg := config.Config{
		JWTSecret:           "test-secret",
		JWTIssuer:           "proxedu",
		TokenTTL:            time.Hour,
		RegistrationCodeTTL: 10 * time.Minute,
		TelegramBotUsername: "activlarBot",
		PollInterval:        20 * time.Millisecond,
	}
	log := logger.NewNop()
	svc := service.New(cfg, inmem.New(), inmem.NewRegistrationStore(), service.Options{}, log)

	srv := httptest.NewServer(api.NewRouter(cfg, svc, notify.NewHub(log), log))
	t.Cleanup(srv.Close)

	out := &syncBuffer{}
	cli := &commandLine{
		cfg: cfg,
		out: out,
		in:  strings.NewReader(""),
		services: func(context.Context) (service.IServiceManager, func(), error) {
			return svc, func() {}, nil
		},
		api: client.New(srv.URL),
	}

	readPasswordFunc = func(int) ([]byte, error) { return []byte("secret1"), nil }
	return cli, svc, out
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(context.Background(), append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.ErrorContains(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, _ := setup(t)
	runCLITests(t, cli, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: missing name", args: []string{"adduser", "-phone", "+998901234567"}, wantErr: errHelp},
		{name: "register: missing phone", args: []string{"register", "-name", "Ali"}, wantErr: errHelp},
	})
}

func Test_commandLine_adduser(t *testing.T) {
	cli, svc, out := setup(t)
	runCLITests(t, cli, []cliTest{
		{name: "invalid phone", args: []string{"adduser", "-name", "Admin", "-phone", "12345"}, wantErrStr: "invalid phone number"},
		{name: "invalid role", args: []string{"adduser", "-name", "Admin", "-phone", "+998900000001", "-role", "root"}, wantErr: service.ErrInvalidRole},
		{name: "admin", args: []string{"adduser", "-name", "Admin", "-phone", "+998900000001"}},
		{name: "duplicate", args: []string{"adduser", "-name", "Admin", "-phone", "+998900000001"}, wantErr: service.ErrDuplicatePhone},
		{name: "student with balance", args: []string{"adduser", "-name", "Vali", "-phone", "+998900000002", "-role", "student", "-balance", "50000"}},
	})

	users, err := svc.User().GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Contains(t, out.String(), "created user #")

	res, err := svc.Auth().Login(context.Background(), "+998900000001", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.User.Role)
}

func Test_commandLine_adduser_shortPassword(t *testing.T) {
	cli, _, _ := setup(t)
	readPasswordFunc = func(int) ([]byte, error) { return []byte("123"), nil }

	err := cli.run(context.Background(), []string{"admin", "adduser", "-name", "Admin", "-phone", "+998900000001"})
	assert.ErrorContains(t, err, "at least 6 characters")
}

func Test_commandLine_cleanup(t *testing.T) {
	cli, _, out := setup(t)
	require.NoError(t, cli.run(context.Background(), []string{"admin", "cleanup"}))
	assert.Contains(t, out.String(), "removed 0 expired registrations")

	// unreachable server falls back to the storage
	cli.api = client.New("http://127.0.0.1:1")
	require.NoError(t, cli.run(context.Background(), []string{"admin", "cleanup"}))
}

func Test_commandLine_register(t *testing.T) {
	cli, svc, out := setup(t)
	tokenFile := filepath.Join(t.TempDir(), "token")

	done := make(chan error, 1)
	go func() {
		done <- cli.run(context.Background(), []string{"admin", "register", "-name", "Ali Valiyev", "-phone", "+998901234567", "-token", tokenFile})
	}()

	codeRe := regexp.MustCompile(`/start ([A-Z0-9]{8})`)
	var code string
	require.Eventually(t, func() bool {
		m := codeRe.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		code = m[1]
		return true
	}, 2*time.Second, 10*time.Millisecond)

	_, err := svc.Auth().Verify(context.Background(), code, 555)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("register did not finish")
	}
	assert.Contains(t, out.String(), "Welcome, Ali Valiyev!")

	token, err := client.FileTokenStore{Path: tokenFile}.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func Test_commandLine_register_passwordError(t *testing.T) {
	cli, _, _ := setup(t)
	readPasswordFunc = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }

	err := cli.run(context.Background(), []string{"admin", "register", "-name", "Ali", "-phone", "+998901234567"})
	assert.ErrorContains(t, err, "not a terminal")
}
