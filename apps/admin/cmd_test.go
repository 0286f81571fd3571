package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/storage/kv/inmem"
)

func setup(t *testing.T) *commandLine {
	conf := &core.Config{
		AppName:           "Shule",
		SecretKey:         "test-secret",
		AdminSessionTTL:   24 * time.Hour,
		StudentSessionTTL: 8 * time.Hour,
	}
	kv := memkv.NewStore()

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)

	return &commandLine{
		conf:       conf,
		studentSvc: student.NewService(kv),
		sessions:   session.NewStore(kv, conf),
		auth:       auth.NewAuthenticator(conf),
		validate:   validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "import: no file", args: []string{"import"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_seedAndInfo(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "info"})) // empty store is not an error
	require.NoError(t, cli.run([]string{"admin", "seed"}))

	roster, err := cli.studentSvc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 3)

	require.NoError(t, cli.run([]string{"admin", "info"}))
}

func Test_commandLine_addStudent(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "missing flags", args: []string{"addstudent", "-name", "Amina Hassan"}, wantErr: errHelp},
		{
			name:       "invalid grade",
			args:       []string{"addstudent", "-name", "Amina Hassan", "-email", "amina@example.com", "-grade", "13th Grade", "-dob", "2006-02-11"},
			wantErrStr: "grade",
		},
		{
			name: "valid student",
			args: []string{"addstudent", "-name", "Amina Hassan", "-email", "amina@example.com", "-grade", "12th Grade", "-dob", "2006-02-11", "-attendance", "97"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			if tt.wantErrStr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
				return
			}
			require.NoError(t, err)

			roster, err := cli.studentSvc.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, roster, 1)
			assert.Equal(t, "Amina Hassan", roster[0].Name)
			assert.Equal(t, 97, roster[0].Attendance)
		})
	}
}

func Test_commandLine_exportImport(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seed"}))

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, cli.run([]string{"admin", "export", "-file", path}))

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0 && data[0] == '[', "snapshot should be a JSON array")

	// wipe, then restore from the snapshot
	require.NoError(t, cli.studentSvc.Clear(ctx))
	require.NoError(t, cli.run([]string{"admin", "import", "-file", path}))

	roster, err := cli.studentSvc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 3)

	// a non-array snapshot is rejected
	badPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, ioutil.WriteFile(badPath, []byte(`{"students": []}`), 0o644))
	err = cli.run([]string{"admin", "import", "-file", badPath})
	assert.Equal(t, student.ErrImportFormat, err)
}

func Test_commandLine_clear(t *testing.T) {
	ctx := context.Background()

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "empty password", args: []string{"clear"}, wantErr: errHelp},
		{name: "wrong password", args: []string{"clear"}, extra: extra{pwd: "nope"}, wantErr: auth.ErrInvalidCredentials},
		{name: "correct password", args: []string{"clear"}, extra: extra{pwd: "admin123"}},
	}
	for _, tt := range tests {
		cli := setup(t)
		require.NoError(t, cli.run([]string{"admin", "seed"}))
		require.NoError(t, cli.sessions.SetAdmin(ctx, session.Admin{
			IsAuthenticated: true,
			Username:        "admin",
			LoginTime:       time.Now().UTC(),
		}))

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				// nothing wiped on a failed clear
				roster, lerr := cli.studentSvc.Load(ctx)
				require.NoError(t, lerr)
				assert.Len(t, roster, 3)
				return
			}
			require.NoError(t, err)
			roster, lerr := cli.studentSvc.Load(ctx)
			require.NoError(t, lerr)
			assert.Nil(t, roster)
			assert.False(t, cli.sessions.IsAnyActive(ctx))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	t.Run("requires postgres backend", func(t *testing.T) {
		err := cli.run([]string{"admin", "migrate", "up"})
		assert.Equal(t, errNoDatabase, err)
	})

	cli.db = new(sql.DB)
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a version", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a version"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}
