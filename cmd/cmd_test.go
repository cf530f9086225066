package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/database"
	"finance-ledger/internal/models"
)

// writeConfig writes a minimal config for a sqlite database under dir.
func writeConfig(t *testing.T, dir string, port int) (cfgPath, dbPath string) {
	t.Helper()
	dbPath = filepath.Join(dir, "ledger.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`server:
  address: 127.0.0.1
  port: %d
  mode: test
database:
  driver: sqlite
  path: %s
jwt:
  secret: cmd-test-secret-0123456789
security:
  bcrypt_cost: 4
  encryption_key: cmd-test-key
log:
  level: error
backup:
  dir: %s
`, port, dbPath, filepath.Join(dir, "backups"))
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dbPath
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestMigrateCommand(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, t.TempDir(), 8080)

	root := NewRootCmd()
	root.SetArgs([]string{"migrate", "--config", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: dbPath}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close(db)
	for _, m := range []any{&models.Account{}, &models.Wallet{}, &models.Transaction{}, &models.User{}} {
		if !db.Migrator().HasTable(m) {
			t.Errorf("table for %T missing after migrate", m)
		}
	}
}

func TestMigrateCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("jwt:\n  secret: short\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := NewRootCmd()
	root.SetArgs([]string{"migrate", "-c", path})
	if err := root.Execute(); err == nil {
		t.Fatal("migrate with a short jwt secret succeeded")
	}
}

func TestServeCommand(t *testing.T) {
	port := freePort(t)
	cfgPath, _ := writeConfig(t, t.TempDir(), port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := NewRootCmd()
	root.SetArgs([]string{"serve", "--migrate", "--config", cfgPath})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("healthz = %d", resp.StatusCode)
			}
			break
		}
		select {
		case err := <-done:
			t.Fatalf("serve exited early: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v after shutdown", err)
		}
	case <-time.After(35 * time.Second):
		t.Fatal("serve did not stop")
	}
}
