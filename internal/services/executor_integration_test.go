//go:build integration
// +build integration

package services

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"schemadesigner/internal/models"
	"schemadesigner/internal/utils"
)

func startPostgres(t *testing.T) (ConnectionConfig, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("designer_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpassword"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	terminate := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		terminate()
		t.Fatalf("container port: %v", err)
	}

	return ConnectionConfig{
		Host:         host,
		Port:         port.Int(),
		Username:     "testuser",
		Password:     "testpassword",
		DatabaseName: "designer_test",
		SSLMode:      "disable",
	}, terminate
}

func TestExecuteScriptAgainstPostgres(t *testing.T) {
	cfg, terminate := startPostgres(t)
	defer terminate()

	logger := utils.SetupLogging("error")
	sqlSvc := NewSQLService(logger)
	executor := NewExecutorService(logger)

	script, err := sqlSvc.Generate(sqlModel(), "postgresql", models.DefaultScriptOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	result, err := executor.Execute(context.Background(), cfg, script)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("execution failed: %s", result.Error)
	}
	if result.StatementsExecuted == 0 {
		t.Error("no statements executed")
	}

	wantTables := map[string]bool{"library": false, "book": false, "member": false, "member_book": false}
	for _, table := range result.TablesCreated {
		if _, ok := wantTables[table]; ok {
			wantTables[table] = true
		}
	}
	for table, seen := range wantTables {
		if !seen {
			t.Errorf("table %s not reported as created", table)
		}
	}
}

func TestExecuteFailedStatementRollsBack(t *testing.T) {
	cfg, terminate := startPostgres(t)
	defer terminate()

	executor := NewExecutorService(utils.SetupLogging("error"))
	broken := &models.GeneratedScript{
		Dialect: "postgresql",
		Script:  "CREATE TABLE ok_table (id INTEGER PRIMARY KEY);\nCREATE TABLE broken (;\n",
	}

	result, err := executor.Execute(context.Background(), cfg, broken)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("broken script reported success")
	}
	if result.StatementsExecuted != 1 {
		t.Errorf("statements executed = %d, want 1", result.StatementsExecuted)
	}

	// The first statement must have been rolled back with the failure.
	valid := &models.GeneratedScript{
		Dialect: "postgresql",
		Script:  "CREATE TABLE ok_table (id INTEGER PRIMARY KEY);",
	}
	retry, err := executor.Execute(context.Background(), cfg, valid)
	if err != nil {
		t.Fatalf("retry Execute: %v", err)
	}
	if !retry.Success {
		t.Errorf("retry failed, first run likely committed: %s", retry.Error)
	}
}

func TestExecuteRejectsNonPostgresDialect(t *testing.T) {
	executor := NewExecutorService(utils.SetupLogging("error"))
	_, err := executor.Execute(context.Background(), ConnectionConfig{}, &models.GeneratedScript{Dialect: "mysql", Script: "CREATE TABLE x ();"})
	if err == nil {
		t.Error("expected dialect error")
	}
}
