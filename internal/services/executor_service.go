package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"schemadesigner/internal/models"
)

// ConnectionConfig identifies the target database a generated script should
// run against. The caller supplies credentials per request, nothing is stored.
type ConnectionConfig struct {
	Host         string `json:"host" binding:"required"`
	Port         int    `json:"port" binding:"required"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	DatabaseName string `json:"database_name" binding:"required"`
	SSLMode      string `json:"ssl_mode"`
}

// ExecutionResult reports what happened when a script was executed.
type ExecutionResult struct {
	Success            bool     `json:"success"`
	StatementsExecuted int      `json:"statements_executed"`
	TablesCreated      []string `json:"tables_created"`
	ExecutionTimeMs    int64    `json:"execution_time_ms"`
	Error              string   `json:"error,omitempty"`
}

// ExecutorService runs generated DDL scripts against a PostgreSQL target.
type ExecutorService struct {
	logger *logrus.Logger
}

func NewExecutorService(logger *logrus.Logger) *ExecutorService {
	return &ExecutorService{logger: logger}
}

// Execute connects to the target database and runs the script statement by
// statement inside a single transaction, so a half-created schema is rolled
// back when any statement fails.
func (s *ExecutorService) Execute(ctx context.Context, cfg ConnectionConfig, script *models.GeneratedScript) (*ExecutionResult, error) {
	if script == nil || strings.TrimSpace(script.Script) == "" {
		return nil, fmt.Errorf("no script to execute")
	}
	if script.Dialect != "postgresql" {
		return nil, fmt.Errorf("execution is only supported for postgresql scripts, got %q", script.Dialect)
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DatabaseName, sslMode)

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer conn.Close(ctx)

	statements := splitStatements(script.Script)
	start := time.Now()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	executed := 0
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			s.logger.Warnf("script execution failed after %d statements: %v", executed, err)
			return &ExecutionResult{
				Success:            false,
				StatementsExecuted: executed,
				ExecutionTimeMs:    time.Since(start).Milliseconds(),
				Error:              err.Error(),
			}, nil
		}
		executed++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit schema: %w", err)
	}

	return &ExecutionResult{
		Success:            true,
		StatementsExecuted: executed,
		TablesCreated:      createdTables(statements),
		ExecutionTimeMs:    time.Since(start).Milliseconds(),
	}, nil
}

// splitStatements breaks a script on semicolons, dropping comment lines and
// blank fragments. Generated scripts never contain semicolons inside string
// literals, so a simple split is sufficient.
func splitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var statements []string
	for _, raw := range strings.Split(strings.Join(kept, "\n"), ";") {
		stmt := strings.TrimSpace(raw)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

func createdTables(statements []string) []string {
	var tables []string
	for _, stmt := range statements {
		upper := strings.ToUpper(stmt)
		if !strings.HasPrefix(upper, "CREATE TABLE") {
			continue
		}
		rest := strings.TrimSpace(stmt[len("CREATE TABLE"):])
		if paren := strings.IndexAny(rest, " (\n"); paren > 0 {
			rest = rest[:paren]
		}
		tables = append(tables, strings.Trim(rest, `"`))
	}
	return tables
}
