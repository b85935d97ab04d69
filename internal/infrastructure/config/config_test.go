package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Loan.MaxLoansPerUser)
	assert.Equal(t, 14, cfg.Loan.LoanDurationDays)
	assert.Equal(t, 0.50, cfg.Loan.PenaltyRatePerDay)
	assert.Equal(t, 50.0, cfg.Loan.MaxPenalty)
	assert.Equal(t, "memory", cfg.Loan.LockBackend)
	assert.Equal(t, 20, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.BookTTL)
	assert.Equal(t, time.Second, cfg.Server.SlowRequest)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9000
database:
  driver: mysql
  host: db
  port: 3306
  user: lib
  password: secret
  dbname: library
loan:
  max_loans_per_user: 3
  penalty_rate_per_day: 1.25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("LIBRARY_LOAN_LOAN_DURATION_DAYS", "21")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Loan.MaxLoansPerUser)
	assert.Equal(t, 1.25, cfg.Loan.PenaltyRatePerDay)
	assert.Equal(t, 21, cfg.Loan.LoanDurationDays, "环境变量应覆盖默认值")
	assert.Equal(t, 50.0, cfg.Loan.MaxPenalty)
	assert.Contains(t, cfg.Database.DSN(), "lib:secret@tcp(db:3306)/library")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"端口非法", func(c *Config) { c.Server.Port = 0 }},
		{"驱动非法", func(c *Config) { c.Database.Driver = "oracle" }},
		{"借阅上限为0", func(c *Config) { c.Loan.MaxLoansPerUser = 0 }},
		{"罚金为负", func(c *Config) { c.Loan.MaxPenalty = -1 }},
		{"redis锁未开启redis", func(c *Config) { c.Loan.LockBackend = "redis" }},
		{"默认页大小超过上限", func(c *Config) { c.Pagination.DefaultPageSize = 200 }},
		{"认证需要redis", func(c *Config) { c.Auth.Enabled = true }},
		{"生产环境默认密钥", func(c *Config) { c.Server.Mode = "release" }},
		{"事件缺少交换机", func(c *Config) { c.Events.Enabled = true; c.Events.Exchange = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "pg", Port: 5432, User: "u", Password: "p", DBName: "lib", SSLMode: "disable"}
	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=lib sslmode=disable", pg.DSN())

	mem := DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
	assert.Contains(t, mem.DSN(), "file::memory:")

	my := DatabaseConfig{Driver: "mysql", User: "u", Password: "p", Host: "h", Port: 3306, DBName: "d", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", my.DSN())
}
