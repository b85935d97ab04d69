package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/loan"
)

func TestPrintEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	body, err := json.Marshal(loan.Event{
		Type:          loan.EventReturned,
		LoanID:        7,
		BookID:        3,
		BorrowerEmail: "reader@example.com",
		Penalty:       2.5,
		DaysLate:      5,
		OccurredAt:    at,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printEvent(&out, "loan.returned", body))
	assert.Equal(t, "2024-03-01T10:00:00Z loan.returned loan=7 book=3 borrower=reader@example.com days_late=5 penalty=2.50\n", out.String())

	out.Reset()
	require.NoError(t, printEvent(&out, "loan.unknown", []byte("not-json")))
	assert.Equal(t, "loan.unknown not-json\n", out.String())
}

func TestEventsTail_MissingConfig(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  mode: test\nevents:\n  url: \"\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	_, err := runCmd(t, "events", "tail", "--config", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events.url")
}
