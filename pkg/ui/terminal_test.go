package ui

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"wikiassets/pkg/models"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func TestColorsDisabledForBuffers(t *testing.T) {
	buf := captureOutput(t)

	PrintError("Failed to load configuration", "bad value")
	PrintSuccess("done")

	got := buf.String()
	if strings.Contains(got, "\033[") {
		t.Errorf("expected no ANSI codes, got %q", got)
	}
	if !strings.Contains(got, "Failed to load configuration: bad value") {
		t.Errorf("missing error line in %q", got)
	}
}

func TestPrintRunSummary(t *testing.T) {
	buf := captureOutput(t)

	PrintRunSummary(models.RunStats{
		Total:     3,
		Succeeded: 1,
		Failed:    2,
		ByStatus: map[models.Status]int{
			models.StatusUnresolved: 2,
			models.StatusDownloaded: 1,
		},
		ListingComplete: false,
		Duration:        1500 * time.Millisecond,
	}, "scripts/minecraft_items.json")

	got := buf.String()
	for _, want := range []string{"Items: 3", "Succeeded: 1", "Failed: 2", "scripts/minecraft_items.json", "1.5s", "incomplete"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "downloaded") > strings.Index(got, "unresolved") {
		t.Errorf("statuses should be sorted:\n%s", got)
	}
}

func TestSetOutputWhilePrinting(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			PrintInfo("Item", "Apple")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			SetOutput(&buf)
		}
	}()
	wg.Wait()

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("expected no ANSI codes once output is a buffer, got %q", buf.String())
	}
}
