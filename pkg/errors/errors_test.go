package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"status", Status(http.StatusNotFound, "404 Not Found"), "http_status error (code 404): unexpected status 404 Not Found"},
		{"missing field", MissingField("query.pages"), "missing_field error: response has no query.pages"},
		{"network", Network(fmt.Errorf("dial tcp: refused")), "network error: dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestUnwrapAndClassify(t *testing.T) {
	wrapped := fmt.Errorf("save icon: %w", Filesystem("/tmp/a.png", fs.ErrPermission))

	assert.Equal(t, ErrorTypeFilesystem, TypeOf(wrapped))
	assert.True(t, stderrors.Is(wrapped, fs.ErrPermission))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
}

func TestConfigKeepsJoinedErrors(t *testing.T) {
	first := fmt.Errorf("workers must be positive")
	err := Config(stderrors.Join(first, fmt.Errorf("category is required")))

	assert.Equal(t, ErrorTypeConfig, TypeOf(fmt.Errorf("load: %w", err)))
	assert.ErrorIs(t, err, first)
	assert.Contains(t, err.Error(), "category is required")
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("imageinfo: %w", Status(http.StatusServiceUnavailable, "503 Service Unavailable"))

	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(Parsing(fmt.Errorf("bad json")), 0))
}
