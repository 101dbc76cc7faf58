package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	id := NewID("user", at)
	parts := strings.Split(id, ":")
	require.Len(t, parts, 3)
	assert.Equal(t, "user", parts[0])
	assert.Equal(t, "1700000000123", parts[1])
	assert.Len(t, parts[2], 9)

	assert.NotEqual(t, id, NewID("user", at))
}

func TestGetAppErrorUnwrapsChain(t *testing.T) {
	base := NewConflictError(nil, "Nickname already exists")
	wrapped := fmt.Errorf("register: %w", base)

	appErr, ok := GetAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "Nickname already exists", appErr.Message)

	_, ok = GetAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestMarshalKeepsEmptySlices(t *testing.T) {
	type doc struct {
		Items []string `json:"items"`
	}

	out, err := MarshalString(doc{})
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, out)
}
