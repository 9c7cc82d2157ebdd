package request

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireID_Valid(t *testing.T) {
	result, err := RequireID("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", result)
}

func TestRequireID_Empty(t *testing.T) {
	_, err := RequireID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required ID")
}

// testDecodePayload is a helper struct used only for testing Decode.
type testDecodePayload struct {
	Name   string `json:"name" validate:"required,dcname"`
	Subnet string `json:"subnet" validate:"required,cidr"`
}

func TestDecode_ValidJSON(t *testing.T) {
	body := `{"name":"dc-east-1","subnet":"172.16.0.0/24"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.NoError(t, err)
	assert.Equal(t, "dc-east-1", payload.Name)
	assert.Equal(t, "172.16.0.0/24", payload.Subnet)
}

func TestDecode_InvalidJSON(t *testing.T) {
	body := `{not valid json}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_ValidationFails(t *testing.T) {
	// Missing the required "subnet" field.
	body := `{"name":"dc-east-1"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDecode_BadCIDR(t *testing.T) {
	body := `{"name":"dc-east-1","subnet":"10.0.0.1"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDCNameValidation_Valid(t *testing.T) {
	validNames := []string{"dc-east-1", "atl2", "a", "lab-dc-clab", "z0"}
	for _, name := range validNames {
		t.Run(name, func(t *testing.T) {
			assert.True(t, dcNameRegex.MatchString(name), "expected name %q to be valid", name)
		})
	}
}

func TestDCNameValidation_Invalid(t *testing.T) {
	// Uppercase, spaces, underscores, specials, names not starting with a
	// lowercase letter, the empty name, and one past the 63-char limit.
	invalidNames := []string{
		"DC East",
		"dc_east",
		"dc@1",
		"",
		strings.Repeat("a", 64),
		"1starts-digit",
		"-leading-dash",
	}
	for _, name := range invalidNames {
		t.Run(name, func(t *testing.T) {
			assert.False(t, dcNameRegex.MatchString(name), "expected name %q to be invalid", name)
		})
	}
}
