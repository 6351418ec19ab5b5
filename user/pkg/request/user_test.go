package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMarshalJSONMasksPassword(t *testing.T) {
	payload, err := json.Marshal(Register{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "hunter22")
	assert.Contains(t, string(payload), "user@example.com")
}

func TestLoginMarshalJSONMasksPassword(t *testing.T) {
	payload, err := json.Marshal(Login{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "hunter22")
	assert.Contains(t, string(payload), "user@example.com")
}
