package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// stripSchema убирает поле $schema, которое huma добавляет в ответы.
func stripSchema(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
