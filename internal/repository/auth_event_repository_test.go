package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))

	v := nullable("127.0.0.1")
	require.NotNil(t, v)
	assert.Equal(t, "127.0.0.1", *v)
}
