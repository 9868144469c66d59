package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "category %s", c)
	}

	assert.False(t, Category("garden").Valid())
	assert.False(t, Category("").Valid())
	assert.False(t, Category("Books").Valid())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 3, 4)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.Limit)
	assert.Equal(t, 4, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)

	assert.Equal(t, 0, NewMeta(1, 20, 0).TotalPages)
	assert.Equal(t, 1, NewMeta(1, 20, 20).TotalPages)
	assert.Equal(t, 2, NewMeta(1, 20, 21).TotalPages)
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := User{
		ID:           1,
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: "$2a$12$secret",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	detail := user.Detail()
	assert.Equal(t, user.Email, detail.Email)
	assert.Equal(t, user.Username, detail.Username)
}
