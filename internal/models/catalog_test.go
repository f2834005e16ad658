package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestValidColor(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"#AABBCC", true},
		{"#000000", true},
		{"#FF00FF", true},
		{"#aabbcc", false},
		{"AABBCC", false},
		{"#AABBC", false},
		{"#AABBCCD", false},
		{"#AABBCG", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, models.ValidColor(tc.value), "value %q", tc.value)
	}
}

func TestTagCreateValidatesColor(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	err := db.Create(&models.Tag{Name: "breakfast", Color: "#aabbcc", Slug: "breakfast"}).Error
	assert.ErrorIs(t, err, models.ErrInvalidColor)

	require.NoError(t, db.Create(&models.Tag{Name: "dinner", Color: "#AABBCC", Slug: "dinner"}).Error)
}
