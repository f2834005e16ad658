package service_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
)

func TestDecodeBase64Image(t *testing.T) {
	payload := []byte("image-bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	data, contentType, err := service.DecodeBase64Image(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/png", contentType)

	data, contentType, err = service.DecodeBase64Image("data:image/jpeg;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestDecodeBase64ImageRejectsMalformed(t *testing.T) {
	_, _, err := service.DecodeBase64Image("data:image/png,no-base64-marker")
	assert.ErrorIs(t, err, service.ErrInvalidImage)

	_, _, err = service.DecodeBase64Image("!!!not-base64!!!")
	assert.ErrorIs(t, err, service.ErrInvalidImage)
}

type fixedImageStore struct{ url string }

func (s fixedImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.url, nil
}

func TestCreateRecipeMalformedImage(t *testing.T) {
	f := setupRecipeTest(t)
	ctx := context.Background()

	svc := service.NewRecipeService(f.db, fixedImageStore{url: "https://cdn.example.com/i.png"})
	in := f.input()
	in.Image = "!!!not-base64!!!"

	_, err := svc.Create(ctx, f.author.ID, in)
	assert.ErrorIs(t, err, service.ErrInvalidImage)
}
