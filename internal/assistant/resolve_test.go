package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
)

var catalog = []domain.Product{
	{ID: "p1", Name: "Kopi"},
	{ID: "p2", Name: "Kopi Susu"},
	{ID: "p3", Name: "Teh Botol"},
	{ID: "p4", Name: "Teh Celup"},
}

func TestResolveExactWinsOverSubstring(t *testing.T) {
	p, err := Resolve(catalog, productName, "  kopi ", "product")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestResolveSubstringFallback(t *testing.T) {
	p, err := Resolve(catalog, productName, "susu", "product")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve(catalog, productName, "gula", "product")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResolveAmbiguous(t *testing.T) {
	_, err := Resolve(catalog, productName, "teh", "product")
	require.True(t, apperr.Is(err, apperr.KindValidation))
	appErr, _ := apperr.As(err)
	assert.Equal(t, []string{"Teh Botol", "Teh Celup"}, appErr.Details["candidates"])
	assert.Equal(t, ReasonAmbiguous, appErr.Details["reason"])
}

func TestResolveEmptyQuery(t *testing.T) {
	_, err := Resolve(catalog, productName, " ", "product")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
