package utils

import (
	"testing"

	apperrors "marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressRequest struct {
	Road string `json:"road_name_address" validate:"required"`
}

type shopRequest struct {
	Name    string         `json:"shop_name" validate:"required"`
	Address addressRequest `json:"address_info"`
	Photos  []string       `json:"photos" validate:"max=2,dive,url"`
}

func TestValidateStruct_CollectsAllFields(t *testing.T) {
	verrs := ValidateStruct(shopRequest{Photos: []string{"not a url"}})
	require.NotNil(t, verrs)
	require.Len(t, verrs.Errors, 3)

	fields := map[string]string{}
	for _, e := range verrs.Errors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, apperrors.CodeFieldRequired, fields["shop_name"])
	assert.Equal(t, apperrors.CodeFieldRequired, fields["address_info.road_name_address"])
	assert.Equal(t, apperrors.CodeFieldInvalid, fields["photos[0]"])
}

func TestValidateStruct_Valid(t *testing.T) {
	verrs := ValidateStruct(shopRequest{
		Name:    "Kimbap Heaven",
		Address: addressRequest{Road: "12 Dongseong-ro"},
	})
	assert.Nil(t, verrs)
}
