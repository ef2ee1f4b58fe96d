package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplabo/license-portal/internal/api/dto"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username:    "tanaka_01",
		Email:       "tanaka@bplabo.jp",
		EmployeeID:  "TA2666",
		LicenseCode: "BP-6575-4161",
		Password:    "secret-password",
	}
}

func TestRegisterRequestValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Struct(validRegister()))
}

func TestRegisterRequestFieldRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
		field  string
	}{
		{"username too short", func(r *dto.RegisterRequest) { r.Username = "ab" }, "Username"},
		{"username bad chars", func(r *dto.RegisterRequest) { r.Username = "tanaka-01" }, "Username"},
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, "Email"},
		{"lowercase employee id", func(r *dto.RegisterRequest) { r.EmployeeID = "ta2666" }, "EmployeeID"},
		{"employee id too short", func(r *dto.RegisterRequest) { r.EmployeeID = "TA1" }, "EmployeeID"},
		{"malformed license code", func(r *dto.RegisterRequest) { r.LicenseCode = "BP-12-3456" }, "LicenseCode"},
		{"password too short", func(r *dto.RegisterRequest) { r.Password = "short" }, "Password"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := validRegister()
			tc.mutate(&req)

			err := Struct(req)
			var domainErr *apperrors.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
			assert.Contains(t, domainErr.Details, tc.field)
		})
	}
}

func TestUpdateStatusRequiresExplicitBool(t *testing.T) {
	t.Parallel()

	require.Error(t, Struct(dto.UpdateStatusRequest{}))

	active := false
	require.NoError(t, Struct(dto.UpdateStatusRequest{IsActive: &active}))
}
