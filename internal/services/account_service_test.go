package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sampahku/internal/models"
)

func newAccountService(f *fixture) *AccountService {
	return NewAccountService(f.deps, &BcryptHasher{Cost: bcrypt.MinCost})
}

func rtInput(username, rt, rw string) RTAccountInput {
	return RTAccountInput{Username: username, Password: "rahasia123", Name: "Pak " + username, RT: rt, RW: rw}
}

func TestCreateRTAccount(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	ctx := context.Background()

	acc, err := svc.CreateRTAccount(ctx, rtInput("rt01", "01", "02"))
	require.NoError(t, err)
	assert.NotEmpty(t, acc.ID)
	assert.Empty(t, acc.PasswordHash, "returned account carries no credentials")
	assert.Nil(t, acc.LastLogin)

	stored, err := f.repos.Accounts.GetRT(ctx, acc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("rahasia123")))

	_, err = svc.CreateRTAccount(ctx, rtInput("rt01", "03", "02"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	tests := []struct {
		name  string
		in    RTAccountInput
		field string
	}{
		{"short username", rtInput("ab", "01", "02"), "username"},
		{"letters in RT", rtInput("rt09", "0A", "02"), "rt"},
		{"missing RW", rtInput("rt09", "01", ""), "rw"},
		{"short password", RTAccountInput{Username: "rt09", Password: "pendek", RT: "01", RW: "02"}, "password"},
		{"bad email", RTAccountInput{Username: "rt09", Password: "rahasia123", Email: "bukan-email", RT: "01", RW: "02"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRTAccount(ctx, tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestAuthenticateRT(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	ctx := context.Background()
	acc, err := svc.CreateRTAccount(ctx, rtInput("rt01", "01", "02"))
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, models.RoleRT, "rt01", "salah-sandi")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	stored, err := f.repos.Accounts.GetRT(ctx, acc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLogin, "failed sign-in leaves lastLogin alone")

	p, err := svc.Authenticate(ctx, models.RoleRT, " rt01 ", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: acc.ID, Role: models.RoleRT, Name: "Pak rt01", RT: "01", RW: "02"}, *p)

	stored, err = f.repos.Accounts.GetRT(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(testNow))

	_, err = svc.Authenticate(ctx, models.RoleRT, "nobody", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, models.RoleCitizen, "rt01", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRT_Deactivated(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	ctx := context.Background()
	acc, err := svc.CreateRTAccount(ctx, rtInput("rt01", "01", "02"))
	require.NoError(t, err)

	updated, err := svc.SetRTAccountDeactivated(ctx, acc.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsDeactivated)

	_, err = svc.Authenticate(ctx, models.RoleRT, "rt01", "salah-sandi")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "wrong password does not reveal the account state")
	_, err = svc.Authenticate(ctx, models.RoleRT, "rt01", "rahasia123")
	assert.ErrorIs(t, err, ErrAccountDeactivated)

	_, err = svc.SetRTAccountDeactivated(ctx, acc.ID, false)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, models.RoleRT, "rt01", "rahasia123")
	assert.NoError(t, err)
}

func TestAuthenticateRT_UpgradesLegacyPassword(t *testing.T) {
	f := newFixture(t)
	f.put(t, models.CollectionRTAccounts, "legacy", models.RTAccount{Username: "rtlama", Password: "sandi-lama-1", RT: "04", RW: "02"})
	svc := newAccountService(f)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, models.RoleRT, "rtlama", "sandi-salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	p, err := svc.Authenticate(ctx, models.RoleRT, "rtlama", "sandi-lama-1")
	require.NoError(t, err)
	assert.Equal(t, "rtlama", p.Name)

	stored, err := f.repos.Accounts.GetRT(ctx, "legacy")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)
	assert.NotEmpty(t, stored.PasswordHash)

	_, err = svc.Authenticate(ctx, models.RoleRT, "rtlama", "sandi-lama-1")
	assert.NoError(t, err, "hashed password still signs in")
}

func TestUpdateRTAccount(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	ctx := context.Background()
	a, err := svc.CreateRTAccount(ctx, rtInput("rt01", "01", "02"))
	require.NoError(t, err)
	_, err = svc.CreateRTAccount(ctx, rtInput("rt03", "03", "02"))
	require.NoError(t, err)

	taken := "rt03"
	_, err = svc.UpdateRTAccount(ctx, a.ID, RTAccountUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	same := "rt01"
	name := "Bu Sri"
	password := "sandi-baru-99"
	updated, err := svc.UpdateRTAccount(ctx, a.ID, RTAccountUpdate{Username: &same, Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Bu Sri", updated.Name)
	assert.Empty(t, updated.PasswordHash)

	_, err = svc.Authenticate(ctx, models.RoleRT, "rt01", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, models.RoleRT, "rt01", "sandi-baru-99")
	assert.NoError(t, err)

	_, err = svc.UpdateRTAccount(ctx, "missing", RTAccountUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListAndDeleteRTAccounts(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	ctx := context.Background()
	for _, in := range []RTAccountInput{rtInput("rt05w3", "05", "03"), rtInput("rt02w2", "02", "02"), rtInput("rt01w3", "01", "03")} {
		_, err := svc.CreateRTAccount(ctx, in)
		require.NoError(t, err)
	}

	list, err := svc.ListRTAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"rt02w2", "rt01w3", "rt05w3"}, []string{list[0].Username, list[1].Username, list[2].Username})
	for _, a := range list {
		assert.Empty(t, a.PasswordHash)
	}

	require.NoError(t, svc.DeleteRTAccount(ctx, list[0].ID))
	assert.ErrorIs(t, svc.DeleteRTAccount(ctx, list[0].ID), ErrAccountNotFound)
	_, err = svc.GetRTAccount(ctx, list[0].ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAdminAccount(t *testing.T) {
	f := newFixture(t)
	svc := newAccountService(f)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, models.RoleAdmin, "admin", "rahasia-admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "no admin provisioned yet")

	require.NoError(t, svc.ProvisionAdmin(ctx, "admin", "rahasia-admin"))
	assert.EqualError(t, svc.ProvisionAdmin(ctx, "admin2", "rahasia-admin"), "admin account already provisioned")

	_, err = svc.Authenticate(ctx, models.RoleAdmin, "Admin", "rahasia-admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	p, err := svc.Authenticate(ctx, models.RoleAdmin, "admin", "rahasia-admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.Equal(t, models.AdminDocumentID, p.ID)

	admin, err := f.repos.Accounts.GetAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin.LastLogin)

	require.NoError(t, svc.UpdateAdminCredentials(ctx, "kelurahan", "sandi-admin-2"))
	_, err = svc.Authenticate(ctx, models.RoleAdmin, "admin", "rahasia-admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, models.RoleAdmin, "kelurahan", "sandi-admin-2")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateAdminCredentials(ctx, "", ""), ErrRequiredFields)
}
