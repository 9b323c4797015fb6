package service_test

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/stretchr/testify/require"
)

func TestCreateUserAndLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	created, err := e.users.CreateUser(ctx, service.CreateUserRequest{
		Name:     "Kiran",
		Email:    "Kiran@Example.Com",
		Mobile:   "9000000001",
		Password: "secret12",
		Role:     model.RoleCutting,
	})
	require.NoError(t, err)
	require.Equal(t, "kiran@example.com", created.Email)
	require.NotEmpty(t, created.ReferralCode)

	// Login works with the email or the mobile number.
	byEmail, err := e.users.Login(ctx, service.LoginRequest{Identifier: "kiran@example.com", Password: "secret12"})
	require.NoError(t, err)
	require.NotEmpty(t, byEmail.Token)
	require.Equal(t, created.ID, byEmail.User.ID)

	byMobile, err := e.users.Login(ctx, service.LoginRequest{Identifier: "9000000001", Password: "secret12"})
	require.NoError(t, err)
	require.Equal(t, created.ID, byMobile.User.ID)

	_, err = e.users.Login(ctx, service.LoginRequest{Identifier: "kiran@example.com", Password: "wrong"})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	// Duplicate identities are rejected.
	_, err = e.users.CreateUser(ctx, service.CreateUserRequest{
		Name: "Kiran Two", Email: "kiran@example.com", Mobile: "9000000002",
		Password: "secret12", Role: model.RoleCutting,
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.users.CreateUser(ctx, service.CreateUserRequest{
		Name: "Kiran Three", Email: "other@example.com", Mobile: "9000000001",
		Password: "secret12", Role: model.RoleCutting,
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateUserValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.users.CreateUser(ctx, service.CreateUserRequest{
		Name: "X", Email: "x@example.com", Mobile: "9000000010",
		Password: "secret12", Role: "JANITOR",
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.users.CreateUser(ctx, service.CreateUserRequest{
		Name: "X", Email: "x@example.com", Mobile: "9000000010",
		Password: "secret12", Role: model.RoleShowroom, WalletPIN: "12a4",
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = e.users.CreateUser(ctx, service.CreateUserRequest{
		Name: "X", Email: "x@example.com", Mobile: "9000000010",
		Password: "secret12", Role: model.RoleCutting, ReferredByCode: "REF-NOPE",
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestReferredByCodeBuildsChain(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sponsor := e.createUser(t, "Sponsor", model.RoleManager, nil)

	created, err := e.users.CreateUser(ctx, service.CreateUserRequest{
		Name: "Recruit", Email: "recruit@example.com", Mobile: "9000000020",
		Password: "secret12", Role: model.RoleStitching, ReferredByCode: sponsor.ReferralCode,
	})
	require.NoError(t, err)
	require.Equal(t, sponsor.ID.String(), created.ReferredBy)

	team, err := e.referrals.Team(ctx, sponsor.ID)
	require.NoError(t, err)
	require.Len(t, team, 1)
	require.Equal(t, "Recruit", team[0].Name)
	require.Equal(t, 1, team[0].Level)
}

func TestUpdateUserRejectsSponsorCycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.createUser(t, "Upline", model.RoleManager, nil)
	b := e.createUser(t, "Downline", model.RoleStitching, &a.ID)

	// Assigning the downline's code to the upline would form a cycle.
	_, err := e.users.UpdateUser(ctx, a.ID.String(), service.UpdateUserRequest{ReferredByCode: b.ReferralCode})
	require.ErrorIs(t, err, service.ErrValidation)

	// Self-sponsorship is rejected outright.
	_, err = e.users.UpdateUser(ctx, a.ID.String(), service.UpdateUserRequest{ReferredByCode: a.ReferralCode})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestNetworkStats(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	root := e.createUser(t, "Root", model.RoleManager, nil)
	childA := e.createUser(t, "Child A", model.RoleStitching, &root.ID)
	childB := e.createUser(t, "Child B", model.RoleCutting, &root.ID)
	e.createUser(t, "Grandchild", model.RoleFinishing, &childA.ID)
	_ = childB

	stats, err := e.referrals.NetworkStats(ctx, root.ID)
	require.NoError(t, err)
	require.Equal(t, root.ReferralCode, stats.ReferralCode)
	require.Equal(t, 2, stats.DirectReferrals)
	require.Len(t, stats.Levels, 6)
	require.Equal(t, 2, stats.Levels[0].Members)
	require.Equal(t, 1, stats.Levels[1].Members)
	require.Equal(t, 0, stats.Levels[2].Members)
}
