package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/jost305/9jaagents/auth"
)

func TestDestinationForRole(t *testing.T) {
	policy := auth.NewNavigationPolicy(auth.NavigatorFunc(func(string) {}), testConfig{})

	assert.Equal(t, "/admin", policy.DestinationFor(auth.RoleAdmin))
	assert.Equal(t, "/creator/dashboard", policy.DestinationFor(auth.RoleCreator))
	assert.Equal(t, "/dashboard", policy.DestinationFor(auth.RoleUser))
	assert.Equal(t, "/dashboard", policy.DestinationFor(auth.RoleGuest))
	assert.Equal(t, "/dashboard", policy.DestinationFor(auth.Role("superuser")))
}

func TestNavigationOnSignIn(t *testing.T) {
	client := &fakeSessionClient{}
	store := settledStore(t, client)

	nav := &recordingNavigator{}
	policy := auth.NewNavigationPolicy(nav, testConfig{})

	detach, err := policy.Attach(store)
	require.NoError(t, err)
	defer detach()

	client.Emit(auth.EventSignedIn, sessionFor(principalWithRole("admin")))

	assert.Eventually(t, func() bool {
		return len(nav.Destinations()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"/admin"}, nav.Destinations())
}

func TestNavigationIgnoresTokenRefresh(t *testing.T) {
	principal := principalWithRole("creator")
	client := &fakeSessionClient{session: sessionFor(principal)}
	store := settledStore(t, client)

	nav := &recordingNavigator{}
	policy := auth.NewNavigationPolicy(nav, testConfig{})

	detach, err := policy.Attach(store)
	require.NoError(t, err)
	defer detach()

	client.Emit(auth.EventTokenRefreshed, sessionFor(principal))

	// give the apply loop a chance to deliver
	require.Eventually(t, func() bool {
		return store.Current() != nil
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, nav.Destinations())
}

func TestNavigationOnSignOut(t *testing.T) {
	principal := principalWithRole("user")
	client := &fakeSessionClient{session: sessionFor(principal)}
	store := settledStore(t, client)

	nav := &recordingNavigator{}
	policy := auth.NewNavigationPolicy(nav, testConfig{})

	detach, err := policy.Attach(store)
	require.NoError(t, err)
	defer detach()

	client.Emit(auth.EventSignedOut, nil)

	assert.Eventually(t, func() bool {
		return len(nav.Destinations()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"/"}, nav.Destinations())
}

func TestNavigationAttachAfterCloseFails(t *testing.T) {
	client := &fakeSessionClient{}
	store := auth.NewSessionStore(client)
	store.Start(context.Background())
	store.Close()

	policy := auth.NewNavigationPolicy(&recordingNavigator{}, testConfig{})

	_, err := policy.Attach(store)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrStoreClosed)
}
