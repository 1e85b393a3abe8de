package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/jost305/9jaagents/auth"
)

func TestSignInValidatesPayload(t *testing.T) {
	client := &fakeSessionClient{}
	ops := auth.NewOperations(client, testConfig{})

	err := ops.SignIn(context.Background(), "not-an-email", "secret")
	require.Error(t, err)
	assert.Equal(t, 0, client.signInCalls)

	err = ops.SignIn(context.Background(), "user@9jaagents.com", "")
	require.Error(t, err)
	assert.Equal(t, 0, client.signInCalls)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
}

func TestSignInDelegatesToProvider(t *testing.T) {
	client := &fakeSessionClient{session: sessionFor(principalWithRole("user"))}
	ops := auth.NewOperations(client, testConfig{})

	err := ops.SignIn(context.Background(), "user@9jaagents.com", "User123!")
	require.NoError(t, err)
	assert.Equal(t, 1, client.signInCalls)
}

func TestSignInNormalizesProviderError(t *testing.T) {
	client := &fakeSessionClient{
		signInErr: goerrors.New("Invalid login credentials", goerrors.CategoryAuth),
	}
	ops := auth.NewOperations(client, testConfig{})

	err := ops.SignIn(context.Background(), "user@9jaagents.com", "wrong")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CategoryAuth, richErr.Category)
	assert.Equal(t, 1, client.signInCalls)
}

func TestSignUpPassesAttributes(t *testing.T) {
	client := &fakeSessionClient{}
	ops := auth.NewOperations(client, testConfig{})

	attrs := auth.SignUpAttributes{"first_name": "Ada", "role": "creator"}
	err := ops.SignUp(context.Background(), "ada@9jaagents.com", "Creator123!", attrs)
	require.NoError(t, err)

	assert.Equal(t, 1, client.signUpCalls)
	assert.Equal(t, attrs, client.lastAttrs)
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	client := &fakeSessionClient{}
	ops := auth.NewOperations(client, testConfig{})

	err := ops.SignUp(context.Background(), "ada@9jaagents.com", "short", nil)
	require.Error(t, err)
	assert.Equal(t, 0, client.signUpCalls)
}

func TestSignOutDelegatesToProvider(t *testing.T) {
	client := &fakeSessionClient{}
	ops := auth.NewOperations(client, testConfig{})

	require.NoError(t, ops.SignOut(context.Background()))
	assert.Equal(t, 1, client.signOutCalls)
}

func TestSignOutSurfacesProviderError(t *testing.T) {
	client := &fakeSessionClient{
		signOutErr: goerrors.New("session missing", goerrors.CategoryAuth),
	}
	ops := auth.NewOperations(client, testConfig{})

	err := ops.SignOut(context.Background())
	require.Error(t, err)
	// a single report; operations never retry
	assert.Equal(t, 1, client.signOutCalls)
}

func TestResetPasswordUsesConfiguredRedirect(t *testing.T) {
	client := &fakeSessionClient{}
	ops := auth.NewOperations(client, testConfig{})

	require.NoError(t, ops.ResetPassword(context.Background(), "user@9jaagents.com"))
	assert.Equal(t, 1, client.resetCalls)
	assert.Equal(t, "https://app.test/reset-password", client.lastRedirect)
}

func TestResetPasswordValidatesEmail(t *testing.T) {
	client := &fakeSessionClient{}
	ops := auth.NewOperations(client, testConfig{})

	require.Error(t, ops.ResetPassword(context.Background(), "nope"))
	assert.Equal(t, 0, client.resetCalls)
}

func TestOperationsNeverMutateStore(t *testing.T) {
	client := &fakeSessionClient{}

	store := auth.NewSessionStore(client)
	defer store.Close()

	ops := auth.NewOperations(client, testConfig{})

	// without Start nothing consumes provider events, so any state
	// change here could only come from the operation itself
	_ = ops.SignIn(context.Background(), "user@9jaagents.com", "User123!")

	assert.True(t, store.Loading())
	assert.Nil(t, store.Current())
}
