package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chatify/chatify-api/internal/code"
	"github.com/chatify/chatify-api/internal/model"
	"github.com/chatify/chatify-api/internal/usecase"
)

func newVerificationFixture() (*memoryUserRepo, *fakeMailer, usecase.VerificationUsecase) {
	repo := newMemoryUserRepo()
	mail := &fakeMailer{}
	logger := zerolog.Nop()

	return repo, mail, usecase.NewVerificationUsecase(repo, mail, &logger)
}

func TestGenerateVerificationCode(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	user := repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	before := time.Now()
	issued, err := uc.GenerateVerificationCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, code.IsWellFormed(issued))

	stored := repo.getUser(user.ID.Hex())
	require.Equal(t, issued, stored.VerificationCode)
	require.WithinDuration(t, before.Add(code.TTL), stored.VerificationCodeExpiresAt, time.Second)
}

func TestGenerateVerificationCodeUserNotFound(t *testing.T) {
	_, _, uc := newVerificationFixture()

	_, err := uc.GenerateVerificationCode(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestGenerateVerificationCodeAlreadyVerified(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	repo.addUser(model.User{Username: "johnny", Email: "a@x.com", Verified: true})

	_, err := uc.GenerateVerificationCode(context.Background(), "a@x.com")
	require.ErrorIs(t, err, usecase.ErrEmailAlreadyVerified)
}

func TestVerifyCode(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	user := repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	issued, err := uc.GenerateVerificationCode(context.Background(), "a@x.com")
	require.NoError(t, err)

	require.NoError(t, uc.VerifyCode(context.Background(), "a@x.com", issued))

	stored := repo.getUser(user.ID.Hex())
	require.True(t, stored.Verified)
	require.Empty(t, stored.VerificationCode)
	require.True(t, stored.VerificationCodeExpiresAt.IsZero())

	// The code is single-use: the fields are cleared, so replaying it fails.
	err = uc.VerifyCode(context.Background(), "a@x.com", issued)
	require.ErrorIs(t, err, usecase.ErrInvalidCode)
}

func TestVerifyCodeMismatchLeavesStateUntouched(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	user := repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	issued, err := uc.GenerateVerificationCode(context.Background(), "a@x.com")
	require.NoError(t, err)

	wrong := "100000"
	if wrong == issued {
		wrong = "100001"
	}

	err = uc.VerifyCode(context.Background(), "a@x.com", wrong)
	require.ErrorIs(t, err, usecase.ErrInvalidCode)

	stored := repo.getUser(user.ID.Hex())
	require.False(t, stored.Verified)
	require.Equal(t, issued, stored.VerificationCode)

	// A retry with the right code still succeeds.
	require.NoError(t, uc.VerifyCode(context.Background(), "a@x.com", issued))
}

func TestVerifyCodeExpired(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	user := repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	issued, err := uc.GenerateVerificationCode(context.Background(), "a@x.com")
	require.NoError(t, err)

	repo.mu.Lock()
	repo.users[user.ID.Hex()].VerificationCodeExpiresAt = time.Now().Add(-time.Second)
	repo.mu.Unlock()

	err = uc.VerifyCode(context.Background(), "a@x.com", issued)
	require.ErrorIs(t, err, usecase.ErrInvalidCode)

	require.False(t, repo.getUser(user.ID.Hex()).Verified)
}

func TestVerifyCodeUserNotFound(t *testing.T) {
	_, _, uc := newVerificationFixture()

	err := uc.VerifyCode(context.Background(), "nobody@x.com", "123456")
	require.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestVerifyCodeMalformed(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	err := uc.VerifyCode(context.Background(), "a@x.com", "12345")
	require.ErrorIs(t, err, usecase.ErrInvalidCode)
}

func TestReissueOverwritesPreviousCode(t *testing.T) {
	repo, _, uc := newVerificationFixture()
	repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	first, err := uc.GenerateVerificationCode(context.Background(), "a@x.com")
	require.NoError(t, err)

	var second string
	for {
		second, err = uc.GenerateVerificationCode(context.Background(), "a@x.com")
		require.NoError(t, err)
		if second != first {
			break
		}
	}

	err = uc.VerifyCode(context.Background(), "a@x.com", first)
	require.ErrorIs(t, err, usecase.ErrInvalidCode)

	require.NoError(t, uc.VerifyCode(context.Background(), "a@x.com", second))
}

func TestResendVerificationCode(t *testing.T) {
	repo, mail, uc := newVerificationFixture()
	user := repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})

	require.NoError(t, uc.ResendVerificationCode(context.Background(), "a@x.com"))

	sent := mail.lastSent()
	require.NotNil(t, sent)
	require.Equal(t, "verification", sent.kind)
	require.Equal(t, "a@x.com", sent.to)
	require.Equal(t, repo.getUser(user.ID.Hex()).VerificationCode, sent.code)
}

func TestResendVerificationCodeUserNotFound(t *testing.T) {
	_, _, uc := newVerificationFixture()

	err := uc.ResendVerificationCode(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestResendVerificationCodeDeliveryFailureSwallowed(t *testing.T) {
	repo, mail, uc := newVerificationFixture()
	user := repo.addUser(model.User{Username: "johnny", Email: "a@x.com"})
	mail.err = errors.New("smtp unreachable")

	// Delivery failure must not fail the issue step; the stored code stays
	// valid and a later resend can still deliver it.
	require.NoError(t, uc.ResendVerificationCode(context.Background(), "a@x.com"))
	require.NotEmpty(t, repo.getUser(user.ID.Hex()).VerificationCode)
}
