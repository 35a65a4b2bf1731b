package usecase_test

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chatify/chatify-api/internal/model"
	"github.com/chatify/chatify-api/internal/repository"
)

// memoryUserRepo is an in-memory UserRepository mirroring the mongo
// implementation's semantics: mongo.ErrNoDocuments on missing matches and
// conditional confirm updates that only apply while the pending group still
// holds the given code unexpired.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*model.User)}
}

func (m *memoryUserRepo) addUser(user model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	m.users[user.ID.Hex()] = &user

	copied := user
	return &copied
}

func (m *memoryUserRepo) getUser(id string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied
	}

	return nil
}

func (m *memoryUserRepo) findByEmailLocked(email string) *model.User {
	for _, user := range m.users {
		if user.Email == email {
			return user
		}
	}

	return nil
}

func (m *memoryUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findByEmailLocked(user.Email) != nil {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}

	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	m.users[user.ID.Hex()] = &copied

	return user, nil
}

func (m *memoryUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.findByEmailLocked(email)
	if user == nil {
		return nil, mongo.ErrNoDocuments
	}

	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.LastLoginAt = time.Now()
	return nil
}

func (m *memoryUserRepo) SetVerificationCode(
	_ context.Context,
	email, code string,
	expiresAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.findByEmailLocked(email)
	if user == nil {
		return mongo.ErrNoDocuments
	}

	user.VerificationCode = code
	user.VerificationCodeExpiresAt = expiresAt
	return nil
}

func (m *memoryUserRepo) ConfirmVerification(
	_ context.Context,
	email, code string,
	now time.Time,
) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.findByEmailLocked(email)
	if user == nil || user.VerificationCode == "" || user.VerificationCode != code ||
		!now.Before(user.VerificationCodeExpiresAt) {
		return nil, mongo.ErrNoDocuments
	}

	user.Verified = true
	user.VerificationCode = ""
	user.VerificationCodeExpiresAt = time.Time{}

	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) SetEmailChangeCode(
	_ context.Context,
	id, pendingEmail, code string,
	expiresAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.PendingEmail = pendingEmail
	user.EmailChangeCode = code
	user.EmailChangeCodeExpiresAt = expiresAt
	return nil
}

func (m *memoryUserRepo) ConfirmEmailChange(
	_ context.Context,
	id, pendingEmail, code string,
	now time.Time,
) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok || user.PendingEmail != pendingEmail || user.EmailChangeCode == "" ||
		user.EmailChangeCode != code || !now.Before(user.EmailChangeCodeExpiresAt) {
		return nil, mongo.ErrNoDocuments
	}

	user.Email = user.PendingEmail
	user.PendingEmail = ""
	user.EmailChangeCode = ""
	user.EmailChangeCodeExpiresAt = time.Time{}

	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) SetPasswordResetCode(
	_ context.Context,
	email, code string,
	expiresAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.findByEmailLocked(email)
	if user == nil {
		return mongo.ErrNoDocuments
	}

	user.PasswordResetCode = code
	user.PasswordResetExpiresAt = expiresAt
	return nil
}

func (m *memoryUserRepo) ConsumePasswordResetCode(
	_ context.Context,
	email, code, passwordHash string,
	now time.Time,
) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.findByEmailLocked(email)
	if user == nil || user.PasswordResetCode == "" || user.PasswordResetCode != code ||
		!now.Before(user.PasswordResetExpiresAt) {
		return nil, mongo.ErrNoDocuments
	}

	user.PasswordHash = passwordHash
	user.PasswordResetCode = ""
	user.PasswordResetExpiresAt = time.Time{}

	copied := *user
	return &copied, nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *memorySessionRepo) CreateSession(_ context.Context, session *model.Session) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.ID = bson.NewObjectID()
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt

	copied := *session
	m.sessions[session.ID.Hex()] = &copied

	return session, nil
}

func (m *memorySessionRepo) GetSessionByUserID(_ context.Context, userID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.sessions {
		if session.UserID == userID {
			copied := *session
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (m *memorySessionRepo) UpdateTokens(
	_ context.Context,
	id string,
	params repository.UpdateTokensParams,
) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	session.AccessToken = params.AccessToken
	session.RefreshToken = params.RefreshToken
	session.AccessTokenExpiresAt = params.AccessTokenExpiresAt
	session.RefreshTokenExpiresAt = params.RefreshTokenExpiresAt

	copied := *session
	return &copied, nil
}

// sentEmail records one call to the fake mailer.
type sentEmail struct {
	kind     string
	to       string
	username string
	newEmail string
	code     string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeMailer) SendVerificationCode(to, username, code string) error {
	return f.record(sentEmail{kind: "verification", to: to, username: username, code: code})
}

func (f *fakeMailer) SendEmailChangeCode(to, username, newEmail, code string) error {
	return f.record(sentEmail{kind: "email_change", to: to, username: username, newEmail: newEmail, code: code})
}

func (f *fakeMailer) SendPasswordResetCode(to, username, code string) error {
	return f.record(sentEmail{kind: "password_reset", to: to, username: username, code: code})
}

func (f *fakeMailer) record(email sentEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailer) lastSent() *sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.sent) == 0 {
		return nil
	}

	copied := f.sent[len(f.sent)-1]
	return &copied
}
