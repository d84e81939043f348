package user

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/platform/apperror"
	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	var matched []*User
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.FullName), strings.ToLower(f.Search)) &&
			!strings.Contains(strings.ToLower(u.Email), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, u)
	}
	total := len(matched)
	if offset > total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

var testJWT = auth.JWTConfig{Secret: []byte("test-secret-for-user-service-tests"), TTL: time.Hour}

func newTestService() *Service {
	return NewService(newMockRepo(), testJWT)
}

func validUser() *User {
	return &User{
		Email:    "dr.mensah@hospital.test",
		Password: "s3cret-pass",
		FullName: "Dr. Ama Mensah",
		Role:     RoleDoctor,
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), validUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Password != "" {
		t.Error("plaintext password retained")
	}
	if created.PasswordHash == "" || created.PasswordHash == "s3cret-pass" {
		t.Error("password not hashed")
	}
	if !created.Active {
		t.Error("new user not active")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService()
	cases := []struct {
		name   string
		mutate func(*User)
	}{
		{"bad email", func(u *User) { u.Email = "not-an-email" }},
		{"missing name", func(u *User) { u.FullName = "" }},
		{"bad role", func(u *User) { u.Role = "surgeon" }},
		{"short password", func(u *User) { u.Password = "short" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := validUser()
			tc.mutate(u)
			_, err := svc.Create(context.Background(), u)
			if apperror.KindOf(err) != apperror.KindValidation {
				t.Errorf("err = %v, want validation kind", err)
			}
		})
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Create(context.Background(), validUser()); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(context.Background(), validUser())
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("err = %v, want conflict kind", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), validUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	token, u, err := svc.Login(context.Background(), "dr.mensah@hospital.test", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != created.ID {
		t.Error("wrong user returned")
	}

	claims, err := auth.ParseToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != created.ID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, created.ID)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("role = %q, want doctor", claims.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), validUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "nobody@hospital.test", "s3cret-pass"); apperror.KindOf(err) != apperror.KindUnauthorized {
		t.Errorf("unknown email err = %v, want unauthorized kind", err)
	}
	if _, _, err := svc.Login(context.Background(), created.Email, "wrong-pass"); apperror.KindOf(err) != apperror.KindUnauthorized {
		t.Errorf("wrong password err = %v, want unauthorized kind", err)
	}

	inactive := false
	if _, err := svc.Update(context.Background(), created.ID, Update{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), created.Email, "s3cret-pass"); apperror.KindOf(err) != apperror.KindUnauthorized {
		t.Errorf("inactive user err = %v, want unauthorized kind", err)
	}
}

func TestPasswordNeverSerialized(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), validUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	raw, err := json.Marshal(created)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), created.PasswordHash) {
		t.Errorf("serialized user leaks password material: %s", raw)
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	svc := newTestService()
	created, err := svc.Create(context.Background(), validUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	bad := "janitor"
	_, err = svc.Update(context.Background(), created.ID, Update{Role: &bad})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}
}
