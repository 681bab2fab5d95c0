package service_test

import (
	"context"
	"errors"
	"testing"

	"accounthub/internal/domain/user"
	"accounthub/internal/security"
	"accounthub/internal/service"
)

// fakeStore implements service.UserStore with per-test hooks.
type fakeStore struct {
	createFn     func(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	getByIDFn    func(ctx context.Context, id int64) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	listFn       func(ctx context.Context) ([]user.User, error)
	updateFn     func(ctx context.Context, id int64, req user.UpdateRequest) (user.User, error)
	deleteFn     func(ctx context.Context, id int64) error
}

func (f *fakeStore) Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, email, passwordHash, role)
	}
	return user.User{}, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, nil
}

func (f *fakeStore) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, req user.UpdateRequest) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return user.User{}, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func TestCreateUser_HashesAndNormalizes(t *testing.T) {
	var gotEmail, gotHash, gotRole string

	store := &fakeStore{
		createFn: func(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
			gotEmail = email
			gotHash = passwordHash
			gotRole = role
			return user.User{ID: 1, Name: name, Email: email, Role: role}, nil
		},
	}

	svc := service.NewAuthService(store)

	_, err := svc.CreateUser(context.Background(), "Ann", "  Ann@X.COM ", "secret1", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if gotEmail != "ann@x.com" {
		t.Fatalf("email not normalized: %q", gotEmail)
	}
	if gotRole != user.RoleUser {
		t.Fatalf("role should default to user, got %q", gotRole)
	}
	if gotHash == "secret1" {
		t.Fatal("password must be hashed before it reaches the store")
	}
	if err := security.CheckPassword(gotHash, "secret1"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateUser_EmailTaken(t *testing.T) {
	store := &fakeStore{
		createFn: func(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
			return user.User{}, user.ErrEmailTaken
		},
	}

	svc := service.NewAuthService(store)

	_, err := svc.CreateUser(context.Background(), "Ann", "a@x.com", "secret1", "user")
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestSignIn_MergedFailureOutcome(t *testing.T) {
	hash, err := security.HashPassword("right-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	known := user.User{ID: 7, Email: "known@x.com", PasswordHash: hash, Role: user.RoleUser}

	store := &fakeStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == "known@x.com" {
				return known, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	svc := service.NewAuthService(store)

	// wrong password for an existing user
	_, errWrongPass := svc.SignIn(context.Background(), "known@x.com", "bad-password")
	// unknown email entirely
	_, errNoUser := svc.SignIn(context.Background(), "ghost@x.com", "whatever")

	if !errors.Is(errWrongPass, user.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", errWrongPass)
	}
	if !errors.Is(errNoUser, user.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", errNoUser)
	}
	// both failures must be indistinguishable to the caller
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("failure outcomes differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestSignIn_Success(t *testing.T) {
	hash, err := security.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := &fakeStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email != "ann@x.com" {
				t.Fatalf("email not normalized before lookup: %q", email)
			}
			return user.User{ID: 3, Email: email, PasswordHash: hash}, nil
		},
	}

	svc := service.NewAuthService(store)

	u, err := svc.SignIn(context.Background(), "Ann@X.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if u.ID != 3 {
		t.Fatalf("got user %d, want 3", u.ID)
	}
}

func TestSignIn_StoreErrorIsNotMasked(t *testing.T) {
	boom := errors.New("connection refused")

	store := &fakeStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, boom
		},
	}

	svc := service.NewAuthService(store)

	_, err := svc.SignIn(context.Background(), "a@x.com", "secret1")
	if errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatal("infrastructure failures must not look like bad credentials")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want underlying store error", err)
	}
}
