package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
	"github.com/sajj-ina/only-code-connect/internal/github"
	"github.com/sajj-ina/only-code-connect/internal/model"
)

// mockAccountRepo mirrors the store's reconciliation semantics in memory:
// one student + account per platform user id, profile refresh on re-link,
// token always overwritten.
type mockAccountRepo struct {
	students map[string]*model.Student // keyed by platform user id
	tokens   map[string]int64          // access token → student id
	nextID   int64
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		students: make(map[string]*model.Student),
		tokens:   make(map[string]int64),
	}
}

func (m *mockAccountRepo) Link(_ context.Context, student *model.Student, account *model.PlatformAccount) error {
	if existing, ok := m.students[account.PlatformUserID]; ok {
		existing.Name = student.Name
		existing.Surname = student.Surname
		existing.Email = student.Email
		student.ID = existing.ID
	} else {
		m.nextID++
		student.ID = m.nextID
		stored := *student
		m.students[account.PlatformUserID] = &stored
	}
	account.StudentID = student.ID

	// Token refresh: drop old tokens for this student, store the new one.
	for tok, id := range m.tokens {
		if id == student.ID {
			delete(m.tokens, tok)
		}
	}
	m.tokens[account.AccessToken] = student.ID
	return nil
}

func (m *mockAccountRepo) StudentIDByToken(_ context.Context, accessToken string) (int64, error) {
	id, ok := m.tokens[accessToken]
	if !ok {
		return 0, apperror.NotFound("Student not found for this access token. Please link your account first.")
	}
	return id, nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id int64) (*model.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			student := *s
			return &student, nil
		}
	}
	return nil, apperror.NotFound(fmt.Sprintf("Student with ID %d not found", id))
}

func serviceTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newFakeGitHub builds a github.Client backed by an httptest server serving
// the given mux for both the OAuth and API endpoints.
func newFakeGitHub(t *testing.T, mux *http.ServeMux) *github.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return github.New(github.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:8080/api/github/callback",
		AuthBaseURL:  srv.URL,
		APIBaseURL:   srv.URL,
	}, serviceTestLogger())
}

// githubStub serves a token exchange plus a /user profile.
func githubStub(token, userJSON string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer"}`, token)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, userJSON)
	})
	return mux
}

// New user, hidden email: one student with the placeholder email, the platform
// user id stored in string form, and the raw upstream token handed back.
func TestHandleCallback_NewUser(t *testing.T) {
	gh := newFakeGitHub(t, githubStub("gho_abc",
		`{"id":42,"login":"octocat","name":null,"email":null}`))
	accounts := newMockAccountRepo()
	svc := NewLinkerService(gh, accounts, accounts, serviceTestLogger())

	result, err := svc.HandleCallback(context.Background(), "abc")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if result.AccessToken != "gho_abc" {
		t.Errorf("AccessToken = %q, want %q", result.AccessToken, "gho_abc")
	}
	if result.Student.Name != "octocat" || result.Student.Surname != "" {
		t.Errorf("name = %q/%q, want octocat with empty surname", result.Student.Name, result.Student.Surname)
	}
	if result.Student.Email != "user_42@github.com" {
		t.Errorf("Email = %q, want placeholder", result.Student.Email)
	}
	if result.Student.University != "Not Provided (GitHub)" {
		t.Errorf("University = %q", result.Student.University)
	}

	stored, ok := accounts.students["42"]
	if !ok {
		t.Fatal("no account stored under platform user id \"42\"")
	}
	if stored.ID != result.Student.ID {
		t.Errorf("stored student id = %d, want %d", stored.ID, result.Student.ID)
	}
	if id, err := accounts.StudentIDByToken(context.Background(), "gho_abc"); err != nil || id != stored.ID {
		t.Errorf("token not stored: id=%d err=%v", id, err)
	}
}

// A second login for the same platform identity refreshes the profile instead
// of creating a second student, and replaces the stored token.
func TestHandleCallback_ExistingUserRefreshed(t *testing.T) {
	accounts := newMockAccountRepo()

	first := NewLinkerService(newFakeGitHub(t, githubStub("gho_one",
		`{"id":42,"login":"octocat","name":null,"email":null}`)), accounts, accounts, serviceTestLogger())
	if _, err := first.HandleCallback(context.Background(), "abc"); err != nil {
		t.Fatalf("first HandleCallback() error = %v", err)
	}

	second := NewLinkerService(newFakeGitHub(t, githubStub("gho_two",
		`{"id":42,"login":"octocat","name":"Mona Lisa Octocat","email":"mona@example.com"}`)), accounts, accounts, serviceTestLogger())
	result, err := second.HandleCallback(context.Background(), "def")
	if err != nil {
		t.Fatalf("second HandleCallback() error = %v", err)
	}

	if len(accounts.students) != 1 {
		t.Fatalf("students = %d, want 1", len(accounts.students))
	}
	stored := accounts.students["42"]
	if stored.Name != "Mona" || stored.Surname != "Octocat" || stored.Email != "mona@example.com" {
		t.Errorf("profile not refreshed: %+v", stored)
	}
	if result.AccessToken != "gho_two" {
		t.Errorf("AccessToken = %q, want the fresh token", result.AccessToken)
	}
	if _, err := accounts.StudentIDByToken(context.Background(), "gho_one"); err == nil {
		t.Error("stale token still resolves")
	}
}

// A failed exchange must surface before any write.
func TestHandleCallback_ExchangeFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad_verification_code","error_description":"expired"}`)
	})
	accounts := newMockAccountRepo()
	svc := NewLinkerService(newFakeGitHub(t, mux), accounts, accounts, serviceTestLogger())

	_, err := svc.HandleCallback(context.Background(), "stale")
	if err == nil {
		t.Fatal("HandleCallback() should fail on a bad code")
	}
	if len(accounts.students) != 0 || len(accounts.tokens) != 0 {
		t.Error("store was written despite a failed exchange")
	}
}

func TestStudent_ByToken(t *testing.T) {
	gh := newFakeGitHub(t, githubStub("gho_abc",
		`{"id":42,"login":"octocat","name":"Mona Octocat","email":"mona@example.com"}`))
	accounts := newMockAccountRepo()
	svc := NewLinkerService(gh, accounts, accounts, serviceTestLogger())

	if _, err := svc.HandleCallback(context.Background(), "abc"); err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	student, err := svc.Student(context.Background(), "gho_abc")
	if err != nil {
		t.Fatalf("Student() error = %v", err)
	}
	if student.Name != "Mona" || student.Email != "mona@example.com" {
		t.Errorf("Student() = %+v", student)
	}

	if _, err := svc.Student(context.Background(), "gho_unknown"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Student() with unknown token error = %v, want ErrNotFound", err)
	}
}

func TestStudentFromProfile(t *testing.T) {
	tests := []struct {
		name        string
		profile     github.Profile
		wantName    string
		wantSurname string
		wantEmail   string
	}{
		{
			name:        "full name splits into first and last",
			profile:     github.Profile{ID: 1, Login: "mona", Name: "Mona Lisa Octocat", Email: "m@x.com"},
			wantName:    "Mona",
			wantSurname: "Octocat",
			wantEmail:   "m@x.com",
		},
		{
			name:        "single-token name has no surname",
			profile:     github.Profile{ID: 1, Login: "mona", Name: "Mona", Email: "m@x.com"},
			wantName:    "Mona",
			wantSurname: "",
			wantEmail:   "m@x.com",
		},
		{
			name:        "missing name falls back to login",
			profile:     github.Profile{ID: 7, Login: "octocat"},
			wantName:    "octocat",
			wantSurname: "",
			wantEmail:   "user_7@github.com",
		},
		{
			name:        "hidden email becomes placeholder",
			profile:     github.Profile{ID: 42, Login: "octocat", Name: "Mona Octocat"},
			wantName:    "Mona",
			wantSurname: "Octocat",
			wantEmail:   "user_42@github.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := studentFromProfile(&tt.profile)
			if s.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", s.Name, tt.wantName)
			}
			if s.Surname != tt.wantSurname {
				t.Errorf("Surname = %q, want %q", s.Surname, tt.wantSurname)
			}
			if s.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", s.Email, tt.wantEmail)
			}
		})
	}
}
