package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/infrastructure/backend"
	"jo3qma.com/marketplace/internal/infrastructure/httpx"
	"jo3qma.com/marketplace/internal/session"
	"jo3qma.com/marketplace/internal/usecase"
)

func newBackendAccount(t *testing.T, h http.HandlerFunc) *usecase.AccountUsecase {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := backend.NewClient(srv.URL, httpx.NewFetcher(srv.Client(), time.Second, nil))
	return usecase.NewAccountUsecase(backend.NewUserClient(client), nil, nil)
}

func TestLoginController_Submit_endToEnd(t *testing.T) {
	t.Parallel()

	account := newBackendAccount(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/user/login" {
			t.Errorf("request got %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if r.FormValue("username") != "a" || r.FormValue("password") != "b" {
			t.Errorf("form got username=%q password=%q", r.FormValue("username"), r.FormValue("password"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"userInfo":{"id":1,"username":"a","nickname":"A"},"token":"t1"}}`))
	})

	sess := session.NewStore(&memoryKV{})
	nav := &recordingNavigator{}
	alert := &recordingAlerter{}
	c := NewLoginController(account, sess, nav, alert, nil)

	if err := c.Submit(context.Background(), model.Credentials{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	cur, ok := sess.Current()
	if !ok || cur.UserInfo.ID != 1 || cur.Token != "t1" {
		t.Fatalf("session got %+v (ok=%v), want userId=1 token=t1", cur, ok)
	}
	if got := nav.history(); len(got) != 1 || got[0] != "reset:home" {
		t.Fatalf("navigation got %v, want [reset:home]", got)
	}
	if alert.count() != 0 {
		t.Fatalf("alerts got %d, want 0", alert.count())
	}
}

func TestLoginController_Submit_rejectedKeepsSession(t *testing.T) {
	t.Parallel()

	account := newBackendAccount(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"msg":"wrong password"}`))
	})

	sess := newSession(t, &model.UserInfo{ID: 9, Username: "prev"})
	nav := &recordingNavigator{}
	alert := &recordingAlerter{}
	c := NewLoginController(account, sess, nav, alert, nil)

	err := c.Submit(context.Background(), model.Credentials{Username: "a", Password: "x"})
	if !errors.Is(err, model.ErrServerRejected) {
		t.Fatalf("Submit error got %v, want ErrServerRejected", err)
	}
	if a, _ := alert.last(); a.message != "wrong password" {
		t.Fatalf("alert got %+v, want server message", a)
	}
	if st := c.State(); st.ErrorMessage != "wrong password" || st.Submitting {
		t.Fatalf("state got %+v", st)
	}
	if cur, _ := sess.Current(); cur.UserInfo.ID != 9 {
		t.Fatalf("session got %+v, want previous session untouched", cur)
	}
	if len(nav.history()) != 0 {
		t.Fatalf("navigation got %v, want none", nav.history())
	}
}

func TestLoginController_Submit_validationMakesNoCall(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{}
	c := NewLoginController(usecase.NewAccountUsecase(users, nil, nil), session.NewStore(&memoryKV{}), &recordingNavigator{}, &recordingAlerter{}, nil)

	if err := c.Submit(context.Background(), model.Credentials{Username: "a"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Submit error got %v, want ErrValidation", err)
	}
	if users.calls != 0 {
		t.Fatalf("calls got %d, want 0", users.calls)
	}
}

func TestRegisterController_Submit(t *testing.T) {
	t.Parallel()

	account := newBackendAccount(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/register" {
			t.Errorf("path got %q", r.URL.Path)
		}
		_ = r.ParseMultipartForm(1 << 20)
		if r.FormValue("nickname") != "Kim" {
			t.Errorf("nickname got %q", r.FormValue("nickname"))
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"userInfo":{"id":3,"username":"kim","nickname":"Kim"},"token":"t3"}}`))
	})

	sess := session.NewStore(&memoryKV{})
	nav := &recordingNavigator{}
	c := NewRegisterController(account, sess, nav, &recordingAlerter{}, nil)

	mismatch := model.Registration{Username: "kim", Password: "pw", PasswordConfirm: "other", Nickname: "Kim"}
	if err := c.Submit(context.Background(), mismatch); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Submit with mismatched passwords got %v, want ErrValidation", err)
	}

	ok := model.Registration{Username: "kim", Password: "pw", PasswordConfirm: "pw", Nickname: "Kim"}
	if err := c.Submit(context.Background(), ok); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tok, _ := sess.Token(); tok != "t3" {
		t.Fatalf("token got %q, want t3", tok)
	}
	if got := nav.history(); len(got) != 1 || got[0] != "reset:home" {
		t.Fatalf("navigation got %v", got)
	}
}
