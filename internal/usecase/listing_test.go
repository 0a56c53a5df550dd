package usecase

import (
	"context"
	"errors"
	"testing"

	"jo3qma.com/marketplace/internal/domain/model"
)

func TestValidateDraft(t *testing.T) {
	t.Parallel()

	valid := model.ItemDraft{Title: " Bike ", Content: "Good", Price: " 1000 "}
	sixImages := make([]model.ImageSource, 6)

	cases := []struct {
		name    string
		mutate  func(d *model.ItemDraft)
		wantErr bool
	}{
		{name: "valid", mutate: func(d *model.ItemDraft) {}},
		{name: "free item", mutate: func(d *model.ItemDraft) { d.Price = "0" }},
		{name: "missing title", mutate: func(d *model.ItemDraft) { d.Title = "  " }, wantErr: true},
		{name: "missing content", mutate: func(d *model.ItemDraft) { d.Content = "" }, wantErr: true},
		{name: "missing price", mutate: func(d *model.ItemDraft) { d.Price = "" }, wantErr: true},
		{name: "non numeric price", mutate: func(d *model.ItemDraft) { d.Price = "12a" }, wantErr: true},
		{name: "decimal price", mutate: func(d *model.ItemDraft) { d.Price = "10.5" }, wantErr: true},
		{name: "negative price", mutate: func(d *model.ItemDraft) { d.Price = "-1" }, wantErr: true},
		{name: "too many images", mutate: func(d *model.ItemDraft) { d.Images = sixImages }, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := valid
			tc.mutate(&d)
			got, err := ValidateDraft(d)
			if tc.wantErr {
				if !errors.Is(err, model.ErrValidation) {
					t.Fatalf("got error %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Title != "Bike" {
				t.Fatalf("Title got %q, want trimmed", got.Title)
			}
		})
	}
}

func TestListingUsecase_Upsert_validationMakesNoCall(t *testing.T) {
	t.Parallel()

	items := &fakeItemRepo{}
	uc := NewListingUsecase(items)

	_, err := uc.Upsert(context.Background(), "tok", model.ItemDraft{Title: "Bike", Content: "Good"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("got error %v, want ErrValidation", err)
	}
	if items.calls != 0 {
		t.Fatalf("calls got %d, want 0", items.calls)
	}
}

func TestListingUsecase_Upsert_requiresToken(t *testing.T) {
	t.Parallel()

	items := &fakeItemRepo{}
	uc := NewListingUsecase(items)

	_, err := uc.Upsert(context.Background(), "", model.ItemDraft{Title: "Bike", Content: "Good", Price: "1"})
	if !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("got error %v, want ErrUnauthenticated", err)
	}
	if items.calls != 0 {
		t.Fatalf("calls got %d, want 0", items.calls)
	}
}

func TestListingUsecase_Upsert_sendsTrimmedDraft(t *testing.T) {
	t.Parallel()

	items := &fakeItemRepo{upserted: 42}
	uc := NewListingUsecase(items)

	id, err := uc.Upsert(context.Background(), "tok", model.ItemDraft{Title: " Bike ", Content: " Good ", Price: " 1000 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("id got %d, want 42", id)
	}
	if items.lastDraft.Price != "1000" || items.lastDraft.Content != "Good" {
		t.Fatalf("draft got %+v", items.lastDraft)
	}
}

func TestListingUsecase_Delete(t *testing.T) {
	t.Parallel()

	rejected := model.Rejected("not yours")
	cases := []struct {
		name      string
		token     string
		id        int64
		repoErr   error
		wantErr   error
		wantCalls int
	}{
		{name: "ok", token: "tok", id: 1, wantCalls: 1},
		{name: "rejected", token: "tok", id: 1, repoErr: rejected, wantErr: model.ErrServerRejected, wantCalls: 1},
		{name: "no token", token: "", id: 1, wantErr: model.ErrUnauthenticated},
		{name: "bad id", token: "tok", id: 0, wantErr: model.ErrValidation},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			items := &fakeItemRepo{err: tc.repoErr}
			err := NewListingUsecase(items).Delete(context.Background(), tc.token, tc.id)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
			if items.calls != tc.wantCalls {
				t.Fatalf("calls got %d, want %d", items.calls, tc.wantCalls)
			}
		})
	}
}
