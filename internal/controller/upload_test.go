package controller

import (
	"context"
	"errors"
	"testing"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/usecase"
)

type uploadFixture struct {
	c     *UploadController
	items *fakeItemRepo
	nav   *recordingNavigator
	alert *recordingAlerter
}

func newUploadFixture(t *testing.T, itemID int64, user *model.UserInfo) uploadFixture {
	t.Helper()

	cats := &fakeCategoryRepo{categories: []*model.Category{{ID: 3, Name: "Digital"}, {ID: 4, Name: "Books"}}}
	items := &fakeItemRepo{upserted: 42, item: &model.Item{
		ItemID:     itemID,
		CategoryID: 4,
		Title:      "Old title",
		Content:    "Old content",
		Price:      1500,
		Images:     []model.Image{{ImgID: 9, URL: "https://cdn.example.com/9.jpg"}},
	}}
	nav := &recordingNavigator{}
	alert := &recordingAlerter{}
	catalog := usecase.NewCatalogUsecase(cats, items)
	c := NewUploadController(itemID, catalog, usecase.NewListingUsecase(items), newSession(t, user), nav, alert, nil)
	return uploadFixture{c: c, items: items, nav: nav, alert: alert}
}

func TestUploadController_Focus_create(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 0, &model.UserInfo{ID: 1})
	if err := f.c.Focus(context.Background()); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	st := f.c.State()
	if len(st.Categories) != 2 || st.Categories[0].IsAll() {
		t.Fatalf("Categories got %+v, want picker without All", st.Categories)
	}
	if st.Form.CategoryID != 3 {
		t.Fatalf("default CategoryID got %d, want 3", st.Form.CategoryID)
	}
	if f.items.callCount() != 0 {
		t.Fatalf("item calls got %d, want 0 for a new item", f.items.callCount())
	}
}

func TestUploadController_Focus_editPrefillsForm(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 12, &model.UserInfo{ID: 1})
	if err := f.c.Focus(context.Background()); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	form := f.c.State().Form
	if form.ItemID != 12 || form.CategoryID != 4 || form.Title != "Old title" || form.Price != "1500" {
		t.Fatalf("Form got %+v", form)
	}
	if len(form.Images) != 1 || form.Images[0].ImgID != 9 || !form.Images[0].IsRemote() {
		t.Fatalf("Images got %+v", form.Images)
	}
}

func TestUploadController_Focus_editMissingItemIsError(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 12, &model.UserInfo{ID: 1})
	f.items.item = nil

	err := f.c.Focus(context.Background())
	if !errors.Is(err, model.ErrServerRejected) {
		t.Fatalf("Focus error got %v, want ErrServerRejected", err)
	}
	st := f.c.State()
	if st.Phase != PhaseError || st.Form.ItemID != 0 || st.Form.Title != "" {
		t.Fatalf("state got %+v, want error phase with an empty form", st)
	}
}

func TestUploadController_Submit_validationMakesNoCall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fill func(c *UploadController)
	}{
		{name: "empty title", fill: func(c *UploadController) { c.SetPrice("100"); c.SetContent("ok") }},
		{name: "empty price", fill: func(c *UploadController) { c.SetTitle("Bike"); c.SetContent("ok") }},
		{name: "empty content", fill: func(c *UploadController) { c.SetTitle("Bike"); c.SetPrice("100") }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newUploadFixture(t, 0, &model.UserInfo{ID: 1})
			_ = f.c.Focus(context.Background())
			tc.fill(f.c)

			_, err := f.c.Submit(context.Background())
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("Submit error got %v, want ErrValidation", err)
			}
			if f.items.callCount() != 0 {
				t.Fatalf("calls got %d, want 0", f.items.callCount())
			}
			if f.alert.count() != 1 {
				t.Fatalf("alerts got %d, want 1", f.alert.count())
			}
			if len(f.nav.history()) != 0 {
				t.Fatalf("navigation got %v, want none", f.nav.history())
			}
		})
	}
}

func TestUploadController_Submit_signedOut(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 0, nil)
	_ = f.c.Focus(context.Background())
	f.c.SetTitle("Bike")
	f.c.SetPrice("100")
	f.c.SetContent("ok")

	_, err := f.c.Submit(context.Background())
	if !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("Submit error got %v, want ErrUnauthenticated", err)
	}
	if f.items.callCount() != 0 {
		t.Fatalf("calls got %d, want 0", f.items.callCount())
	}
}

func TestUploadController_Submit_success(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 0, &model.UserInfo{ID: 1})
	_ = f.c.Focus(context.Background())
	f.c.SetTitle(" Bike ")
	f.c.SetPrice("100")
	f.c.SetContent("Good")
	f.c.SetCategory(4)
	f.c.PickImages("/tmp/a.jpg")

	id, err := f.c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != 42 {
		t.Fatalf("id got %d, want 42", id)
	}
	d := f.items.lastDraft
	if d.Title != "Bike" || d.CategoryID != 4 || len(d.Images) != 1 {
		t.Fatalf("draft got %+v", d)
	}
	if got := f.nav.history(); len(got) != 1 || got[0] != "replace:home" {
		t.Fatalf("navigation got %v, want [replace:home]", got)
	}
	if a, _ := f.alert.last(); a.title != "Saved" {
		t.Fatalf("alert got %+v, want success alert", a)
	}
}

func TestUploadController_Submit_failureKeepsForm(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 0, &model.UserInfo{ID: 1})
	_ = f.c.Focus(context.Background())
	f.c.SetTitle("Bike")
	f.c.SetPrice("100")
	f.c.SetContent("Good")
	f.items.set(nil, model.Rejected("title contains a banned word"))

	if _, err := f.c.Submit(context.Background()); !errors.Is(err, model.ErrServerRejected) {
		t.Fatalf("Submit error got %v, want ErrServerRejected", err)
	}
	a, _ := f.alert.last()
	if a.message != "title contains a banned word" {
		t.Fatalf("alert message got %q, want server message verbatim", a.message)
	}
	st := f.c.State()
	if st.Form.Title != "Bike" || st.Form.Price != "100" {
		t.Fatalf("Form got %+v, want input kept", st.Form)
	}
	if len(f.nav.history()) != 0 {
		t.Fatalf("navigation got %v, want none", f.nav.history())
	}
}

func TestUploadController_PickImages_bounded(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(t, 0, &model.UserInfo{ID: 1})

	if got := f.c.PickImages("1.jpg", "2.jpg", "3.jpg"); got != 3 {
		t.Fatalf("added got %d, want 3", got)
	}
	if f.alert.count() != 0 {
		t.Fatalf("alert shown before reaching the limit")
	}
	if got := f.c.PickImages("4.jpg", "5.jpg", "6.jpg", " "); got != 2 {
		t.Fatalf("added got %d, want 2", got)
	}
	if n := len(f.c.State().Form.Images); n != model.MaxItemImages {
		t.Fatalf("images got %d, want %d", n, model.MaxItemImages)
	}
	if f.alert.count() != 1 {
		t.Fatalf("alerts got %d, want 1", f.alert.count())
	}

	if err := f.c.RemoveImage(0); err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	if imgs := f.c.State().Form.Images; len(imgs) != 4 || imgs[0].Ref != "2.jpg" {
		t.Fatalf("images got %+v", imgs)
	}
	if err := f.c.RemoveImage(9); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("RemoveImage(9) got %v, want ErrValidation", err)
	}
}
