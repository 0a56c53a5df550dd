package model

import "testing"

func TestItemQuery_Normalize(t *testing.T) {
	t.Parallel()

	got := ItemQuery{CategoryID: -3, SearchKeyword: "  hello \t"}.Normalize()
	if got.CategoryID != AllCategoryID {
		t.Fatalf("CategoryID got %d, want %d", got.CategoryID, AllCategoryID)
	}
	if got.SearchKeyword != "hello" {
		t.Fatalf("SearchKeyword got %q, want %q", got.SearchKeyword, "hello")
	}
}

func TestImageSource_IsRemote(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref  string
		want bool
	}{
		{ref: "https://cdn.example.com/a.jpg", want: true},
		{ref: "HTTP://cdn.example.com/a.jpg", want: true},
		{ref: "/tmp/photo.png", want: false},
		{ref: "file:///tmp/photo.png", want: false},
	}
	for _, tc := range cases {
		if got := (ImageSource{Ref: tc.ref}).IsRemote(); got != tc.want {
			t.Errorf("IsRemote(%q) got %v, want %v", tc.ref, got, tc.want)
		}
	}
}

func TestIdentityPatch_ApplyKeepsOmittedFields(t *testing.T) {
	t.Parallel()

	addr := "Seoul, Jongno-gu 1"
	info := UserInfo{ID: 7, Username: "alice", Nickname: "ali", Addr: "old"}

	got := IdentityPatch{Addr: &addr}.Apply(info)
	want := UserInfo{ID: 7, Username: "alice", Nickname: "ali", Addr: addr}
	if got != want {
		t.Fatalf("Apply got %+v, want %+v", got, want)
	}
}

func TestSession_Valid(t *testing.T) {
	t.Parallel()

	var nilSession *Session
	if nilSession.Valid() {
		t.Fatalf("nil session must not be valid")
	}
	if (&Session{Token: "t"}).Valid() {
		t.Fatalf("session without user id must not be valid")
	}
	if (&Session{UserInfo: UserInfo{ID: 1}}).Valid() {
		t.Fatalf("session without token must not be valid")
	}
	if !(&Session{UserInfo: UserInfo{ID: 1}, Token: "t"}).Valid() {
		t.Fatalf("complete session must be valid")
	}
}
