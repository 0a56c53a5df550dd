package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"testing"
)

func TestRun_withoutCommandPrintsUsage(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	if code := run(nil, nil, io.Discard, &stderr); code != 2 {
		t.Fatalf("exit code got %d, want 2", code)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("usage: market")) {
		t.Fatalf("stderr got %q", stderr.String())
	}
}

func TestDispatch_usageErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cmd  string
		args []string
	}{
		{name: "unknown command", cmd: "buy"},
		{name: "item without id", cmd: "item"},
		{name: "item with bad id", cmd: "item", args: []string{"abc"}},
		{name: "delete with two ids", cmd: "delete", args: []string{"1", "2"}},
		{name: "address without text", cmd: "address"},
		{name: "hospitals with bad sort", cmd: "hospitals", args: []string{"-sort", "name", "clinic"}},
		{name: "hospitals with half coordinates", cmd: "hospitals", args: []string{"-x", "127", "clinic"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := dispatch(context.Background(), nil, tc.cmd, tc.args, io.Discard)
			var ue usageError
			if !errors.As(err, &ue) {
				t.Fatalf("got %v, want usageError", err)
			}
		})
	}
}

func TestDispatch_unknownFlag(t *testing.T) {
	t.Parallel()

	err := dispatch(context.Background(), nil, "items", []string{"-bogus"}, io.Discard)
	if err == nil || errors.As(err, new(usageError)) {
		t.Fatalf("got %v, want a flag parse error", err)
	}
}

func TestCoordFlags(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	loc := coordFlags(fs)
	if err := fs.Parse([]string{"-x", "126.97", "-y", "37.57"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	at, err := loc()
	if err != nil {
		t.Fatalf("loc: %v", err)
	}
	if at == nil || at.X != 126.97 || at.Y != 37.57 {
		t.Fatalf("coordinates got %+v", at)
	}

	empty := flag.NewFlagSet("t", flag.ContinueOnError)
	none := coordFlags(empty)
	_ = empty.Parse(nil)
	if at, err := none(); at != nil || err != nil {
		t.Fatalf("got %+v, %v; want nil, nil", at, err)
	}
}

func TestStringList(t *testing.T) {
	t.Parallel()

	var s stringList
	_ = s.Set("a.jpg")
	_ = s.Set("b.jpg")
	if s.String() != "a.jpg,b.jpg" {
		t.Fatalf("got %q", s.String())
	}
}
