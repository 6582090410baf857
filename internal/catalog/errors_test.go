package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"filmloc/internal/catalog"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	cases := []struct {
		name string
		err  error
		want catalog.Kind
	}{
		{"nil", nil, catalog.KindUnknown},
		{"plain", base, catalog.KindUnknown},
		{"transient", catalog.Transient("lookup", base), catalog.KindTransient},
		{"wrapped transient", fmt.Errorf("outer: %w", catalog.Transient("lookup", base)), catalog.KindTransient},
		{"integrity", catalog.Integrity("insert", base), catalog.KindIntegrity},
		{"deadline", context.DeadlineExceeded, catalog.KindTransient},
		{"canceled", catalog.Transient("lookup", context.Canceled), catalog.KindUnknown},
	}
	for _, tc := range cases {
		if got := catalog.KindOf(tc.err); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	err := catalog.Integrity("insert production", catalog.ErrConflict)
	if err.Error() != "insert production: natural key conflict" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, catalog.ErrConflict) {
		t.Fatal("expected errors.Is to reach ErrConflict")
	}
	if catalog.Transient("x", nil) != nil {
		t.Fatal("expected nil passthrough")
	}
}
