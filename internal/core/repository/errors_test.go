package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func TestErrorHierarchy(t *testing.T) {
	storeKinds := []Kind{KindConnection, KindIntegrity, KindData, KindOperational, KindTimeout, KindQuery, KindInternal}
	for _, k := range storeKinds {
		err := fmt.Errorf("ctx: %w", &Error{Kind: k, Detail: "d"})
		if !errors.Is(err, ErrStore) || !errors.Is(err, ErrRepository) {
			t.Errorf("%s should refine store and repository", k)
		}
		if errors.Is(err, ErrObjectNotFound) {
			t.Errorf("%s must not be not-found", k)
		}
	}

	nf := NotFound("User", uuid.New())
	if !errors.Is(nf, ErrObjectNotFound) || !errors.Is(nf, ErrRepository) {
		t.Error("not found should refine repository")
	}
	if errors.Is(nf, ErrStore) {
		t.Error("not found must not refine store")
	}

	if errors.Is(&Error{Kind: KindIntegrity, Detail: "a"}, ErrData) {
		t.Error("siblings must not match")
	}
	if errors.Is(ErrStore, ErrIntegrity) {
		t.Error("a parent must not match a child")
	}
	// only detail-less sentinels act as match targets
	if errors.Is(&Error{Kind: KindData, Detail: "a"}, &Error{Kind: KindData, Detail: "b"}) {
		t.Error("detailed errors are not sentinels")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(errors.Wrap(ErrTimeout, "slow")); got != KindTimeout {
		t.Fatalf("got %s", got)
	}
	if got := KindOf(errors.New("plain")); got != KindRepository {
		t.Fatalf("got %s", got)
	}
	if KindNotFound.String() != "not_found" || Kind(200).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrTimeout.Error(); got != "repository: timeout error" {
		t.Fatalf("got %q", got)
	}
	id := uuid.MustParse("6f1c2a5e-2b7a-4c1e-9d53-0d3f3e7a9b10")
	if got := NotFound("Order", id).Error(); got != "Order with id: 6f1c2a5e-2b7a-4c1e-9d53-0d3f3e7a9b10 not found" {
		t.Fatalf("got %q", got)
	}
}
