package core

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/go-tether/tether/pkg/errors"
)

type nullController struct{ ControllerBase }

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("gallery", func() Controller { return &nullController{} }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	def, ok := r.Lookup("gallery")
	if !ok {
		t.Fatal("Lookup missed a registered identifier")
	}
	if def.Identifier != "gallery" || def.New == nil {
		t.Errorf("definition = %+v", def)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup found an unregistered identifier")
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()
	ctor := func() Controller { return &nullController{} }

	for _, bad := range []string{"", "Gallery", "image_grid", "-x"} {
		err := r.Register(bad, ctor)
		if err == nil {
			t.Errorf("Register(%q) succeeded, want error", bad)
			continue
		}
		var terr *errors.TetherError
		if !stderrors.As(err, &terr) || terr.Kind != errors.KindRegister {
			t.Errorf("Register(%q) error = %v, want register kind", bad, err)
		}
	}

	if err := r.Register("gallery", nil); err == nil {
		t.Error("Register with nil constructor succeeded")
	}
	if r.Len() != 0 {
		t.Errorf("failed registrations left %d definitions behind", r.Len())
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	type first struct{ ControllerBase }
	type second struct{ ControllerBase }

	r.Register("tabs", func() Controller { return &first{} })
	r.Register("tabs", func() Controller { return &second{} })

	def, _ := r.Lookup("tabs")
	if _, ok := def.New().(*second); !ok {
		t.Error("re-registering should replace the definition")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d after replacement, want 1", r.Len())
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("tabs", func() Controller { return &nullController{} })

	if !r.Unregister("tabs") {
		t.Error("Unregister should report a removed definition")
	}
	if r.Unregister("tabs") {
		t.Error("second Unregister should report nothing to remove")
	}
	if _, ok := r.Lookup("tabs"); ok {
		t.Error("Lookup found an unregistered identifier")
	}
}

func TestIdentifiersSorted(t *testing.T) {
	r := NewRegistry()
	ctor := func() Controller { return &nullController{} }
	for _, id := range []string{"tabs", "cart", "gallery"} {
		r.Register(id, ctor)
	}

	got := r.Identifiers()
	want := []string{"cart", "gallery", "tabs"}
	if len(got) != len(want) {
		t.Fatalf("Identifiers = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Identifiers = %v, want %v", got, want)
		}
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	r := NewRegistry()
	ctor := func() Controller { return &nullController{} }
	ids := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Register(id, ctor)
			r.Lookup(id)
			r.Identifiers()
		}(id)
	}
	wg.Wait()

	if r.Len() != len(ids) {
		t.Errorf("Len = %d, want %d", r.Len(), len(ids))
	}
}
