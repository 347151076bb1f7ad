package modules

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/douglasjordan2/dougless/internal/permissions"
)

func TestHrtimeNow_Allowed_ReturnsSecondsAndNanos(t *testing.T) {
	permissions.SetGlobal(permissions.AllowAll())

	vm := goja.New()
	h := NewHrtime()
	vm.Set("hrtime", h.Export(vm))

	result, err := vm.RunString("hrtime()")
	if err != nil {
		t.Fatalf("hrtime() call failed: %v", err)
	}

	pair, ok := result.Export().([]int64)
	if !ok {
		t.Fatalf("expected a []int64 result, got %T", result.Export())
	}
	if len(pair) != 2 {
		t.Fatalf("expected a 2-element [seconds, nanoseconds] pair, got %v", pair)
	}
	if pair[0] < 0 || pair[1] < 0 {
		t.Fatalf("expected non-negative elapsed time, got %v", pair)
	}
}

func TestHrtimeNow_Denied_Panics(t *testing.T) {
	permissions.SetGlobal(permissions.New())

	vm := goja.New()
	h := NewHrtime()
	vm.Set("hrtime", h.Export(vm))

	_, err := vm.RunString("hrtime()")
	if err == nil {
		t.Fatal("expected hrtime() to fail without the hrtime capability")
	}
}
