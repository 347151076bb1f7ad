package modules

import (
	"time"

	"github.com/dop251/goja"

	"github.com/douglasjordan2/dougless/internal/permissions"
)

// Hrtime exposes a high-resolution monotonic clock to JavaScript, gated by
// the hrtime capability: without it a script can still measure elapsed
// time at millisecond resolution via Date.now, but not the nanosecond
// precision timing side channels hrtime access enables.
//
// Available globally in JavaScript as the 'hrtime' function.
type Hrtime struct {
	vm    *goja.Runtime
	start time.Time
}

// NewHrtime creates a new Hrtime module, anchored to the process start.
func NewHrtime() *Hrtime {
	return &Hrtime{start: time.Now()}
}

// Export creates the global hrtime() function: called with no arguments it
// returns nanoseconds elapsed since process start as a 2-element
// [seconds, nanoseconds] array, matching Node's process.hrtime() shape.
func (h *Hrtime) Export(vm *goja.Runtime) goja.Value {
	h.vm = vm
	return vm.ToValue(h.now)
}

func (h *Hrtime) now(call goja.FunctionCall) goja.Value {
	if err := permissions.GetGlobal().CheckHrtime(); err != nil {
		panic(h.vm.NewGoError(err))
	}

	elapsed := time.Since(h.start)
	seconds := int64(elapsed / time.Second)
	nanos := int64(elapsed % time.Second)
	return h.vm.ToValue([]int64{seconds, nanos})
}
