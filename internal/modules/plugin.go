package modules

import (
	"context"
	"fmt"
	"os"

	"github.com/dop251/goja"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/douglasjordan2/dougless/internal/event"
	"github.com/douglasjordan2/dougless/internal/permissions"
)

// Plugin loads and invokes native (WASM) plugins from JavaScript. Every load
// goes through the plugin capability before the module is ever compiled, so
// a denied script never gets as far as running untrusted WASM bytecode.
//
// Available globally in JavaScript as the 'plugin' object.
type Plugin struct {
	vm        *goja.Runtime
	eventLoop *event.Loop
}

// NewPlugin creates a new Plugin module scheduling its loads on eventLoop.
func NewPlugin(eventLoop *event.Loop) *Plugin {
	return &Plugin{eventLoop: eventLoop}
}

// Export creates the global plugin object.
func (pl *Plugin) Export(vm *goja.Runtime) goja.Value {
	pl.vm = vm
	obj := vm.NewObject()
	obj.Set("call", pl.call)
	return obj
}

// call loads the WASM module at path, invokes its exported function fn with
// the given integer args, and reports the first i32/i64 result.
//
// Parameters:
//   - path (string): path to a .wasm file
//   - fn (string): the module's exported function name
//   - args (array of numbers): arguments passed to fn
//   - callback (function): called with (error, result)
func (pl *Plugin) call(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 4 {
		panic(pl.vm.NewTypeError("call requires a path, function name, args array, and callback"))
	}

	path := call.Arguments[0].String()
	fn := call.Arguments[1].String()
	var args []uint64
	for _, v := range call.Arguments[2].Export().([]interface{}) {
		switch n := v.(type) {
		case int64:
			args = append(args, uint64(n))
		case float64:
			args = append(args, uint64(n))
		default:
			panic(pl.vm.NewTypeError(fmt.Sprintf("unsupported plugin argument type: %T", v)))
		}
	}
	callback, ok := goja.AssertFunction(call.Arguments[3])
	if !ok {
		panic(pl.vm.NewTypeError("fourth argument must be a callback function"))
	}

	pl.eventLoop.ScheduleTask(&event.Task{
		Callback: func() {
			if err := permissions.GetGlobal().CheckPlugin(path); err != nil {
				callback(goja.Undefined(), pl.vm.ToValue(err.Error()), goja.Undefined())
				return
			}

			result, err := pl.invoke(path, fn, args)
			if err != nil {
				callback(goja.Undefined(), pl.vm.ToValue(err.Error()), goja.Undefined())
				return
			}
			callback(goja.Undefined(), goja.Null(), pl.vm.ToValue(result))
		},
	})

	return goja.Undefined()
}

// invoke compiles and runs the module at path in a fresh wazero runtime,
// closed once fn returns. Plugins are single-shot: no state is cached
// between calls, trading startup cost for a clean sandbox every time.
func (pl *Plugin) invoke(path, fn string, args []uint64) (uint64, error) {
	ctx := context.Background()

	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read plugin: %w", err)
	}

	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return 0, fmt.Errorf("instantiate wasi: %w", err)
	}

	mod, err := runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return 0, fmt.Errorf("instantiate plugin: %w", err)
	}

	exported := mod.ExportedFunction(fn)
	if exported == nil {
		return 0, fmt.Errorf("plugin does not export %q", fn)
	}

	results, err := exported.Call(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("call %q: %w", fn, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}
