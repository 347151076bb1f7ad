package modules

import (
	"os"
	"testing"

	"github.com/dop251/goja"
	"github.com/douglasjordan2/dougless/internal/event"
	"github.com/douglasjordan2/dougless/internal/permissions"
)

func setupProcessTest(t *testing.T) (*goja.Runtime, *Process) {
	vm := goja.New()
	loop := event.NewLoop()
	proc := NewProcess([]string{"dougless", "test.js"})
	proc.SetEventLoop(loop)
	vm.Set("process", proc.Export(vm))

	go loop.Run()

	t.Cleanup(func() {
		loop.Stop()
	})

	return vm, proc
}

func TestProcessArgv(t *testing.T) {
	permissions.SetGlobal(permissions.AllowAll())
	vm, _ := setupProcessTest(t)

	result, err := vm.RunString(`process.argv.join(",")`)
	if err != nil {
		t.Fatalf("script execution failed: %v", err)
	}

	if got := result.String(); got != "dougless,test.js" {
		t.Fatalf("expected %q, got %q", "dougless,test.js", got)
	}
}

func TestProcessPlatformAndArch(t *testing.T) {
	permissions.SetGlobal(permissions.AllowAll())
	vm, _ := setupProcessTest(t)

	result, err := vm.RunString(`typeof process.platform === 'string' && process.platform.length > 0 &&
		typeof process.arch === 'string' && process.arch.length > 0`)
	if err != nil {
		t.Fatalf("script execution failed: %v", err)
	}

	if !result.ToBoolean() {
		t.Fatal("expected non-empty platform and arch strings")
	}
}

func TestProcessEnv_Allowed(t *testing.T) {
	permissions.SetGlobal(permissions.AllowAll())

	os.Setenv("DOUGLESS_TEST_VAR", "hello")
	defer os.Unsetenv("DOUGLESS_TEST_VAR")

	vm, _ := setupProcessTest(t)

	result, err := vm.RunString(`process.env.DOUGLESS_TEST_VAR`)
	if err != nil {
		t.Fatalf("script execution failed: %v", err)
	}

	if got := result.String(); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestProcessEnv_Denied(t *testing.T) {
	permissions.SetGlobal(permissions.New())

	os.Setenv("DOUGLESS_TEST_VAR", "hello")
	defer os.Unsetenv("DOUGLESS_TEST_VAR")

	vm, _ := setupProcessTest(t)

	result, err := vm.RunString(`Object.keys(process.env).length`)
	if err != nil {
		t.Fatalf("script execution failed: %v", err)
	}

	if count := result.ToInteger(); count != 0 {
		t.Fatalf("expected an empty env object when env access is denied, got %d keys", count)
	}
}

func TestProcessSpawn_Allowed_RunsCommand(t *testing.T) {
	permissions.SetGlobal(permissions.AllowAll())
	vm, proc := setupProcessTest(t)

	var callbackErr, callbackStdout string
	callbackCalled := false
	vm.Set("__onSpawn", func(call goja.FunctionCall) goja.Value {
		callbackCalled = true
		if !goja.IsNull(call.Argument(0)) && !goja.IsUndefined(call.Argument(0)) {
			callbackErr = call.Argument(0).String()
		}
		callbackStdout = call.Argument(1).String()
		return goja.Undefined()
	})

	_, err := vm.RunString(`process.spawn("echo", ["hello"], __onSpawn)`)
	if err != nil {
		t.Fatalf("spawn call failed: %v", err)
	}

	proc.eventLoop.Wait()

	if !callbackCalled {
		t.Fatal("callback was not called")
	}
	if callbackErr != "" {
		t.Fatalf("expected no error, got %q", callbackErr)
	}
	if callbackStdout == "" {
		t.Fatal("expected stdout to contain output from echo")
	}
}

func TestProcessSpawn_Denied_ReportsError(t *testing.T) {
	permissions.SetGlobal(permissions.New())
	vm, proc := setupProcessTest(t)

	var callbackErr string
	callbackCalled := false
	vm.Set("__onSpawn", func(call goja.FunctionCall) goja.Value {
		callbackCalled = true
		if !goja.IsNull(call.Argument(0)) && !goja.IsUndefined(call.Argument(0)) {
			callbackErr = call.Argument(0).String()
		}
		return goja.Undefined()
	})

	_, err := vm.RunString(`process.spawn("echo", ["hello"], __onSpawn)`)
	if err != nil {
		t.Fatalf("spawn call failed: %v", err)
	}

	proc.eventLoop.Wait()

	if !callbackCalled {
		t.Fatal("callback was not called")
	}
	if callbackErr == "" {
		t.Fatal("expected a permission denied error")
	}
}
