package modules

import (
	"github.com/dop251/goja"
)

// FileSystem module - placeholder implementation
type FileSystem struct{}

func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

func (fs *FileSystem) Export(vm *goja.Runtime) goja.Value {
	obj := vm.NewObject()
	
	// Placeholder functions - to be implemented
	obj.Set("readFile", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement readFile
		return goja.Undefined()
	})
	
	obj.Set("writeFile", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement writeFile
		return goja.Undefined()
	})
	
	obj.Set("readdir", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement readdir
		return goja.Undefined()
	})
	
	return obj
}

// HTTP module - placeholder implementation
type HTTP struct{}

func NewHTTP() *HTTP {
	return &HTTP{}
}

func (h *HTTP) Export(vm *goja.Runtime) goja.Value {
	obj := vm.NewObject()
	
	// Placeholder functions - to be implemented
	obj.Set("createServer", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement createServer
		return goja.Undefined()
	})
	
	obj.Set("request", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement request
		return goja.Undefined()
	})
	
	return obj
}

// Path module - placeholder implementation
type Path struct{}

func NewPath() *Path {
	return &Path{}
}

func (p *Path) Export(vm *goja.Runtime) goja.Value {
	obj := vm.NewObject()
	
	// Placeholder functions - to be implemented
	obj.Set("join", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement join
		return goja.Undefined()
	})
	
	obj.Set("resolve", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement resolve
		return goja.Undefined()
	})
	
	obj.Set("dirname", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement dirname
		return goja.Undefined()
	})
	
	obj.Set("basename", func(call goja.FunctionCall) goja.Value {
		// TODO: Implement basename
		return goja.Undefined()
	})
	
	return obj
}
