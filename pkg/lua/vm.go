package lua

import (
	"fmt"
	"os"
	"sort"

	"github.com/Shopify/go-lua"
)

// Table is pushed to Lua as a table with string keys.
type Table map[string]any

type VM struct {
	state *lua.State
}

func NewVM() *VM {
	state := lua.NewState()
	openSafeLibraries(state)
	return &VM{state: state}
}

func openSafeLibraries(state *lua.State) {
	lua.OpenLibraries(state)

	for _, name := range []string{"io", "os", "debug", "dofile", "loadfile"} {
		state.PushNil()
		state.SetGlobal(name)
	}
}

func (vm *VM) LoadFile(path string) error {
	if err := lua.DoFile(vm.state, path); err != nil {
		return fmt.Errorf("failed to load lua file %s: %w", path, err)
	}
	return nil
}

func (vm *VM) LoadString(code string) error {
	if err := lua.DoString(vm.state, code); err != nil {
		return fmt.Errorf("failed to load lua string: %w", err)
	}
	return nil
}

func (vm *VM) GetGlobalString(name string) (string, error) {
	vm.state.Global(name)
	defer vm.state.Pop(1)
	if !vm.state.IsString(-1) {
		return "", fmt.Errorf("global %s is not a string", name)
	}
	value, _ := vm.state.ToString(-1)
	return value, nil
}

func (vm *VM) GetGlobalNumber(name string) (float64, error) {
	vm.state.Global(name)
	defer vm.state.Pop(1)
	if !vm.state.IsNumber(-1) {
		return 0, fmt.Errorf("global %s is not a number", name)
	}
	value, _ := vm.state.ToNumber(-1)
	return value, nil
}

func (vm *VM) HasFunction(name string) bool {
	vm.state.Global(name)
	isFunc := vm.state.IsFunction(-1)
	vm.state.Pop(1)
	return isFunc
}

// CallFunction calls the global function name with args and discards its
// results.
func (vm *VM) CallFunction(name string, args ...any) error {
	_, err := vm.CallFunctionWithReturn(name, 0, args...)
	return err
}

// CallFunctionWithReturn calls the global function name and converts up to
// numReturns results to string, float64, bool or nil.
func (vm *VM) CallFunctionWithReturn(name string, numReturns int, args ...any) ([]any, error) {
	base := vm.state.Top()
	vm.state.Global(name)
	if !vm.state.IsFunction(-1) {
		vm.state.SetTop(base)
		return nil, fmt.Errorf("global %s is not a function", name)
	}

	for _, arg := range args {
		if err := Push(vm.state, arg); err != nil {
			vm.state.SetTop(base)
			return nil, err
		}
	}

	if err := vm.state.ProtectedCall(len(args), numReturns, 0); err != nil {
		vm.state.SetTop(base)
		return nil, fmt.Errorf("[Lua Error] function %s: %w", name, err)
	}

	results := make([]any, numReturns)
	for i := 0; i < numReturns; i++ {
		idx := i - numReturns
		switch vm.state.TypeOf(idx) {
		case lua.TypeBoolean:
			results[i] = vm.state.ToBoolean(idx)
		case lua.TypeNumber:
			results[i], _ = vm.state.ToNumber(idx)
		case lua.TypeString:
			results[i], _ = vm.state.ToString(idx)
		}
	}
	vm.state.Pop(numReturns)
	return results, nil
}

// Push places a Go value on the stack. Slices become arrays and Table
// becomes a keyed table.
func Push(state *lua.State, value any) error {
	switch v := value.(type) {
	case nil:
		state.PushNil()
	case string:
		state.PushString(v)
	case int:
		state.PushInteger(v)
	case float64:
		state.PushNumber(v)
	case bool:
		state.PushBoolean(v)
	case []string:
		state.CreateTable(len(v), 0)
		for i, s := range v {
			state.PushString(s)
			state.RawSetInt(-2, i+1)
		}
	case Table:
		state.CreateTable(0, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := Push(state, v[k]); err != nil {
				state.Pop(1)
				return err
			}
			state.SetField(-2, k)
		}
	case []Table:
		state.CreateTable(len(v), 0)
		for i, t := range v {
			if err := Push(state, t); err != nil {
				state.Pop(1)
				return err
			}
			state.RawSetInt(-2, i+1)
		}
	default:
		return fmt.Errorf("unsupported argument type: %T", value)
	}
	return nil
}

func (vm *VM) RegisterFunction(name string, fn lua.Function) {
	vm.state.Register(name, fn)
}

func (vm *VM) State() *lua.State {
	return vm.state
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
