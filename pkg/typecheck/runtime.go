package typecheck

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

//go:embed assets/checker.js
var checkerSource string

// creationMu serializes goja.Runtime construction across concurrent
// execute calls.
var creationMu sync.Mutex

// Runtime hosts one compiled copy of the embedded checker, ready to
// evaluate scripts one at a time. It is not safe for concurrent Check
// calls; callers that need concurrency should keep a small pool.
type Runtime struct {
	vm *goja.Runtime
}

// New builds a fresh checker runtime.
func New() (*Runtime, error) {
	creationMu.Lock()
	vm := goja.New()
	creationMu.Unlock()

	if _, err := vm.RunScript("checker.js", checkerSource); err != nil {
		return nil, fmt.Errorf("typecheck: loading checker asset: %w", err)
	}
	return &Runtime{vm: vm}, nil
}

// Check runs the embedded checker against source and decodes its result.
// This is the step after the orchestrator's own syntactic pre-pass has
// already succeeded.
func (r *Runtime) Check(source string) (*Result, error) {
	fn, ok := goja.AssertFunction(r.vm.Get("typeCheckCode"))
	if !ok {
		return nil, fmt.Errorf("typecheck: checker asset did not define typeCheckCode")
	}
	v, err := fn(goja.Undefined(), r.vm.ToValue(source))
	if err != nil {
		return nil, fmt.Errorf("typecheck: checker threw: %w", err)
	}

	raw, err := json.Marshal(v.Export())
	if err != nil {
		return nil, fmt.Errorf("typecheck: encoding checker result: %w", err)
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("typecheck: decoding checker result: %w", err)
	}
	return &res, nil
}
