// Package sandbox implements the sandbox runtime (C6): a single-threaded
// goja VM, driven by goja_nodejs's event loop, that hosts the globals a
// submitted script is allowed to touch — console, fetch, and the MCP
// bridge (registerMCP / callMCPTool / REGISTRY) — and nothing else.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"

	"github.com/pctx-dev/pctx/pkg/logging"
	"github.com/pctx-dev/pctx/pkg/mcpupstream"
)

// timeoutMessage is the fixed RuntimeError message on wall-clock expiry.
const timeoutMessage = "Execution timed out after 10 seconds"

// Runtime is a fresh, disposable sandbox: one per execute call. It owns its own
// event loop, its own goja.Runtime, and its own captured output buffers.
type Runtime struct {
	loop *eventloop.EventLoop
	vm *goja.Runtime
	allowList map[string]struct{}
	dispatcher mcpupstream.Dispatcher
	httpClient *http.Client
	log logging.Logger

	mu sync.Mutex
	stdout []string
	stderr []string
	registry map[string]bool // names registered via registerMCP, for REGISTRY.has/get/delete/clear
}

// New constructs a Runtime. allowList entries are "host:port" or bare
// "host" strings; dispatcher resolves callMCPTool
// against the gateway's connected upstream servers.
func New(allowList map[string]struct{}, dispatcher mcpupstream.Dispatcher, log logging.Logger) *Runtime {
	return &Runtime{
		allowList: allowList,
		dispatcher: dispatcher,
		httpClient: &http.Client{},
		log: log,
		registry: make(map[string]bool),
	}
}

// RuntimeError is a script-thrown or uncaught exception, captured with its
// JS stack where available.
type RuntimeError struct {
	Message string
	Stack string
}

func (e *RuntimeError) Error() string { return e.Message }

// Outcome is the raw result of driving one script to completion: either a
// resolved value or a runtime error, plus whatever console output was
// captured along the way.
type Outcome struct {
	Value any
	Err *RuntimeError
	Stdout []string
	Stderr []string
}

// Eval starts the event loop, installs the sandbox globals, compiles and
// runs source, and waits for either the script's top-level promise to
// settle or ctx to be cancelled. source is expected to end with a single
// top-level expression of the form `return <expr>;` wrapped by the caller
// in an async function invocation whose settlement is reported through
// the injected __pctx_resolve/__pctx_reject globals.
func (r *Runtime) Eval(ctx context.Context, source string) *Outcome {
	r.loop = eventloop.NewEventLoop(eventloop.EnableConsole(false))

	done := make(chan *Outcome, 1)
	settled := false

	r.loop.Start()
	defer r.loop.Stop()

	r.loop.RunOnLoop(func(vm *goja.Runtime) {
		r.vm = vm
		r.install(vm)

		resolve := func(call goja.FunctionCall) goja.Value {
			if settled {
				return goja.Undefined()
			}
			settled = true
			done <- &Outcome{Value: exportValue(call.Argument(0)), Stdout: r.snapshotStdout(), Stderr: r.snapshotStderr()}
			return goja.Undefined()
		}
		reject := func(call goja.FunctionCall) goja.Value {
			if settled {
				return goja.Undefined()
			}
			settled = true
			done <- &Outcome{Err: toRuntimeError(call.Argument(0)), Stdout: r.snapshotStdout(), Stderr: r.snapshotStderr()}
			return goja.Undefined()
		}
		vm.Set("__pctx_resolve", resolve)
		vm.Set("__pctx_reject", reject)

		prg, err := goja.Compile("pctx-script.js", source, true)
		if err != nil {
			settled = true
			done <- &Outcome{Err: &RuntimeError{Message: err.Error()}, Stdout: r.snapshotStdout(), Stderr: r.snapshotStderr()}
			return
		}
		if _, err := vm.RunProgram(prg); err != nil {
			if !settled {
				settled = true
				done <- &Outcome{Err: exceptionToRuntimeError(err), Stdout: r.snapshotStdout(), Stderr: r.snapshotStderr()}
			}
		}
	})

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		r.vm.Interrupt(timeoutMessage)
		// A script idle on a pending promise never reaches the settle
		// callbacks, so the timeout outcome is also queued on the loop.
		r.loop.RunOnLoop(func(*goja.Runtime) {
			if settled {
				return
			}
			settled = true
			done <- &Outcome{Err: &RuntimeError{Message: timeoutMessage}, Stdout: r.snapshotStdout(), Stderr: r.snapshotStderr()}
		})
		out := <-done
		if out.Err == nil && out.Value == nil {
			out.Err = &RuntimeError{Message: timeoutMessage}
		}
		return out
	}
}

func (r *Runtime) install(vm *goja.Runtime) {
	r.installConsole(vm)
	r.installFetch(vm)
	r.installMCPBridge(vm)
}

// installConsole implements "console": log/info/warn/error push
// a space-joined, JSON-stringified (with a `[circular]` fallback) line
// onto the Runtime's host-side stdout (log/info) or stderr (warn/error)
// buffer, in per-stream insertion order. The buffers are not visible to
// the script: no __stdout/__stderr globals are installed.
func (r *Runtime) installConsole(vm *goja.Runtime) {
	console := vm.NewObject()
	logFn := func(stream *[]string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, stringifyConsoleArg(arg))
			}
			r.mu.Lock()
			*stream = append(*stream, strings.Join(parts, " "))
			r.mu.Unlock()
			return goja.Undefined()
		}
	}
	console.Set("log", logFn(&r.stdout))
	console.Set("info", logFn(&r.stdout))
	console.Set("warn", logFn(&r.stderr))
	console.Set("error", logFn(&r.stderr))
	vm.Set("console", console)
}

func stringifyConsoleArg(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	exported := v.Export()
	if s, ok := exported.(string); ok {
		return s
	}
	b, err := json.Marshal(exported)
	if err != nil {
		return "[circular]"
	}
	return string(b)
}

func (r *Runtime) snapshotStdout() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stdout...)
}

func (r *Runtime) snapshotStderr() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stderr...)
}

// installFetch implements "fetch": a host op gated by the
// allow-list derived from configured upstream URLs, returning a
// Response-shaped object with json()/text() promise-returning methods.
func (r *Runtime) installFetch(vm *goja.Runtime) {
	vm.Set("fetch", func(call goja.FunctionCall) goja.Value {
		rawURL := call.Argument(0).String()
		promise, resolve, reject := vm.NewPromise()

		if !r.hostAllowed(rawURL) {
			reject(vm.ToValue(fmt.Sprintf("fetch: host not in allow-list: %s", rawURL)))
			return vm.ToValue(promise)
		}

		method := "GET"
		var body io.Reader
		var headers map[string]string
		if len(call.Arguments) > 1 {
			if opts, ok := call.Argument(1).Export().(map[string]any); ok {
				if m, ok := opts["method"].(string); ok {
					method = m
				}
				if b, ok := opts["body"].(string); ok {
					body = strings.NewReader(b)
				}
				if h, ok := opts["headers"].(map[string]any); ok {
					headers = make(map[string]string, len(h))
					for k, val := range h {
						headers[k] = fmt.Sprint(val)
					}
				}
			}
		}

		req, err := http.NewRequest(method, rawURL, body)
		if err != nil {
			reject(vm.ToValue(err.Error()))
			return vm.ToValue(promise)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		r.loop.RunOnLoop(func(vm *goja.Runtime) {
			go func() {
				resp, err := r.httpClient.Do(req)
				r.loop.RunOnLoop(func(vm *goja.Runtime) {
					if err != nil {
						reject(vm.ToValue(err.Error()))
						return
					}
					defer resp.Body.Close()
					raw, readErr := io.ReadAll(resp.Body)
					if readErr != nil {
						reject(vm.ToValue(readErr.Error()))
						return
					}
					resolve(vm.ToValue(newResponse(vm, resp.StatusCode, raw)))
				})
			}()
		})

		return vm.ToValue(promise)
	})
}

func newResponse(vm *goja.Runtime, status int, body []byte) *goja.Object {
	obj := vm.NewObject()
	obj.Set("status", status)
	obj.Set("ok", status >= 200 && status < 300)
	obj.Set("text", func(goja.FunctionCall) goja.Value {
		p, resolve, _ := vm.NewPromise()
		resolve(vm.ToValue(string(body)))
		return vm.ToValue(p)
	})
	obj.Set("json", func(goja.FunctionCall) goja.Value {
		p, resolve, reject := vm.NewPromise()
		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			reject(vm.ToValue(err.Error()))
			return vm.ToValue(p)
		}
		resolve(vm.ToValue(parsed))
		return vm.ToValue(p)
	})
	return obj
}

func (r *Runtime) hostAllowed(rawURL string) bool {
	entry, err := mcpupstream.AllowListEntry(rawURL)
	if err != nil {
		return false
	}
	if _, ok := r.allowList[entry]; ok {
		return true
	}
	host := entry[:strings.LastIndex(entry, ":")]
	_, ok := r.allowList[host]
	return ok
}

// installMCPBridge implements "registerMCP / callMCPTool /
// REGISTRY": registerMCP just marks a namespace as present (the actual
// per-tool wrapper functions are emitted directly into the script source
// by the gateway, per §4.9); callMCPTool bridges to the Dispatcher;
// REGISTRY exposes has/get/delete/clear over the registered namespace
// names for introspection and test isolation.
func (r *Runtime) installMCPBridge(vm *goja.Runtime) {
	vm.Set("registerMCP", func(call goja.FunctionCall) goja.Value {
		opts, _ := call.Argument(0).Export().(map[string]any)
		name, _ := opts["name"].(string)
		r.mu.Lock()
		r.registry[name] = true
		r.mu.Unlock()
		return goja.Undefined()
	})

	vm.Set("callMCPTool", func(call goja.FunctionCall) goja.Value {
		opts, _ := call.Argument(0).Export().(map[string]any)
		serverName, _ := opts["name"].(string)
		toolName, _ := opts["tool"].(string)
		arguments, _ := opts["arguments"].(map[string]any)

		p, resolve, reject := vm.NewPromise()
		go func() {
			result, err := r.dispatcher.CallTool(context.Background(), serverName, toolName, arguments)
			r.loop.RunOnLoop(func(vm *goja.Runtime) {
				if err != nil {
					reject(vm.ToValue(err.Error()))
					return
				}
				resolve(vm.ToValue(result))
			})
		}()
		return vm.ToValue(p)
	})

	registry := vm.NewObject()
	registry.Set("has", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		r.mu.Lock()
		defer r.mu.Unlock()
		return vm.ToValue(r.registry[name])
	})
	registry.Set("get", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.registry[name] {
			return vm.ToValue(name)
		}
		return goja.Undefined()
	})
	registry.Set("delete", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		r.mu.Lock()
		delete(r.registry, name)
		r.mu.Unlock()
		return goja.Undefined()
	})
	registry.Set("clear", func(call goja.FunctionCall) goja.Value {
		r.mu.Lock()
		r.registry = make(map[string]bool)
		r.mu.Unlock()
		return goja.Undefined()
	})
	vm.Set("REGISTRY", registry)
}

func exportValue(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	return v.Export()
}

func toRuntimeError(v goja.Value) *RuntimeError {
	exported := exportValue(v)
	if obj, ok := exported.(map[string]any); ok {
		msg, _ := obj["message"].(string)
		stack, _ := obj["stack"].(string)
		if msg != "" {
			return &RuntimeError{Message: msg, Stack: stack}
		}
	}
	if s, ok := exported.(string); ok {
		return &RuntimeError{Message: s}
	}
	b, _ := json.Marshal(exported)
	return &RuntimeError{Message: string(b)}
}

func exceptionToRuntimeError(err error) *RuntimeError {
	if exc, ok := err.(*goja.Exception); ok {
		return &RuntimeError{Message: exc.Error(), Stack: exc.String()}
	}
	return &RuntimeError{Message: err.Error()}
}
