package mcpupstream

import "fmt"

// ConnectError is the UpstreamConnectError: classified into
// RequiresAuth or Failed(reason) so the caller can decide whether to
// prompt for credentials (collaborator territory) or simply skip the
// server and continue.
type ConnectError struct {
	RequiresAuth bool
	Reason string
}

func (e *ConnectError) Error() string {
	if e.RequiresAuth {
		return "upstream requires authentication"
	}
	return fmt.Sprintf("upstream connection failed: %s", e.Reason)
}

func requiresAuth() *ConnectError {
	return &ConnectError{RequiresAuth: true}
}

func failed(reason string) *ConnectError {
	return &ConnectError{Reason: reason}
}

// CallError is the UpstreamCallError: any failure during
// `tools/call`, surfaced to sandbox code as a rejected promise carrying
// the upstream's own error message.
type CallError struct {
	ToolName string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tool %q failed: %s", e.ToolName, e.Message)
}
