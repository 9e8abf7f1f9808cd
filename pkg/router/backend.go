package router

import "fmt"

// Backend identifies one of the fixed model families a prompt can be routed to.
type Backend string

// Supported backend constants
const (
	Vision  Backend = "vision"
	Code    Backend = "code"
	Math    Backend = "math"
	General Backend = "general"
)

// SupportedBackends returns every backend in routing priority order.
func SupportedBackends() []Backend {
	return []Backend{Vision, Code, Math, General}
}

// ParseBackend converts a backend name into a Backend.
func ParseBackend(name string) (Backend, error) {
	for _, b := range SupportedBackends() {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown backend: %q (supported: %v)", name, SupportedBackends())
}

// DefaultModel returns the model name a backend is served by unless
// configured otherwise.
func DefaultModel(b Backend) string {
	switch b {
	case Vision:
		return "llama3.2-vision"
	case Code:
		return "qwen2.5-coder"
	case Math:
		return "mathstral"
	default:
		return "mistral"
	}
}
