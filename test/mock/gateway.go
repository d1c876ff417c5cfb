// test/mock/gateway.go
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
)

// Gateway is a testify mock of gateway.Invoker.
type Gateway struct {
	mock.Mock
}

func (g *Gateway) Invoke(ctx context.Context, op string, args any, result any) error {
	called := g.Called(ctx, op, args, result)
	return called.Error(0)
}

// ScriptedGateway is a programmable gateway fake. Each op is handled by a
// registered function whose return value is marshalled into the caller's
// result, mirroring the JSON round trip of the real transport. Call counts
// are tracked per op.
type ScriptedGateway struct {
	mu       sync.Mutex
	handlers map[string]func(args any) (any, error)
	calls    map[string]int
}

func NewScriptedGateway() *ScriptedGateway {
	return &ScriptedGateway{
		handlers: make(map[string]func(args any) (any, error)),
		calls:    make(map[string]int),
	}
}

// Handle registers the handler for op, replacing any previous one.
func (g *ScriptedGateway) Handle(op string, fn func(args any) (any, error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[op] = fn
}

// Calls reports how many times op was invoked.
func (g *ScriptedGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *ScriptedGateway) Invoke(ctx context.Context, op string, args any, result any) error {
	g.mu.Lock()
	g.calls[op]++
	fn, ok := g.handlers[op]
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("no handler scripted for op %q", op)
	}

	value, err := fn(args)
	if err != nil {
		return err
	}
	if result == nil || value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}
