package operators

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/parallel"
	"github.com/born-ml/conformance/internal/tensor"
)

// OpHandler processes an ONNX node and returns output tensors.
// Omitted optional inputs are passed as nil.
type OpHandler func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// LatestOpset is the opset assumed when a Context does not name one.
const LatestOpset = 18

// Context provides execution settings for operators.
type Context struct {
	// Opset is the default-domain opset of the model; 0 means LatestOpset.
	Opset int64

	// Parallel configures the copy loops of shape operators.
	Parallel parallel.Config
}

// DefaultContext returns a Context for the latest opset with sequential copies.
func DefaultContext() *Context {
	return &Context{Opset: LatestOpset, Parallel: parallel.Sequential()}
}

func (c *Context) opset() int64 {
	if c == nil || c.Opset <= 0 {
		return LatestOpset
	}
	return c.Opset
}

// Registry maps ONNX operator types to handler functions.
type Registry struct {
	handlers map[string]OpHandler
}

// NewRegistry creates a new operator registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]OpHandler),
	}

	r.registerShapeOps()

	return r
}

// Register adds a custom operator handler.
func (r *Registry) Register(opType string, handler OpHandler) {
	r.handlers[opType] = handler
}

// Get returns the handler for an operator type.
func (r *Registry) Get(opType string) (OpHandler, bool) {
	h, ok := r.handlers[opType]
	return h, ok
}

// Execute runs an operator with the given inputs.
func (r *Registry) Execute(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	handler, ok := r.handlers[node.OpType]
	if !ok {
		return nil, errors.Errorf("unsupported operator: %s", node.OpType)
	}
	if ctx == nil {
		ctx = DefaultContext()
	}
	return handler(ctx, node, inputs)
}

// SupportedOps returns the sorted list of supported operator types.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
