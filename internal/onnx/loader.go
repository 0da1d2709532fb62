package onnx

import (
	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/parallel"
)

// LoadOptions configures model loading behavior.
type LoadOptions struct {
	// StrictMode fails at load time on unsupported operators instead of at Run.
	StrictMode bool

	// CustomOps provides custom operator handlers.
	CustomOps map[string]operators.OpHandler

	// Parallel configures the operator copy loops.
	Parallel parallel.Config
}

// DefaultLoadOptions returns default loading options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		StrictMode: true,
		Parallel:   parallel.Sequential(),
	}
}

// Load loads an ONNX model from file and prepares it for execution.
//
// Example:
//
//	model, err := onnx.Load("test_split_equal_parts_1d/model.onnx")
//	if err != nil {
//	    return err
//	}
//	outputs, err := model.Run(map[string]*tensor.RawTensor{"input": x})
func Load(path string, opts ...LoadOptions) (*Model, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	proto, err := ParseFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse ONNX file")
	}

	return LoadFromProto(proto, opt)
}

// LoadFromBytes loads an ONNX model from bytes.
func LoadFromBytes(data []byte, opts ...LoadOptions) (*Model, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	proto, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse ONNX data")
	}

	return LoadFromProto(proto, opt)
}

// LoadFromProto loads a model from parsed ModelProto.
func LoadFromProto(proto *ModelProto, opt LoadOptions) (*Model, error) {
	registry := operators.NewRegistry()
	for opType, handler := range opt.CustomOps {
		registry.Register(opType, handler)
	}

	if opt.StrictMode {
		if err := validateOperators(proto.Graph, registry); err != nil {
			return nil, err
		}
	}

	model := &Model{
		proto:    proto,
		registry: registry,
		ctx:      &operators.Context{Parallel: opt.Parallel},
	}

	if err := model.compile(); err != nil {
		return nil, errors.WithMessage(err, "failed to compile model")
	}

	return model, nil
}

// validateOperators checks that all operators are supported.
func validateOperators(graph *GraphProto, registry *operators.Registry) error {
	if graph == nil {
		return errors.New("model has no graph")
	}

	var unsupported []string
	for i := range graph.Nodes {
		if _, ok := registry.Get(graph.Nodes[i].OpType); !ok {
			unsupported = append(unsupported, graph.Nodes[i].OpType)
		}
	}

	if len(unsupported) > 0 {
		return errors.Errorf("unsupported operators: %v", unsupported)
	}

	return nil
}

// ModelInfo contains basic information about an ONNX model without fully loading it.
type ModelInfo struct {
	IRVersion    int64
	OpsetVersion int64
	ProducerName string
	InputNames   []string
	OutputNames  []string
	OpTypes      []string
}

// GetModelInfo extracts basic info from a parsed model.
func GetModelInfo(proto *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:    proto.IRVersion,
		OpsetVersion: proto.DefaultOpset(),
		ProducerName: proto.ProducerName,
	}
	if proto.Graph == nil {
		return info
	}

	initNames := make(map[string]bool)
	for i := range proto.Graph.Initializers {
		initNames[proto.Graph.Initializers[i].Name] = true
	}
	for i := range proto.Graph.Inputs {
		if !initNames[proto.Graph.Inputs[i].Name] {
			info.InputNames = append(info.InputNames, proto.Graph.Inputs[i].Name)
		}
	}
	for _, output := range proto.Graph.Outputs {
		info.OutputNames = append(info.OutputNames, output.Name)
	}
	for i := range proto.Graph.Nodes {
		info.OpTypes = append(info.OpTypes, proto.Graph.Nodes[i].OpType)
	}

	return info
}

// ListSupportedOps returns all supported ONNX operators.
func ListSupportedOps() []string {
	return operators.NewRegistry().SupportedOps()
}
