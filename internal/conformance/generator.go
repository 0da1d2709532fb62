package conformance

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/born-ml/conformance/internal/onnx"
	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/tensor"
)

// DataSetDir is the directory holding the serialized tensors of a case.
const DataSetDir = "test_data_set_0"

// ModelFile is the serialized single-node model of a case.
const ModelFile = "model.onnx"

// Result describes what Generate did for one case.
type Result struct {
	Name    string
	Dir     string
	Bytes   int64 // Total bytes written.
	Skipped bool  // Left alone: directory existed or the opset is too old.
}

// Generator writes conformance cases in the ONNX backend-test layout:
//
//	<out>/<name>/model.onnx
//	<out>/<name>/test_data_set_0/input_<i>.pb
//	<out>/<name>/test_data_set_0/output_<i>.pb
type Generator struct {
	cfg      Config
	registry *operators.Registry
}

// NewGenerator validates cfg and returns a Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, registry: operators.NewRegistry()}, nil
}

// Generate writes every selected case, at most cfg.Workers at a time.
// Each case is run through the operator registry first and is only written
// if the computed outputs equal the expected ones.
// Results are returned in the order of the selected cases.
func (g *Generator) Generate(ctx context.Context, cases []Case) ([]Result, error) {
	selected := g.cfg.Select(cases)
	if len(selected) == 0 {
		return nil, errors.Errorf("no case matches filter %q", g.cfg.Filter)
	}

	results := make([]Result, len(selected))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for i := range selected {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.generateCase(&selected[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) generateCase(c *Case) (Result, error) {
	dir := filepath.Join(g.cfg.OutputDir, c.Name)
	res := Result{Name: c.Name, Dir: dir}

	if c.MinOpset > g.cfg.Opset {
		klog.Warningf("%s: needs opset %d, skipping for opset %d", c.Name, c.MinOpset, g.cfg.Opset)
		res.Skipped = true
		return res, nil
	}

	adapted, err := AdaptToOpset(c, g.cfg.Opset)
	if err != nil {
		return res, err
	}
	opCtx := &operators.Context{Opset: g.cfg.Opset, Parallel: g.cfg.Parallel}
	if err := Check(g.registry, opCtx, &adapted); err != nil {
		return res, errors.WithMessage(err, "self-check failed")
	}

	if _, err := os.Stat(dir); err == nil {
		if !g.cfg.Overwrite {
			klog.Warningf("%s: %s exists, skipping (use overwrite to replace)", c.Name, dir)
			res.Skipped = true
			return res, nil
		}
		klog.Warningf("%s: overwriting %s", c.Name, dir)
		if err := os.RemoveAll(dir); err != nil {
			return res, errors.Wrapf(err, "failed to remove %s", dir)
		}
	}

	res.Bytes, err = writeCase(dir, &adapted, g.cfg.Opset)
	if err != nil {
		return res, errors.WithMessage(err, c.Name)
	}
	klog.V(1).Infof("%s: wrote %s to %s", c.Name, humanize.Bytes(uint64(res.Bytes)), dir) //nolint:gosec // G115: byte counts are non-negative.
	return res, nil
}

// writeCase serializes the model and its tensors under dir.
func writeCase(dir string, c *Case, opset int64) (int64, error) {
	dataDir := filepath.Join(dir, DataSetDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return 0, errors.Wrapf(err, "failed to create %s", dataDir)
	}

	model, err := onnx.BuildNodeModel(c.Name, c.Node, c.Inputs, c.Outputs, opset)
	if err != nil {
		return 0, err
	}
	n, err := onnx.WriteModelFile(filepath.Join(dir, ModelFile), model)
	if err != nil {
		return 0, err
	}
	total := int64(n)

	write := func(kind string, names []string, tensors []*tensor.RawTensor) error {
		for i, t := range tensors {
			file := filepath.Join(dataDir, kind+"_"+strconv.Itoa(i)+".pb")
			n, err := onnx.WriteTensorFile(file, onnx.TensorFromRaw(names[i], t))
			if err != nil {
				return err
			}
			total += int64(n)
		}
		return nil
	}
	if err := write("input", presentInputs(c.Node), c.Inputs); err != nil {
		return 0, err
	}
	if err := write("output", c.Node.Outputs, c.Outputs); err != nil {
		return 0, err
	}
	return total, nil
}

func presentInputs(node *operators.Node) []string {
	var names []string
	for _, in := range node.Inputs {
		if in != "" {
			names = append(names, in)
		}
	}
	return names
}

// AdaptToOpset rewrites a Split case for the target opset:
//   - below 13 explicit sizes move from the second input to the "split" attribute;
//   - from 18 a case without sizes gets an explicit "num_outputs";
//   - below 18 "num_outputs" is dropped and the declared outputs give the arity.
//
// Other operators are returned unchanged.
func AdaptToOpset(c *Case, opset int64) (Case, error) {
	out := *c
	if c.Node.OpType != "Split" {
		return out, nil
	}

	node := c.Node
	hasSizes := len(node.Inputs) >= 2 && node.Inputs[1] != ""
	switch {
	case opset < 13 && hasSizes:
		sizes, err := c.Inputs[1].Int64s()
		if err != nil {
			return Case{}, errors.WithMessagef(err, "%s: split sizes", c.Name)
		}
		node = node.WithAttr(operators.IntsAttr("split", sizes...))
		node.Inputs = node.Inputs[:1]
		out.Inputs = c.Inputs[:1]
	case opset >= 18 && !hasSizes && !operators.HasAttr(node, "num_outputs"):
		node = node.WithAttr(operators.IntAttr("num_outputs", int64(len(node.Outputs))))
	}
	if opset < 18 {
		node = node.WithoutAttr("num_outputs")
	}
	out.Node = node
	return out, nil
}
