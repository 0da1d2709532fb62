package conformance

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/born-ml/conformance/internal/onnx"
	"github.com/born-ml/conformance/internal/tensor"
)

// Tolerances used when comparing model outputs, as in the ONNX backend runner.
const (
	RTol = 1e-3
	ATol = 1e-7
)

// Report is the verification outcome of one case directory.
type Report struct {
	Name string
	Err  error // nil when every output matched.
}

// Verify runs every case directory under dir that matches cfg.Filter and
// compares the model outputs against the stored expected outputs.
// Per-case failures are reported in the returned slice, sorted by name;
// the error is reserved for failures to enumerate dir or cancellation.
func Verify(ctx context.Context, dir string, cfg Config) ([]Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if cfg.Filter != "" {
			if ok, _ := path.Match(cfg.Filter, e.Name()); !ok {
				continue
			}
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), ModelFile)); err != nil {
			klog.V(1).Infof("%s: no %s, ignoring", e.Name(), ModelFile)
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	workers := max(cfg.Workers, 1)
	reports := make([]Report, len(names))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = Report{Name: name, Err: verifyCase(filepath.Join(dir, name), cfg)}
			if reports[i].Err != nil {
				klog.V(1).Infof("%s: FAIL: %v", name, reports[i].Err)
			} else {
				klog.V(1).Infof("%s: ok", name)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func verifyCase(caseDir string, cfg Config) error {
	opts := onnx.DefaultLoadOptions()
	opts.Parallel = cfg.Parallel
	model, err := onnx.Load(filepath.Join(caseDir, ModelFile), opts)
	if err != nil {
		return err
	}

	dataDir := filepath.Join(caseDir, DataSetDir)
	inputs, err := readTensors(dataDir, "input")
	if err != nil {
		return err
	}
	expected, err := readTensors(dataDir, "output")
	if err != nil {
		return err
	}

	inputNames := model.InputNames()
	if len(inputs) != len(inputNames) {
		return errors.Errorf("model has %d inputs, data set has %d", len(inputNames), len(inputs))
	}
	feeds := make(map[string]*tensor.RawTensor, len(inputs))
	for i, in := range inputs {
		name := in.name
		if name == "" {
			name = inputNames[i]
		}
		feeds[name] = in.t
	}

	got, err := model.Run(feeds)
	if err != nil {
		return err
	}

	outputNames := model.OutputNames()
	if len(expected) != len(outputNames) {
		return errors.Errorf("model has %d outputs, data set has %d", len(outputNames), len(expected))
	}
	for i, want := range expected {
		if err := tensor.AllClose(got[outputNames[i]], want.t, RTol, ATol); err != nil {
			return errors.WithMessagef(err, "output %d (%s)", i, outputNames[i])
		}
	}
	return nil
}

type namedTensor struct {
	name string
	t    *tensor.RawTensor
}

// readTensors loads <dir>/<kind>_0.pb, <kind>_1.pb, ... up to the first gap.
func readTensors(dir, kind string) ([]namedTensor, error) {
	var tensors []namedTensor
	for i := 0; ; i++ {
		file := filepath.Join(dir, kind+"_"+strconv.Itoa(i)+".pb")
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			return tensors, nil
		}
		proto, err := onnx.ParseTensorFile(file)
		if err != nil {
			return nil, err
		}
		t, err := proto.ToRaw()
		if err != nil {
			return nil, errors.WithMessage(err, file)
		}
		tensors = append(tensors, namedTensor{name: proto.Name, t: t})
	}
}
