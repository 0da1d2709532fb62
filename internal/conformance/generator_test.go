package conformance

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/conformance/internal/onnx"
	"github.com/born-ml/conformance/internal/tensor"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Workers = 3
	return cfg
}

func generate(t *testing.T, cfg Config) []Result {
	t.Helper()
	gen, err := NewGenerator(cfg)
	require.NoError(t, err)
	results, err := gen.Generate(context.Background(), SplitCases())
	require.NoError(t, err)
	return results
}

func TestGenerateLayout(t *testing.T) {
	cfg := testConfig(t)
	results := generate(t, cfg)
	require.Len(t, results, len(SplitCases()))

	for _, res := range results {
		assert.False(t, res.Skipped, res.Name)
		assert.Positive(t, res.Bytes, res.Name)
		assert.FileExists(t, filepath.Join(cfg.OutputDir, res.Name, ModelFile))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, res.Name, DataSetDir, "input_0.pb"))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, res.Name, DataSetDir, "output_0.pb"))
	}

	dir := filepath.Join(cfg.OutputDir, "test_split_variable_parts_2d")
	model, err := onnx.ParseFile(filepath.Join(dir, ModelFile))
	require.NoError(t, err)
	assert.Equal(t, int64(18), model.DefaultOpset())
	assert.Equal(t, onnx.Producer, model.ProducerName)
	require.Len(t, model.Graph.Nodes, 1)
	assert.Equal(t, []string{"input", "split"}, model.Graph.Nodes[0].Inputs)

	sizes, err := onnx.ParseTensorFile(filepath.Join(dir, DataSetDir, "input_1.pb"))
	require.NoError(t, err)
	assert.Equal(t, "split", sizes.Name)
	raw, err := sizes.ToRaw()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, raw.AsInt64())

	out, err := onnx.ParseTensorFile(filepath.Join(dir, DataSetDir, "output_1.pb"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, out.Dims)
	assert.NoFileExists(t, filepath.Join(dir, DataSetDir, "output_2.pb"))
}

func TestGenerateZeroSizeFixture(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter = "test_split_zero_size_splits"
	generate(t, cfg)

	dir := filepath.Join(cfg.OutputDir, cfg.Filter, DataSetDir)
	for _, file := range []string{"output_0.pb", "output_1.pb", "output_2.pb"} {
		p, err := onnx.ParseTensorFile(filepath.Join(dir, file))
		require.NoError(t, err)
		assert.Equal(t, []int64{0}, p.Dims)
		raw, err := p.ToRaw()
		require.NoError(t, err)
		assert.Equal(t, tensor.Float32, raw.DType())
		assert.Zero(t, raw.NumElements())
	}
}

func TestGenerateOldOpset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Opset = 11
	results := generate(t, cfg)

	skipped := map[string]bool{}
	for _, res := range results {
		skipped[res.Name] = res.Skipped
	}
	assert.True(t, skipped["test_split_1d_uneven_split_opset18"])
	assert.True(t, skipped["test_split_2d_uneven_split_opset18"])
	assert.False(t, skipped["test_split_variable_parts_1d"])

	model, err := onnx.ParseFile(filepath.Join(cfg.OutputDir, "test_split_variable_parts_1d", ModelFile))
	require.NoError(t, err)
	node := model.Graph.Nodes[0]
	assert.Equal(t, []string{"input"}, node.Inputs)
	var split []int64
	for _, a := range node.Attributes {
		if a.Name == "split" {
			split = a.Ints
		}
	}
	assert.Equal(t, []int64{2, 4}, split)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "test_split_variable_parts_1d", DataSetDir, "input_1.pb"))
}

func TestGenerateExistingDirectories(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter = "test_split_equal_parts_1d"
	dir := filepath.Join(cfg.OutputDir, cfg.Filter)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	marker := filepath.Join(dir, "stale.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	results := generate(t, cfg)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.FileExists(t, marker)
	assert.NoFileExists(t, filepath.Join(dir, ModelFile))

	cfg.Overwrite = true
	results = generate(t, cfg)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)
	assert.NoFileExists(t, marker)
	assert.FileExists(t, filepath.Join(dir, ModelFile))
}

func TestGenerateRejectsWrongExpectations(t *testing.T) {
	cfg := testConfig(t)
	gen, err := NewGenerator(cfg)
	require.NoError(t, err)

	bad := SplitCases()[:1]
	bad[0].Outputs = []*tensor.RawTensor{vec[float32](1), vec[float32](2, 3, 4), vec[float32](5, 6)}

	_, err = gen.Generate(context.Background(), bad)
	assert.ErrorContains(t, err, "self-check failed")
	assert.NoDirExists(t, filepath.Join(cfg.OutputDir, bad[0].Name))
}

func TestGenerateNoMatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filter = "test_conv_*"
	gen, err := NewGenerator(cfg)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), SplitCases())
	assert.ErrorContains(t, err, "no case matches")
}

func TestGenerateCanceled(t *testing.T) {
	gen, err := NewGenerator(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.Generate(ctx, SplitCases())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeneratorValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err := NewGenerator(cfg)
	assert.Error(t, err)
}
