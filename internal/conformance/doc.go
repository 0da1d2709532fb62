// Package conformance builds, writes and checks single-node ONNX conformance
// fixtures for the Split operator.
//
// A Case pairs a node with its example inputs and expected outputs. The
// Generator serializes cases in the directory layout of the ONNX backend
// tests, after running each one through the operator registry, and Verify
// loads such a directory back and compares the model outputs against the
// stored expectations.
package conformance
