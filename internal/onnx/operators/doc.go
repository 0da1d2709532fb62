// Package operators maps ONNX nodes onto tensor operations.
//
// The package provides a registry of operator handlers. Each handler validates
// inputs and attributes for the opset in its Context, then delegates to the
// matching function of the tensor package.
//
// Supported operators: Split, Concat, Identity.
package operators
