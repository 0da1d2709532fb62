package operators

// ONNX attribute types (AttributeProto.Type) used by the supported operators.
const (
	AttributeUndefined = 0
	AttributeFloat     = 1 // FLOAT
	AttributeInt       = 2 // INT
	AttributeString    = 3 // STRING
	AttributeFloats    = 6 // FLOATS
	AttributeInts      = 7 // INTS
)

// Node represents an ONNX operation node.
// This is a local copy of the relevant fields from onnx.NodeProto
// to avoid import cycles between onnx and operators packages.
type Node struct {
	Name       string      // Node name (optional)
	OpType     string      // Operation type (e.g., "Split", "Concat")
	Inputs     []string    // Input tensor names, "" marks an omitted optional input
	Outputs    []string    // Output tensor names
	Attributes []Attribute // Operation attributes
	Domain     string      // Custom domain (empty for default)
}

// Attribute represents a node attribute.
type Attribute struct {
	Name   string    // Attribute name
	Type   int32     // Attribute type
	F      float32   // FLOAT value
	I      int64     // INT value
	S      []byte    // STRING value
	Floats []float32 // FLOATS array
	Ints   []int64   // INTS array
}

// MakeNode builds a node the way onnx.helper.make_node does: operator type,
// named inputs and outputs, and attributes.
//
// Example:
//
//	node := MakeNode("Split", []string{"input", "split"},
//	    []string{"output_1", "output_2"}, IntAttr("axis", 1))
func MakeNode(opType string, inputs, outputs []string, attrs ...Attribute) *Node {
	return &Node{
		OpType:     opType,
		Inputs:     append([]string(nil), inputs...),
		Outputs:    append([]string(nil), outputs...),
		Attributes: append([]Attribute(nil), attrs...),
	}
}

// IntAttr returns an INT attribute.
func IntAttr(name string, v int64) Attribute {
	return Attribute{Name: name, Type: AttributeInt, I: v}
}

// IntsAttr returns an INTS attribute.
func IntsAttr(name string, v ...int64) Attribute {
	return Attribute{Name: name, Type: AttributeInts, Ints: append([]int64(nil), v...)}
}

// HasAttr reports whether the node carries the named attribute.
func HasAttr(node *Node, name string) bool {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return true
		}
	}
	return false
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].I
		}
	}
	return defaultVal
}

// GetAttrInts returns an integer array attribute.
func GetAttrInts(node *Node, name string) []int64 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].Ints
		}
	}
	return nil
}

// WithoutAttr returns a copy of node without the named attribute.
func (n *Node) WithoutAttr(name string) *Node {
	out := *n
	out.Inputs = append([]string(nil), n.Inputs...)
	out.Outputs = append([]string(nil), n.Outputs...)
	out.Attributes = nil
	for _, a := range n.Attributes {
		if a.Name != name {
			out.Attributes = append(out.Attributes, a)
		}
	}
	return &out
}

// WithAttr returns a copy of node with attr added, replacing any attribute of
// the same name.
func (n *Node) WithAttr(attr Attribute) *Node {
	out := n.WithoutAttr(attr.Name)
	out.Attributes = append(out.Attributes, attr)
	return out
}
