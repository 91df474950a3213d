package hcldoc

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "network"},
	},
}

var networkSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "output", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "node"},
	},
}

var nodeSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "id", Required: true},
		{Name: "op"},
		{Name: "value"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input"},
		{Type: "network"},
	},
}

var inputSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "node"},
		{Name: "value"},
		{Name: "port"},
	},
}

// decodeNetwork decodes one network block, recursing into nested networks.
func decodeNetwork(body hcl.Body) (*document.NodeNetwork, hcl.Diagnostics) {
	content, diags := body.Content(networkSchema)
	network := document.NewNetwork()

	if attr, ok := content.Attributes["output"]; ok {
		id, idDiags := decodeNodeID(attr)
		diags = append(diags, idDiags...)
		if !idDiags.HasErrors() {
			network.Exports = append(network.Exports, id)
		}
	}

	for _, block := range content.Blocks {
		id, node, nodeDiags := decodeNode(block)
		diags = append(diags, nodeDiags...)
		if node != nil {
			network.AddNode(id, node)
		}
	}
	return network, diags
}

// decodeNode decodes one node block. A node declares exactly one of op,
// value, or a nested network block as its implementation.
func decodeNode(block *hcl.Block) (document.NodeID, *document.DocumentNode, hcl.Diagnostics) {
	content, diags := block.Body.Content(nodeSchema)

	var id document.NodeID
	if attr, ok := content.Attributes["id"]; ok {
		nodeID, idDiags := decodeNodeID(attr)
		diags = append(diags, idDiags...)
		id = nodeID
	}

	node := &document.DocumentNode{}

	var networkBlocks []*hcl.Block
	for _, inner := range content.Blocks {
		switch inner.Type {
		case "input":
			input, inputDiags := decodeInput(inner)
			diags = append(diags, inputDiags...)
			node.Inputs = append(node.Inputs, input)
		case "network":
			networkBlocks = append(networkBlocks, inner)
		}
	}

	implementations := 0
	if attr, ok := content.Attributes["op"]; ok {
		op, opDiags := decodeString(attr)
		diags = append(diags, opDiags...)
		node.Implementation = document.ProtoImplementation(op)
		implementations++
	}
	if attr, ok := content.Attributes["value"]; ok {
		v, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		// A literal node is sugar for a hoisted constant passed through the
		// monomorphized pass-through instruction.
		node.Inputs = append([]document.NodeInput{document.ValueInput(v)}, node.Inputs...)
		node.Implementation = document.ProtoImplementation("value.pass")
		implementations++
	}
	if len(networkBlocks) > 0 {
		sub, subDiags := decodeNetwork(networkBlocks[0].Body)
		diags = append(diags, subDiags...)
		node.Implementation = document.NetworkImplementation(sub)
		implementations += len(networkBlocks)
	}

	if implementations != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid node implementation",
			Detail:   "A node must declare exactly one of: op, value, or a nested network block.",
			Subject:  block.DefRange.Ptr(),
		})
		return id, nil, diags
	}
	return id, node, diags
}

// decodeInput decodes one input block. An input wires exactly one of: the
// output of another node, a literal value, or a boundary input of the
// enclosing network.
func decodeInput(block *hcl.Block) (document.NodeInput, hcl.Diagnostics) {
	content, diags := block.Body.Content(inputSchema)

	var input document.NodeInput
	variants := 0
	if attr, ok := content.Attributes["node"]; ok {
		id, idDiags := decodeNodeID(attr)
		diags = append(diags, idDiags...)
		input = document.NodeRef(id)
		variants++
	}
	if attr, ok := content.Attributes["value"]; ok {
		v, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		input = document.ValueInput(v)
		variants++
	}
	if attr, ok := content.Attributes["port"]; ok {
		var port int
		v, portDiags := attr.Expr.Value(nil)
		diags = append(diags, portDiags...)
		if err := gocty.FromCtyValue(v, &port); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid port",
				Detail:   err.Error(),
				Subject:  attr.Range.Ptr(),
			})
		}
		input = document.NetworkInput(port)
		variants++
	}

	if variants != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid input",
			Detail:   "An input must set exactly one of: node, value, or port.",
			Subject:  block.DefRange.Ptr(),
		})
	}
	return input, diags
}

func decodeNodeID(attr *hcl.Attribute) (document.NodeID, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	var raw uint64
	if err := gocty.FromCtyValue(v, &raw); err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid node id",
			Detail:   err.Error(),
			Subject:  attr.Range.Ptr(),
		})
		return 0, diags
	}
	return document.NodeID(raw), diags
}

func decodeString(attr *hcl.Attribute) (string, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if !v.Type().Equals(cty.String) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Expected a string",
			Subject:  attr.Range.Ptr(),
		})
		return "", diags
	}
	return v.AsString(), diags
}
