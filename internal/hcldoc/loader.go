// Package hcldoc loads document graphs authored as HCL files.
//
// A graph document declares one root network of nodes. Each node carries an
// author-assigned id, an ordered list of input blocks, and exactly one
// implementation: a primitive instruction (op), a literal (value), or a
// nested network block.
//
//	network {
//	  output = 2
//
//	  node {
//	    id    = 1
//	    value = 5
//	  }
//
//	  node {
//	    id = 2
//	    op = "math.double"
//	    input { node = 1 }
//	  }
//	}
package hcldoc

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
)

// Loader parses .vg.hcl graph documents into document networks.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh HCL parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadFile parses the graph document at the given path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*document.NodeNetwork, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading graph document.", "path", path)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	return l.decode(ctx, file.Body, path)
}

// Parse parses a graph document from a byte buffer. The filename is used
// only for diagnostics.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*document.NodeNetwork, error) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return l.decode(ctx, file.Body, filename)
}

func (l *Loader) decode(ctx context.Context, body hcl.Body, filename string) (*document.NodeNetwork, error) {
	logger := ctxlog.FromContext(ctx)

	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid graph document %s: %w", filename, diags)
	}

	var root *document.NodeNetwork
	for _, block := range content.Blocks {
		if root != nil {
			return nil, fmt.Errorf("invalid graph document %s: more than one root network block", filename)
		}
		network, decodeDiags := decodeNetwork(block.Body)
		diags = append(diags, decodeDiags...)
		root = network
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid graph document %s: %w", filename, diags)
	}
	if root == nil {
		return nil, fmt.Errorf("invalid graph document %s: no network block found", filename)
	}

	logger.Debug("Graph document loaded.", "path", filename, "nodes", root.Len())
	return root, nil
}
