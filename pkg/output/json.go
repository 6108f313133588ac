package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
)

// JSON writes the render tree as JSON.
type JSON struct{}

// NewJSON constructs the json writer.
func NewJSON() *JSON { return &JSON{} }

func (*JSON) Name() string { return "json" }

func (*JSON) ContentType() string { return "application/json" }

func (*JSON) Write(_ context.Context, node render.Node, options Options) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	if options.Indent {
		payload, err = json.MarshalIndent(node, "", "  ")
	} else {
		payload, err = json.Marshal(node)
	}
	if err != nil {
		return nil, fmt.Errorf("output: marshal json: %w", err)
	}
	return append(payload, '\n'), nil
}
