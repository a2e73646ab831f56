package scenario

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/pdrpinto/gridwalk"
	"github.com/pdrpinto/gridwalk/internal/ctxlog"
)

// scenarioFile is the top-level structure of a scenario file for decoding.
type scenarioFile struct {
	Grid          *gridBlock    `hcl:"grid,block"`
	AgentCount    *int          `hcl:"agents,optional"`
	AvoidOccupied *bool         `hcl:"avoid_occupied,optional"`
	Agents        []*agentBlock `hcl:"agent,block"`
}

type gridBlock struct {
	Rows            *int     `hcl:"rows,optional"`
	Cols            *int     `hcl:"cols,optional"`
	WallProbability *float64 `hcl:"wall_probability,optional"`
	Seed            *int64   `hcl:"seed,optional"`
}

type agentBlock struct {
	Name        string         `hcl:"name,label"`
	Start       hcl.Expression `hcl:"start,optional"`
	Destination hcl.Expression `hcl:"destination,optional"`
}

// LoadFile reads and decodes the scenario at path.
func LoadFile(ctx context.Context, path string) (gridwalk.Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading scenario file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return gridwalk.Config{}, fmt.Errorf("failed to parse scenario %s: %w", path, diags)
	}
	return decode(ctx, file, path)
}

// Parse decodes a scenario held in memory. filename is used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (gridwalk.Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return gridwalk.Config{}, fmt.Errorf("failed to parse scenario %s: %w", filename, diags)
	}
	return decode(ctx, file, filename)
}

func decode(ctx context.Context, file *hcl.File, filename string) (gridwalk.Config, error) {
	logger := ctxlog.FromContext(ctx)

	var root scenarioFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return gridwalk.Config{}, fmt.Errorf("failed to decode scenario %s: %w", filename, diags)
	}

	cfg := gridwalk.DefaultConfig()
	if g := root.Grid; g != nil {
		if g.Rows != nil {
			cfg.Rows = *g.Rows
		}
		if g.Cols != nil {
			cfg.Cols = *g.Cols
		}
		if g.WallProbability != nil {
			cfg.WallProbability = *g.WallProbability
		}
		if g.Seed != nil {
			cfg.Seed = *g.Seed
		}
	}
	if root.AgentCount != nil {
		cfg.AgentCount = *root.AgentCount
	}
	if root.AvoidOccupied != nil {
		cfg.AvoidOccupied = *root.AvoidOccupied
	}

	// Positions may be written in terms of the final grid size.
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"rows": cty.NumberIntVal(int64(cfg.Rows)),
			"cols": cty.NumberIntVal(int64(cfg.Cols)),
		},
	}
	for _, block := range root.Agents {
		start, err := decodePos(block.Start, evalCtx)
		if err != nil {
			return gridwalk.Config{}, fmt.Errorf("scenario %s: agent %q start: %w", filename, block.Name, err)
		}
		destination, err := decodePos(block.Destination, evalCtx)
		if err != nil {
			return gridwalk.Config{}, fmt.Errorf("scenario %s: agent %q destination: %w", filename, block.Name, err)
		}
		cfg.Agents = append(cfg.Agents, gridwalk.AgentSpec{
			Name:        block.Name,
			Start:       start,
			Destination: destination,
		})
	}

	if err := cfg.Validate(); err != nil {
		return gridwalk.Config{}, fmt.Errorf("scenario %s: %w", filename, err)
	}

	logger.Debug("Scenario decoded.",
		"file", filename,
		"rows", cfg.Rows,
		"cols", cfg.Cols,
		"wall_probability", cfg.WallProbability,
		"agents", cfg.TotalAgents(),
		"pinned_agents", len(cfg.Agents),
	)
	return cfg, nil
}

// decodePos evaluates a [col, row] expression. A missing attribute yields nil.
func decodePos(expr hcl.Expression, evalCtx *hcl.EvalContext) (*gridwalk.Pos, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("position must be known at load time")
	}

	listVal, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("position must be a [col, row] list: %w", err)
	}
	var coords []int
	if err := gocty.FromCtyValue(listVal, &coords); err != nil {
		return nil, fmt.Errorf("position must hold whole numbers: %w", err)
	}
	if len(coords) != 2 {
		return nil, fmt.Errorf("position must have exactly 2 elements, got %d", len(coords))
	}
	return &gridwalk.Pos{Col: coords[0], Row: coords[1]}, nil
}
