package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional expression fields with
// zero-width placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file; an omitted optional one has
	// a range whose start and end byte are the same.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// decodeReturnCodes evaluates a literal list of exit codes. An omitted
// attribute yields nil so callers can fall back to a broader default.
func decodeReturnCodes(ctx context.Context, expr hcl.Expression, attrName string) ([]int, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate %s: %w", attrName, diags)
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return nil, fmt.Errorf("%s must be a known list of integers", attrName)
	}

	list, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("%s must be a list of integers: %w", attrName, err)
	}

	var codes []int
	if err := gocty.FromCtyValue(list, &codes); err != nil {
		return nil, fmt.Errorf("%s must be a list of integers: %w", attrName, err)
	}
	return codes, nil
}
