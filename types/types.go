package types

import (
	"context"
)

// FunctionHandler handles one tool call issued by the model. args is the raw
// JSON argument object; the returned string is sent back as the tool output.
type FunctionHandler func(ctx context.Context, args []byte) (string, error)
