package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const tableAgentPrompt = `You are working with a table of data loaded from a CSV file.
You can inspect it with describe_dataframe and compute over it with evaluate_expression.
Expressions use the expr language and see these variables:
  rows      - list of rows, each a map from column name to value
  columns   - list of column names
  row_count - number of rows
Examples: mean(map(rows, .age)), count(rows, .age > 30), filter(rows, .name == "Alice")
Always compute values with a tool instead of guessing, then give a short final answer.

%s`

const describeHeadRows = 5

// TableAgent answers questions about tabular data by letting the model call
// a restricted expression evaluator over the rows. Expressions cannot touch
// the filesystem, network or processes. An evaluation that outlives
// evalTimeout is reported to the model but not stopped.
type TableAgent struct {
	llm           *OpenAIService
	maxIterations int
	evalTimeout   time.Duration
}

func NewTableAgent(llm *OpenAIService, maxIterations int, evalTimeout time.Duration) *TableAgent {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	if evalTimeout <= 0 {
		evalTimeout = 5 * time.Second
	}
	return &TableAgent{
		llm:           llm,
		maxIterations: maxIterations,
		evalTimeout:   evalTimeout,
	}
}

type evaluateArgs struct {
	Expression string `json:"expression"`
}

func (a *TableAgent) Run(ctx context.Context, df *DataFrame, query string) (string, error) {
	env := map[string]any{
		"rows":      df.Rows(),
		"columns":   df.Columns(),
		"row_count": df.NumRows(),
	}

	tools := NewToolSet()
	tools.Register(
		"describe_dataframe",
		"Returns the column names, inferred column types, row count and the first rows of the table.",
		jsonschema.Definition{Type: jsonschema.Object, Properties: map[string]jsonschema.Definition{}},
		func(ctx context.Context, args []byte) (string, error) {
			return df.Describe(describeHeadRows), nil
		},
	)
	tools.Register(
		"evaluate_expression",
		"Evaluates an expr-language expression over the table and returns the result.",
		jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"expression": {
					Type:        jsonschema.String,
					Description: "Expression to evaluate, e.g. mean(map(rows, .age))",
				},
			},
			Required: []string{"expression"},
		},
		func(ctx context.Context, args []byte) (string, error) {
			var in evaluateArgs
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("invalid arguments: %v", err)
			}
			return EvaluateExpression(ctx, in.Expression, env, a.evalTimeout)
		},
	)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(tableAgentPrompt, df.Describe(describeHeadRows))},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}
	return a.llm.RunTools(ctx, messages, tools, a.maxIterations, zeroTemperature)
}

// EvaluateExpression compiles and runs code against env, giving up after
// timeout or when ctx ends. expr cannot interrupt a running program, so on
// timeout the evaluation goroutine is abandoned and keeps running until it
// finishes or hits expr's memory budget.
func EvaluateExpression(ctx context.Context, code string, env map[string]any, timeout time.Duration) (string, error) {
	if code == "" {
		return "", errors.New("expression is empty")
	}
	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return "", err
	}

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("evaluation panicked: %v", r)}
			}
		}()
		value, err := expr.Run(program, env)
		done <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("evaluation exceeded %s", timeout)
	case out := <-done:
		if out.err != nil {
			return "", out.err
		}
		return formatValue(out.value), nil
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []any, []string, map[string]any, []map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
