package compilerd

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opencode-ai/faultgen/internal/compiler"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

// Client is a typed client for the compile service.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// PingResult describes a running service.
type PingResult struct {
	Version   string
	Hostname  string
	StartedAt time.Time
	Requests  int64
}

// GenerateResult is the output of a remote generation.
type GenerateResult struct {
	Declaration string
	FileName    string
	Source      string
	Variants    int
	Unused      []compiler.UnusedField
}

func (c *Client) call(ctx context.Context, method string, fields map[string]*structpb.Value) (*structpb.Struct, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, &structpb.Struct{Fields: fields}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ping checks the service is up.
func (c *Client) Ping(ctx context.Context) (*PingResult, error) {
	resp, err := c.call(ctx, MethodPing, nil)
	if err != nil {
		return nil, err
	}
	fields := resp.GetFields()
	result := &PingResult{
		Version:  fields["version"].GetStringValue(),
		Hostname: fields["hostname"].GetStringValue(),
		Requests: int64(fields["requests"].GetNumberValue()),
	}
	if t, err := time.Parse(time.RFC3339, fields["started_at"].GetStringValue()); err == nil {
		result.StartedAt = t
	}
	return result, nil
}

// Format normalizes a template remotely.
func (c *Client) Format(ctx context.Context, template string) (string, []string, error) {
	resp, err := c.call(ctx, MethodFormat, map[string]*structpb.Value{
		"template": structpb.NewStringValue(template),
	})
	if err != nil {
		return "", nil, err
	}
	args, err := optionalStrings(resp, "arguments")
	if err != nil {
		return "", nil, err
	}
	return resp.GetFields()["normalized"].GetStringValue(), args, nil
}

// Bind resolves arguments against fields remotely.
func (c *Client) Bind(ctx context.Context, args, fields []string, affix bool) ([]string, []placeholder.KeywordArg, error) {
	resp, err := c.call(ctx, MethodBind, map[string]*structpb.Value{
		"arguments": stringsValue(args),
		"fields":    stringsValue(fields),
		"affix":     structpb.NewBoolValue(affix),
	})
	if err != nil {
		return nil, nil, err
	}
	patterns, err := optionalStrings(resp, "patterns")
	if err != nil {
		return nil, nil, err
	}
	values := resp.GetFields()["keyword_args"].GetListValue().GetValues()
	kwargs := make([]placeholder.KeywordArg, len(values))
	for i, v := range values {
		kwargs[i] = keywordArgFromValue(v)
	}
	return patterns, kwargs, nil
}

// CheckUsage returns the fields no argument list references.
func (c *Client) CheckUsage(ctx context.Context, fields []string, argLists ...[]string) ([]string, error) {
	lists := make([]*structpb.Value, len(argLists))
	for i, args := range argLists {
		lists[i] = stringsValue(args)
	}
	resp, err := c.call(ctx, MethodCheckUsage, map[string]*structpb.Value{
		"fields":         stringsValue(fields),
		"argument_lists": listValue(lists),
	})
	if err != nil {
		return nil, err
	}
	return optionalStrings(resp, "unused")
}

// Generate compiles a YAML declaration remotely.
func (c *Client) Generate(ctx context.Context, declaration string, colorize bool) (*GenerateResult, error) {
	resp, err := c.call(ctx, MethodGenerate, map[string]*structpb.Value{
		"declaration": structpb.NewStringValue(declaration),
		"colorize":    structpb.NewBoolValue(colorize),
	})
	if err != nil {
		return nil, err
	}
	fields := resp.GetFields()
	result := &GenerateResult{
		Declaration: fields["declaration"].GetStringValue(),
		FileName:    fields["file_name"].GetStringValue(),
		Source:      fields["source"].GetStringValue(),
		Variants:    int(fields["variants"].GetNumberValue()),
	}
	for _, v := range fields["unused"].GetListValue().GetValues() {
		result.Unused = append(result.Unused, unusedFieldFromValue(v))
	}
	return result, nil
}
