package compilerd

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return req
}

func listStrings(t *testing.T, resp *structpb.Struct, key string) []string {
	t.Helper()
	values, err := optionalStrings(resp, key)
	require.NoError(t, err)
	return values
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status, got %v", err)
	assert.Equal(t, code, st.Code())
}

func TestServerPing(t *testing.T) {
	server := NewServer(zerolog.Nop(), WithVersion("test-version"))

	resp, err := server.Ping(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "test-version", resp.GetFields()["version"].GetStringValue())
	assert.NotEmpty(t, resp.GetFields()["started_at"].GetStringValue())
	assert.EqualValues(t, 1, resp.GetFields()["requests"].GetNumberValue())
}

func TestServerFormat(t *testing.T) {
	server := NewServer(zerolog.Nop())

	resp, err := server.Format(context.Background(), request(t, map[string]any{
		"template": "{a} {{b}} {c} {{{d}}}",
	}))
	require.NoError(t, err)
	assert.Equal(t, "{placeholder0} {{b}} {placeholder1} {{{placeholder2}}}", resp.GetFields()["normalized"].GetStringValue())
	assert.Equal(t, []string{"a", "c", "d"}, listStrings(t, resp, "arguments"))

	// empty template is valid input
	resp, err = server.Format(context.Background(), request(t, map[string]any{"template": ""}))
	require.NoError(t, err)
	assert.Empty(t, resp.GetFields()["normalized"].GetStringValue())
	assert.Empty(t, listStrings(t, resp, "arguments"))
}

func TestServerFormatInvalid(t *testing.T) {
	server := NewServer(zerolog.Nop())

	_, err := server.Format(context.Background(), &structpb.Struct{})
	requireCode(t, err, codes.InvalidArgument)

	_, err = server.Format(context.Background(), request(t, map[string]any{"template": 3}))
	requireCode(t, err, codes.InvalidArgument)

	// invalid UTF-8 would come back silently rewritten to U+FFFD
	_, err = server.Format(context.Background(), &structpb.Struct{Fields: map[string]*structpb.Value{
		"template": structpb.NewStringValue("a\xffb {x}"),
	}})
	requireCode(t, err, codes.InvalidArgument)
}

func TestServerBind(t *testing.T) {
	server := NewServer(zerolog.Nop())

	resp, err := server.Bind(context.Background(), request(t, map[string]any{
		"arguments": []any{"1", "x", "0"},
		"fields":    []any{"0", "1"},
		"affix":     true,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"_0_", "_1_"}, listStrings(t, resp, "patterns"))

	values := resp.GetFields()["keyword_args"].GetListValue().GetValues()
	require.Len(t, values, 3)
	assert.Equal(t, "placeholder0 = _1_", keywordArgFromValue(values[0]).String())
	assert.Equal(t, `placeholder1 = "x"`, keywordArgFromValue(values[1]).String())
	assert.Equal(t, "placeholder2 = _0_", keywordArgFromValue(values[2]).String())
	assert.Equal(t, -1, keywordArgFromValue(values[1]).Field)
}

func TestServerBindInvalid(t *testing.T) {
	server := NewServer(zerolog.Nop())

	_, err := server.Bind(context.Background(), request(t, map[string]any{
		"fields": []any{"a", "a"},
	}))
	requireCode(t, err, codes.InvalidArgument)

	_, err = server.Bind(context.Background(), request(t, map[string]any{
		"arguments": "a",
	}))
	requireCode(t, err, codes.InvalidArgument)

	_, err = server.Bind(context.Background(), request(t, map[string]any{
		"fields": []any{"a", 1},
	}))
	requireCode(t, err, codes.InvalidArgument)
}

func TestServerCheckUsage(t *testing.T) {
	server := NewServer(zerolog.Nop())

	resp, err := server.CheckUsage(context.Background(), request(t, map[string]any{
		"fields":         []any{"path", "mode", "owner"},
		"argument_lists": []any{[]any{"path"}, []any{}, []any{"owner", "x"}},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"mode"}, listStrings(t, resp, "unused"))

	_, err = server.CheckUsage(context.Background(), request(t, map[string]any{
		"argument_lists": []any{"path"},
	}))
	requireCode(t, err, codes.InvalidArgument)
}

const storageYAML = `
name: BlobError
package: blob
variants:
  - name: Missing
    fields:
      - {name: key, type: string}
      - {name: bucket, type: string}
    error: "blob {key} not found"
    debug: "check {buckt}"
`

func TestServerGenerate(t *testing.T) {
	server := NewServer(zerolog.Nop())

	resp, err := server.Generate(context.Background(), request(t, map[string]any{
		"declaration": storageYAML,
	}))
	require.NoError(t, err)

	fields := resp.GetFields()
	assert.Equal(t, "BlobError", fields["declaration"].GetStringValue())
	assert.Equal(t, "blob_error_faultgen.go", fields["file_name"].GetStringValue())
	assert.Contains(t, fields["source"].GetStringValue(), "type BlobErrorMissing struct")
	assert.EqualValues(t, 1, fields["variants"].GetNumberValue())

	unused := fields["unused"].GetListValue().GetValues()
	require.Len(t, unused, 1)
	field := unusedFieldFromValue(unused[0])
	assert.Equal(t, "Missing", field.Variant)
	assert.Equal(t, "bucket", field.Field)
	assert.Equal(t, "buckt", field.Suggestion)
}

func TestServerGenerateInvalid(t *testing.T) {
	server := NewServer(zerolog.Nop())

	_, err := server.Generate(context.Background(), &structpb.Struct{})
	requireCode(t, err, codes.InvalidArgument)

	_, err = server.Generate(context.Background(), request(t, map[string]any{
		"declaration": "name: lower\npackage: x\nvariants: []\n",
	}))
	requireCode(t, err, codes.InvalidArgument)
}
