package compilerd

import (
	"context"
	"os"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/codegen"
	"github.com/opencode-ai/faultgen/internal/compiler"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

// Server implements CompilerServer.
type Server struct {
	logger    zerolog.Logger
	compiler  *compiler.Compiler
	startedAt time.Time
	hostname  string
	version   string
	requests  atomic.Int64
}

var _ CompilerServer = (*Server)(nil)

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the reported service version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates the compile service implementation.
func NewServer(logger zerolog.Logger, opts ...ServerOption) *Server {
	hostname, _ := os.Hostname()

	s := &Server{
		logger:    logger,
		compiler:  compiler.New(logger),
		startedAt: time.Now(),
		hostname:  hostname,
		version:   "dev",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ping is a simple health check.
func (s *Server) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.requests.Add(1)
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"version":    structpb.NewStringValue(s.version),
		"hostname":   structpb.NewStringValue(s.hostname),
		"started_at": structpb.NewStringValue(s.startedAt.UTC().Format(time.RFC3339)),
		"requests":   structpb.NewNumberValue(float64(s.requests.Load())),
	}}, nil
}

// Format normalizes {"template"} into {"normalized", "arguments"}.
func (s *Server) Format(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.requests.Add(1)
	template, err := requireString(req, "template")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !utf8.ValidString(template) {
		return nil, status.Error(codes.InvalidArgument, "template is not valid UTF-8")
	}

	normalized, args := placeholder.FormatCached(template)
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"normalized": structpb.NewStringValue(normalized),
		"arguments":  stringsValue(args),
	}}, nil
}

// Bind resolves {"arguments", "fields", "affix"} into
// {"patterns", "keyword_args"}.
func (s *Server) Bind(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.requests.Add(1)
	args, err := optionalStrings(req, "arguments")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	fields, err := optionalStrings(req, "fields")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	affix, err := optionalBool(req, "affix")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if dup, ok := firstDuplicate(fields); ok {
		return nil, status.Errorf(codes.InvalidArgument, "duplicate field %q", dup)
	}

	patterns, kwargs := placeholder.Bind(args, fields, affix)
	values := make([]*structpb.Value, len(kwargs))
	for i, kwarg := range kwargs {
		values[i] = keywordArgValue(kwarg)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"patterns":     stringsValue(patterns),
		"keyword_args": listValue(values),
	}}, nil
}

// CheckUsage reports fields of {"fields"} not referenced by any list in
// {"argument_lists"}.
func (s *Server) CheckUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.requests.Add(1)
	fields, err := optionalStrings(req, "fields")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var argLists [][]string
	if v, ok := req.GetFields()["argument_lists"]; ok {
		lists := v.GetListValue()
		if lists == nil {
			return nil, status.Error(codes.InvalidArgument, "argument_lists must be a list")
		}
		for i, item := range lists.GetValues() {
			args, err := valueStrings(item, "argument_lists")
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "argument_lists[%d]: %v", i, err)
			}
			argLists = append(argLists, args)
		}
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"unused": stringsValue(placeholder.UnusedFields(fields, argLists...)),
	}}, nil
}

// Generate compiles a YAML declaration from {"declaration", "colorize"} and
// returns the generated source. Unused fields are reported, not rejected.
func (s *Server) Generate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.requests.Add(1)
	text, err := requireString(req, "declaration")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	colorize, err := optionalBool(req, "colorize")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	decl, err := catalog.ParseDeclaration([]byte(text))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	fault, err := s.compiler.Compile(decl)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	src, err := codegen.Generate(fault, codegen.Options{Colorize: colorize})
	if err != nil {
		s.logger.Error().Err(err).Str("declaration", decl.Name).Msg("code generation failed")
		return nil, status.Error(codes.Internal, err.Error())
	}

	unused := make([]*structpb.Value, len(fault.Unused))
	for i, field := range fault.Unused {
		unused[i] = unusedFieldValue(field)
	}

	s.logger.Debug().Str("declaration", decl.Name).Int("variants", len(fault.Variants)).Msg("generated declaration")

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"declaration": structpb.NewStringValue(decl.Name),
		"file_name":   structpb.NewStringValue(codegen.OutputFileName(fault)),
		"source":      structpb.NewStringValue(string(src)),
		"variants":    structpb.NewNumberValue(float64(len(fault.Variants))),
		"unused":      listValue(unused),
	}}, nil
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return "", false
}
