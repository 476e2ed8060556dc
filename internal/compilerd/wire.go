package compilerd

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/opencode-ai/faultgen/internal/compiler"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

func stringsValue(values []string) *structpb.Value {
	list := make([]*structpb.Value, len(values))
	for i, v := range values {
		list[i] = structpb.NewStringValue(v)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: list})
}

func listValue(values []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func structValue(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

// requireString reads a string field that must be present. Empty strings are
// valid values.
func requireString(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return str.StringValue, nil
}

func optionalBool(s *structpb.Struct, key string) (bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%s must be a bool", key)
	}
	return b.BoolValue, nil
}

// optionalStrings reads a list of strings; a missing field is an empty list.
func optionalStrings(s *structpb.Struct, key string) ([]string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return []string{}, nil
	}
	return valueStrings(v, key)
}

func valueStrings(v *structpb.Value, key string) ([]string, error) {
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", key)
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		str, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, str.StringValue)
	}
	return out, nil
}

func keywordArgValue(arg placeholder.KeywordArg) *structpb.Value {
	fields := map[string]*structpb.Value{
		"marker": structpb.NewStringValue(arg.Marker),
		"kind":   structpb.NewStringValue(arg.Kind.String()),
		"field":  structpb.NewNumberValue(float64(arg.Field)),
	}
	if arg.Kind == placeholder.ArgField {
		fields["pattern"] = structpb.NewStringValue(arg.Pattern)
	} else {
		fields["literal"] = structpb.NewStringValue(arg.Literal)
	}
	return structValue(fields)
}

func keywordArgFromValue(v *structpb.Value) placeholder.KeywordArg {
	fields := v.GetStructValue().GetFields()
	arg := placeholder.KeywordArg{
		Marker: fields["marker"].GetStringValue(),
		Field:  int(fields["field"].GetNumberValue()),
	}
	if fields["kind"].GetStringValue() == placeholder.ArgField.String() {
		arg.Kind = placeholder.ArgField
		arg.Pattern = fields["pattern"].GetStringValue()
	} else {
		arg.Kind = placeholder.ArgLiteral
		arg.Literal = fields["literal"].GetStringValue()
	}
	return arg
}

func unusedFieldValue(field compiler.UnusedField) *structpb.Value {
	return structValue(map[string]*structpb.Value{
		"variant":    structpb.NewStringValue(field.Variant),
		"field":      structpb.NewStringValue(field.Field),
		"suggestion": structpb.NewStringValue(field.Suggestion),
	})
}

func unusedFieldFromValue(v *structpb.Value) compiler.UnusedField {
	fields := v.GetStructValue().GetFields()
	return compiler.UnusedField{
		Variant:    fields["variant"].GetStringValue(),
		Field:      fields["field"].GetStringValue(),
		Suggestion: fields["suggestion"].GetStringValue(),
	}
}
