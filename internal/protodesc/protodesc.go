// Package protodesc bridges protobuf message descriptors into type
// descriptors, so dynamic protobuf messages can be validated with the
// same checker as every other value.
//
// Message types become partial records keyed by fully-qualified name;
// message-typed fields become forward references into the scope, which
// keeps recursive and mutually-recursive messages working for free.
package protodesc

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	dpb "google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/typefit/internal/checker"
	"github.com/funvibe/typefit/internal/descriptor"
)

var (
	boolDesc    = descriptor.Of(reflect.TypeOf(false))
	stringDesc  = descriptor.Of(reflect.TypeOf(""))
	bytesDesc   = descriptor.Of(reflect.TypeOf([]byte(nil)))
	int32Desc   = descriptor.Of(reflect.TypeOf(int32(0)))
	int64Desc   = descriptor.Of(reflect.TypeOf(int64(0)))
	uint32Desc  = descriptor.Of(reflect.TypeOf(uint32(0)))
	uint64Desc  = descriptor.Of(reflect.TypeOf(uint64(0)))
	float32Desc = descriptor.Of(reflect.TypeOf(float32(0)))
	float64Desc = descriptor.Of(reflect.TypeOf(float64(0)))
)

// LoadFiles parses .proto files and declares every message type they
// define (or depend on) into a fresh scope, keyed by fully-qualified
// message name.
func LoadFiles(importPaths []string, filenames ...string) (*descriptor.Scope, error) {
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(filenames...)
	if err != nil {
		return nil, fmt.Errorf("parsing proto files: %w", err)
	}

	scope := descriptor.NewScope(nil)
	seen := make(map[string]bool)
	for _, fd := range fds {
		declareFile(fd, scope, seen)
	}
	return scope, nil
}

// LoadServer pulls file descriptors for the given symbols from a
// reflection-enabled gRPC server and declares their message types into
// a fresh scope.
func LoadServer(ctx context.Context, conn *grpc.ClientConn, symbols ...string) (*descriptor.Scope, error) {
	client := grpcreflect.NewClientAuto(ctx, conn)
	defer client.Reset()

	scope := descriptor.NewScope(nil)
	seen := make(map[string]bool)
	for _, symbol := range symbols {
		fd, err := client.FileContainingSymbol(symbol)
		if err != nil {
			return nil, fmt.Errorf("resolving symbol %q: %w", symbol, err)
		}
		declareFile(fd, scope, seen)
	}
	return scope, nil
}

// CheckMessage validates a dynamic message against the record declared
// for its message type, declaring it first if the scope has not seen
// the type yet.
func CheckMessage(c *checker.Compiler, scope *descriptor.Scope, msg *dynamic.Message) error {
	md := msg.GetMessageDescriptor()
	fqn := md.GetFullyQualifiedName()
	if _, ok := scope.Lookup(fqn); !ok {
		declareFile(md.GetFile(), scope, make(map[string]bool))
	}

	v, err := c.Compile(scope.Ref(fqn), true)
	if err != nil {
		return err
	}
	return v.Check(MessageValue(msg))
}

// MessageValue converts a dynamic message into the map form the checker
// operates on. Unset message fields come back nil; repeated and map
// fields convert element-wise.
func MessageValue(msg *dynamic.Message) map[string]any {
	if msg == nil {
		return nil
	}
	out := make(map[string]any)
	for _, fld := range msg.GetMessageDescriptor().GetFields() {
		out[fld.GetName()] = fieldValue(msg.GetField(fld))
	}
	return out
}

func fieldValue(v any) any {
	switch val := v.(type) {
	case *dynamic.Message:
		if val == nil {
			return nil
		}
		return MessageValue(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = fieldValue(item)
		}
		return items
	case map[any]any:
		entries := make(map[any]any, len(val))
		for k, item := range val {
			entries[k] = fieldValue(item)
		}
		return entries
	default:
		return v
	}
}

// declareFile declares every message of fd and of its dependencies.
func declareFile(fd *desc.FileDescriptor, scope *descriptor.Scope, seen map[string]bool) {
	if fd == nil || seen[fd.GetName()] {
		return
	}
	seen[fd.GetName()] = true
	for _, dep := range fd.GetDependencies() {
		declareFile(dep, scope, seen)
	}
	for _, md := range fd.GetMessageTypes() {
		declareMessage(md, scope)
	}
}

func declareMessage(md *desc.MessageDescriptor, scope *descriptor.Scope) {
	if md.IsMapEntry() {
		return
	}
	for _, nested := range md.GetNestedMessageTypes() {
		declareMessage(nested, scope)
	}
	scope.Declare(md.GetFullyQualifiedName(), fromMessage(md, scope))
}

// fromMessage builds a partial record for md. Records are partial
// because dynamic messages materialize unset fields as defaults, and
// proto3 has no required fields to enforce.
func fromMessage(md *desc.MessageDescriptor, scope *descriptor.Scope) *descriptor.Record {
	fields := make([]descriptor.Field, 0, len(md.GetFields()))
	for _, fld := range md.GetFields() {
		fields = append(fields, descriptor.Field{
			Name: fld.GetName(),
			Desc: fieldDescriptor(fld, scope),
		})
	}
	return descriptor.RecordOf(md.GetFullyQualifiedName(), false, fields...)
}

func fieldDescriptor(fld *desc.FieldDescriptor, scope *descriptor.Scope) descriptor.Descriptor {
	if fld.IsMap() {
		entry := fld.GetMessageType()
		key := scalarDescriptor(entry.FindFieldByNumber(1), scope)
		value := scalarDescriptor(entry.FindFieldByNumber(2), scope)
		return descriptor.MapOf(key, value)
	}

	elem := scalarDescriptor(fld, scope)
	if fld.IsRepeated() {
		return descriptor.ListOf(elem)
	}
	return elem
}

func scalarDescriptor(fld *desc.FieldDescriptor, scope *descriptor.Scope) descriptor.Descriptor {
	switch fld.GetType() {
	case dpb.FieldDescriptorProto_TYPE_BOOL:
		return boolDesc
	case dpb.FieldDescriptorProto_TYPE_STRING:
		return stringDesc
	case dpb.FieldDescriptorProto_TYPE_BYTES:
		return bytesDesc
	case dpb.FieldDescriptorProto_TYPE_INT32, dpb.FieldDescriptorProto_TYPE_SINT32,
		dpb.FieldDescriptorProto_TYPE_SFIXED32, dpb.FieldDescriptorProto_TYPE_ENUM:
		return int32Desc
	case dpb.FieldDescriptorProto_TYPE_INT64, dpb.FieldDescriptorProto_TYPE_SINT64,
		dpb.FieldDescriptorProto_TYPE_SFIXED64:
		return int64Desc
	case dpb.FieldDescriptorProto_TYPE_UINT32, dpb.FieldDescriptorProto_TYPE_FIXED32:
		return uint32Desc
	case dpb.FieldDescriptorProto_TYPE_UINT64, dpb.FieldDescriptorProto_TYPE_FIXED64:
		return uint64Desc
	case dpb.FieldDescriptorProto_TYPE_FLOAT:
		return float32Desc
	case dpb.FieldDescriptorProto_TYPE_DOUBLE:
		return float64Desc
	case dpb.FieldDescriptorProto_TYPE_MESSAGE, dpb.FieldDescriptorProto_TYPE_GROUP:
		// Unset message fields are nil, and recursion must stay lazy.
		return descriptor.Optional(scope.Ref(fld.GetMessageType().GetFullyQualifiedName()))
	default:
		return descriptor.Any()
	}
}
