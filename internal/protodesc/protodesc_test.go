package protodesc

import (
	"testing"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typefit/internal/checker"
	"github.com/funvibe/typefit/internal/descriptor"
)

func TestLoadFiles(t *testing.T) {
	scope, err := LoadFiles([]string{"testdata"}, "library.proto")
	require.NoError(t, err)

	book, ok := scope.Lookup("library.Book")
	require.True(t, ok)
	require.Equal(t, descriptor.KindRecord, book.DescKind())
	require.Equal(t, "library.Book", book.String())

	_, ok = scope.Lookup("library.Author")
	require.True(t, ok)

	rec := book.(*descriptor.Record)
	require.False(t, rec.Total, "proto records are partial")

	title := rec.Field("title")
	require.NotNil(t, title)
	require.Equal(t, "string", title.String())

	tags := rec.Field("tags")
	require.NotNil(t, tags)
	require.Equal(t, "List<string>", tags.String())

	attrs := rec.Field("attrs")
	require.NotNil(t, attrs)
	require.Equal(t, "Map<string, string>", attrs.String())

	author := rec.Field("author")
	require.NotNil(t, author)
	require.Equal(t, `"library.Author" | nil`, author.String())
}

func TestCheckMessage(t *testing.T) {
	parser := protoparse.Parser{ImportPaths: []string{"testdata"}}
	fds, err := parser.ParseFiles("library.proto")
	require.NoError(t, err)

	bookMD := fds[0].FindMessage("library.Book")
	require.NotNil(t, bookMD)
	authorMD := fds[0].FindMessage("library.Author")
	require.NotNil(t, authorMD)

	author := dynamic.NewMessage(authorMD)
	author.SetFieldByName("name", "ada")

	book := dynamic.NewMessage(bookMD)
	book.SetFieldByName("title", "Analytical Engines")
	book.SetFieldByName("pages", int64(342))
	book.AddRepeatedFieldByName("tags", "history")
	book.AddRepeatedFieldByName("tags", "computing")
	book.PutMapFieldByName("attrs", "lang", "en")
	book.SetFieldByName("author", author)

	scope := descriptor.NewScope(nil)
	c := checker.NewCompiler(nil)
	require.NoError(t, CheckMessage(c, scope, book))

	// The first check declares the whole file into the scope.
	_, ok := scope.Lookup("library.Author")
	require.True(t, ok)
}

func TestMessageValue(t *testing.T) {
	parser := protoparse.Parser{ImportPaths: []string{"testdata"}}
	fds, err := parser.ParseFiles("library.proto")
	require.NoError(t, err)

	authorMD := fds[0].FindMessage("library.Author")
	author := dynamic.NewMessage(authorMD)
	author.SetFieldByName("name", "ada")

	v := MessageValue(author)
	require.Equal(t, "ada", v["name"])
	require.Nil(t, v["favorite"], "unset message fields convert to nil")
}

func TestRecordRejectsWrongFieldTypes(t *testing.T) {
	scope, err := LoadFiles([]string{"testdata"}, "library.proto")
	require.NoError(t, err)

	c := checker.NewCompiler(nil)
	v, err := c.Compile(scope.Ref("library.Book"), true)
	require.NoError(t, err)

	require.NoError(t, v.Check(map[string]any{
		"title": "ok",
		"pages": int64(1),
	}))

	err = v.Check(map[string]any{"pages": "many"})
	require.Error(t, err)
	require.True(t, checker.IsTypeMismatch(err))

	err = v.Check(map[string]any{"isbn": "none"})
	require.Error(t, err, "undeclared keys are rejected")
}

func TestLoadFilesMissing(t *testing.T) {
	_, err := LoadFiles([]string{"testdata"}, "nope.proto")
	require.Error(t, err)
}
