package pathspec_test

import (
	"reflect"
	"testing"

	"slate/internal/pathspec"
)

func TestParseTokenizesLiteralsAndVariables(t *testing.T) {
	parsed := pathspec.Parse("/projects/{PROJECT}/assets/{ASSET_NAME}")

	kinds := make([]pathspec.TokenKind, 0, len(parsed.Tokens))
	contents := make([]string, 0, len(parsed.Tokens))
	for _, token := range parsed.Tokens {
		kinds = append(kinds, token.Kind)
		contents = append(contents, token.Content)
	}

	wantKinds := []pathspec.TokenKind{
		pathspec.TokenLiteral,
		pathspec.TokenVariable,
		pathspec.TokenLiteral,
		pathspec.TokenVariable,
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("unexpected token kinds: %v", kinds)
	}
	wantContents := []string{"/projects/", "PROJECT", "/assets/", "ASSET_NAME"}
	if !reflect.DeepEqual(contents, wantContents) {
		t.Fatalf("unexpected token contents: %v", contents)
	}
}

func TestParseRecordsSourceSpans(t *testing.T) {
	parsed := pathspec.Parse("x/{NAME}")
	if len(parsed.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(parsed.Tokens))
	}
	variable := parsed.Tokens[1]
	if variable.Start != 2 || variable.End != 8 {
		t.Fatalf("unexpected span: %d..%d", variable.Start, variable.End)
	}
}

func TestParseTreatsMalformedPlaceholdersAsLiteral(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"lowercase", "/projects/{project}/work"},
		{"leading underscore", "/projects/{_NAME}/work"},
		{"leading digit", "/projects/{1NAME}/work"},
		{"unclosed", "/projects/{PROJECT/work"},
		{"empty braces", "/projects/{}/work"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := pathspec.Parse(tc.raw)
			if len(parsed.Variables()) != 0 {
				t.Fatalf("expected no variables, got %v", parsed.Variables())
			}
			var rebuilt string
			for _, token := range parsed.Tokens {
				if token.Kind != pathspec.TokenLiteral {
					t.Fatalf("expected only literal tokens, got %v", token)
				}
				rebuilt += token.Content
			}
			if rebuilt != tc.raw {
				t.Fatalf("literal round-trip mismatch: %q != %q", rebuilt, tc.raw)
			}
		})
	}
}

func TestParseMergesDuplicateReferences(t *testing.T) {
	parsed := pathspec.Parse("/{PROJECT}/renders/{PROJECT}/{VERSION}")
	want := []string{"PROJECT", "VERSION"}
	if !reflect.DeepEqual(parsed.Variables(), want) {
		t.Fatalf("unexpected variable set: %v", parsed.Variables())
	}
	if !parsed.References("PROJECT") || parsed.References("SHOT") {
		t.Fatal("References gave wrong answers")
	}
}
