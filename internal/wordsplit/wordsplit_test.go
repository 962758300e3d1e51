package wordsplit

import (
	"reflect"
	"testing"
)

func TestSplitBasic(t *testing.T) {
	got := Split("cmd arg1 arg2")
	want := []string{"cmd", "arg1", "arg2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitQuotedArgs(t *testing.T) {
	got := Split(`cmd "arg with spaces"`)
	want := []string{"cmd", "arg with spaces"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitCommandSubstitution(t *testing.T) {
	got := Split("echo $(get-value)")
	want := []string{"echo", "$(get-value)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitCommandSubstitutionWithSpaces(t *testing.T) {
	got := Split("echo $(my-command with some args)")
	want := []string{"echo", "$(my-command with some args)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitNestedParens(t *testing.T) {
	got := Split("echo $(outer (inner))")
	want := []string{"echo", "$(outer (inner))"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitEscapedDollar(t *testing.T) {
	got := Split(`echo \$notacommand`)
	want := []string{"echo", "$notacommand"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitMultipleCommandSubstitutions(t *testing.T) {
	got := Split("cmd $(first) $(second arg)")
	want := []string{"cmd", "$(first)", "$(second arg)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitSingleQuotesLiteral(t *testing.T) {
	got := Split(`echo '\n'`)
	want := []string{"echo", `\n`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitSingleQuotesNoEscape(t *testing.T) {
	got := Split(`echo 'a\tb\nc'`)
	want := []string{"echo", `a\tb\nc`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitEmptyInputReturnsOriginal(t *testing.T) {
	got := Split("")
	want := []string{""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitWhitespaceOnlyReturnsOriginal(t *testing.T) {
	got := Split("   ")
	want := []string{"   "}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
