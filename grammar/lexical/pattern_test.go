package lexical

import (
	"errors"
	"testing"
)

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		src   string
		cause error
	}{
		{src: "a"},
		{src: ">>"},
		{src: "[0-9]+"},
		{src: "[A-Za-z_][0-9A-Za-z_]*"},
		{src: "(a|b)c?"},
		{src: `\u{3042}`},
		{src: `\u{01F600}`},
		{src: `[^"\\]`},
		{src: `\.\*\+\?\|\(\)\[\]\\`},
		{src: "{a}"},
		{src: "a-b"},
		{src: "[a-]"},
		{src: "[-a]"},
		{src: ".+"},
		{
			src:   "",
			cause: synErrNullPattern,
		},
		{
			src:   "a*",
			cause: synErrNullablePattern,
		},
		{
			src:   "(a|b?)",
			cause: synErrNullablePattern,
		},
		{
			src:   `a\`,
			cause: synErrIncompletedEscSeq,
		},
		{
			src:   `\n`,
			cause: synErrInvalidEscSeq,
		},
		{
			src:   "a|",
			cause: synErrAltLackOfOperand,
		},
		{
			src:   "|a",
			cause: synErrAltLackOfOperand,
		},
		{
			src:   "*",
			cause: synErrRepNoTarget,
		},
		{
			src:   "()",
			cause: synErrGroupNoElem,
		},
		{
			src:   "(a",
			cause: synErrGroupUnclosed,
		},
		{
			src:   "a)",
			cause: synErrGroupNoInitiator,
		},
		{
			src:   "[]",
			cause: synErrBExpNoElem,
		},
		{
			src:   "[a",
			cause: synErrBExpUnclosed,
		},
		{
			src:   "a]",
			cause: synErrBExpInvalidForm,
		},
		{
			src:   "[z-a]",
			cause: synErrRangeInvalidOrder,
		},
		{
			src:   `[^\u{0000}-\u{10FFFF}]`,
			cause: synErrUnmatchable,
		},
		{
			src:   `\u{41}`,
			cause: synErrCPExpInvalidForm,
		},
		{
			src:   `\u{110000}`,
			cause: synErrCPExpOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			err := ValidatePattern(tt.src)
			if tt.cause == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.cause) {
				t.Fatalf("unexpected error; want: %v, got: %v", tt.cause, err)
			}
		})
	}
}

func TestComplementRanges(t *testing.T) {
	comp := complementRanges([]runeRange{
		{from: 'x', to: 'z'},
		{from: 'a', to: 'c'},
		{from: 'b', to: 'd'},
	})
	expected := []runeRange{
		{from: 0, to: 'a' - 1},
		{from: 'e', to: 'x' - 1},
		{from: 'z' + 1, to: maxRune},
	}
	if len(comp) != len(expected) {
		t.Fatalf("unexpected ranges; want: %v, got: %v", expected, comp)
	}
	for i, r := range expected {
		if comp[i] != r {
			t.Fatalf("unexpected range; want: %v, got: %v", r, comp[i])
		}
	}
}
