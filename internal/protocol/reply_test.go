package protocol

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/danmuck/boincctl/internal/testutil/testlog"
)

func textElement(tag, text string) *etree.Element {
	e := etree.NewElement(tag)
	e.SetText(text)
	return e
}

func TestVerifyReplySuccessOnly(t *testing.T) {
	testlog.Start(t)
	success, err := VerifyReply([]*etree.Element{etree.NewElement("success")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !success {
		t.Fatalf("expected success flag")
	}
}

func TestVerifyReplyEmptyIsNoSuccess(t *testing.T) {
	testlog.Start(t)
	success, err := VerifyReply(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if success {
		t.Fatalf("empty reply must not report success")
	}
}

func TestVerifyReplyStatusWinsRegardlessOfOtherElements(t *testing.T) {
	testlog.Start(t)
	children := []*etree.Element{
		etree.NewElement("success"),
		etree.NewElement("server_version"),
		textElement("status", "-112"),
	}
	_, err := VerifyReply(children)
	code, ok := StatusCode(err)
	if !ok {
		t.Fatalf("expected status error, got %v", err)
	}
	if code != -112 {
		t.Fatalf("unexpected status code: %d", code)
	}
}

func TestVerifyReplyStatusWithoutIntegerUsesFallback(t *testing.T) {
	testlog.Start(t)
	_, err := VerifyReply([]*etree.Element{textElement("status", "not-a-number")})
	code, ok := StatusCode(err)
	if !ok {
		t.Fatalf("expected status error, got %v", err)
	}
	if code != statusFallback {
		t.Fatalf("unexpected fallback code: %d", code)
	}
}

func TestVerifyReplyUnauthorized(t *testing.T) {
	testlog.Start(t)
	_, err := VerifyReply([]*etree.Element{etree.NewElement("unauthorized")})
	if kind, ok := KindOf(err); !ok || kind != KindAuth {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestVerifyReplyErrorTextClassification(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		text string
		kind Kind
	}{
		{"unauthorized", KindAuth},
		{"Missing authenticator", KindAuth},
		{"Missing URL", KindInvalidURL},
		{"Already attached to project", KindAlreadyAttached},
		{"something unrecognized", KindDataParse},
	}
	for _, tc := range cases {
		_, err := VerifyReply([]*etree.Element{textElement("error", tc.text)})
		kind, ok := KindOf(err)
		if !ok || kind != tc.kind {
			t.Fatalf("text %q: expected kind %v, got %v", tc.text, tc.kind, err)
		}
		var pe *Error
		if pe, ok = err.(*Error); !ok || pe.Msg != tc.text {
			t.Fatalf("text %q: error must carry the exact daemon text, got %v", tc.text, err)
		}
	}
}

func TestVerifyReplyDocumentOrderPrecedence(t *testing.T) {
	testlog.Start(t)
	// An earlier terminal element wins over a later one.
	children := []*etree.Element{
		textElement("error", "Missing URL"),
		textElement("status", "5"),
	}
	_, err := VerifyReply(children)
	if kind, ok := KindOf(err); !ok || kind != KindInvalidURL {
		t.Fatalf("expected invalid_url from first terminal element, got %v", err)
	}
}

func TestAnyTextPrefersRawPayload(t *testing.T) {
	testlog.Start(t)
	e := etree.NewElement("body")
	e.SetCData("raw & unescaped")
	text, ok := AnyText(e)
	if !ok || text != "raw & unescaped" {
		t.Fatalf("unexpected text: %q ok=%v", text, ok)
	}
	if _, ok := RawText(e); !ok {
		t.Fatalf("expected raw payload")
	}
}

func TestIntContentTrimsPadding(t *testing.T) {
	testlog.Start(t)
	v, ok := IntContent(textElement("seqno", "\n  42\n"))
	if !ok || v != 42 {
		t.Fatalf("unexpected value: %d ok=%v", v, ok)
	}
	if _, ok := IntContent(textElement("seqno", "4.2")); ok {
		t.Fatalf("non-integer content must not parse")
	}
}

func TestKindLabel(t *testing.T) {
	testlog.Start(t)
	if got := KindLabel(nil); got != "ok" {
		t.Fatalf("nil error label: %q", got)
	}
	if got := KindLabel(New(KindNetwork, "x")); got != "network" {
		t.Fatalf("network label: %q", got)
	}
}
