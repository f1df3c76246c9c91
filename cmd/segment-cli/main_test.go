package main

import (
	"reflect"
	"testing"

	"github.com/segment-dev/segment/frame"
)

func strFrames(ss ...string) []frame.Frame {
	out := make([]frame.Frame, len(ss))
	for i, s := range ss {
		out[i] = frame.String(s)
	}
	return out
}

func TestTokenizeCommand_WithoutQuotes(t *testing.T) {
	got := tokenizeCommand("set keyspace key value")
	want := strFrames("set", "keyspace", "key", "value")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeCommand_AllQuotes(t *testing.T) {
	got := tokenizeCommand(`"set" "keyspace" "key" "value"`)
	want := strFrames("set", "keyspace", "key", "value")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeCommand_IrregularSpaces(t *testing.T) {
	got := tokenizeCommand(`"set"         "keyspace"     "key"       "value"`)
	want := strFrames("set", "keyspace", "key", "value")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeCommand_QuoteInCommandMismatches(t *testing.T) {
	got := tokenizeCommand(`"set"" "keyspace" "key" "value"`)
	want := strFrames("set", "keyspace", "key", "value")
	if reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, did not expect it to match %v", got, want)
	}
}

func TestTokenizeCommand_SpaceInKey(t *testing.T) {
	got := tokenizeCommand(`"set" "keyspace" "this is a key" "value"`)
	want := strFrames("set", "keyspace", "this is a key", "value")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeCommand_SpaceInAllTokens(t *testing.T) {
	got := tokenizeCommand(`"set command" "random keyspace" "this is a key" "this is a value"`)
	want := strFrames("set command", "random keyspace", "this is a key", "this is a value")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
