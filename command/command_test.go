package command

import (
	"testing"

	"github.com/segment-dev/segment/frame"
	"github.com/segment-dev/segment/keyspace"
)

func parseFrame(t *testing.T, data []byte) frame.Frame {
	t.Helper()
	c := frame.NewCursor(data)
	f, err := frame.Parse(c)
	if err != nil {
		t.Fatalf("frame.Parse(%q): %v", data, err)
	}
	return f
}

func TestNew_NonArrayFrameError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("$create\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_EmptyArrayFrameError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#0\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_UnknownCommandError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#1\r\n$foo\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_CreateWithoutKeyspaceError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#1\r\n$create\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_CreateWithKeyspaceNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#2\r\n$create\r\n$foo\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Create{Keyspace: "foo", Evictor: keyspace.EvictorNoop}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_CreateNoopEvictorImplicitWithSampleSizeError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#4\r\n$create\r\n$foo\r\n$ss\r\n$100\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_CreateNoopEvictorExplicitWithSampleSizeError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#6\r\n$create\r\n$foo\r\n$ss\r\n$100\r\n$ev\r\n$noop\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_CreateLruEvictorWithSampleSizeNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#6\r\n$create\r\n$foo\r\n$ss\r\n$100\r\n$ev\r\n$lru\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Create{Keyspace: "foo", Evictor: keyspace.EvictorLru, MaxMemorySampleSize: 100}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_CreateLruEvictorWithoutSampleSizeNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#4\r\n$create\r\n$foo\r\n$ev\r\n$lru\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Create{Keyspace: "foo", Evictor: keyspace.EvictorLru, MaxMemorySampleSize: keyspace.DefaultMaxMemorySampleSize}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_CreateRandomEvictorWithSampleSizeNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#6\r\n$create\r\n$foo\r\n$ss\r\n$100\r\n$ev\r\n$random\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Create{Keyspace: "foo", Evictor: keyspace.EvictorRandom, MaxMemorySampleSize: 100}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_CreateRandomEvictorWithoutSampleSizeNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#4\r\n$create\r\n$foo\r\n$ev\r\n$random\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Create{Keyspace: "foo", Evictor: keyspace.EvictorRandom, MaxMemorySampleSize: keyspace.DefaultMaxMemorySampleSize}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_CreateInvalidSampleSizeError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#6\r\n$create\r\n$foo\r\n$ss\r\n$abc\r\n$ev\r\n$random\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_CreateNegativeSampleSizeError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#6\r\n$create\r\n$foo\r\n$ss\r\n$-10000\r\n$ev\r\n$random\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_CreateExtraArgsError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#8\r\n$create\r\n$foo\r\n$ss\r\n$100\r\n$ev\r\n$random\r\n$foo\r\n$bar\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_SetWithoutKeyspaceError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#1\r\n$set\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_SetWithoutKeyError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#2\r\n$set\r\n$keyspace\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_SetWithoutValueError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#3\r\n$set\r\n$keyspace\r\n$foo\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_SetNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#4\r\n$set\r\n$keyspace\r\n$foo\r\n$bar\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Set{Keyspace: "keyspace", Key: "foo", Value: []byte("bar")}
	gotSet, ok := got.(Set)
	if !ok || gotSet.Keyspace != want.Keyspace || gotSet.Key != want.Key || string(gotSet.Value) != string(want.Value) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_SetExtraArgsError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#5\r\n$set\r\n$keyspace\r\n$foo\r\n$bar\r\n$random\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_GetWithoutKeyspaceError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#1\r\n$get\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_GetWithoutKeyError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#2\r\n$get\r\n$keyspace\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_GetNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#3\r\n$get\r\n$keyspace\r\n$foo\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Get{Keyspace: "keyspace", Key: "foo"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_GetExtraArgsError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#4\r\n$get\r\n$keyspace\r\n$foo\r\n$bar\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_DelWithoutKeyspaceError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#1\r\n$del\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_DelWithoutKeyError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#2\r\n$del\r\n$keyspace\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_DelNoError(t *testing.T) {
	got, err := New(parseFrame(t, []byte("#3\r\n$del\r\n$keyspace\r\n$foo\r\n")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Del{Keyspace: "keyspace", Key: "foo"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNew_DelExtraArgsError(t *testing.T) {
	if _, err := New(parseFrame(t, []byte("#4\r\n$del\r\n$keyspace\r\n$foo\r\n$bar\r\n"))); err == nil {
		t.Fatal("expected error")
	}
}
