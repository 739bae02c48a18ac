package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	st, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestGetPutDelete(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "db"))
	defer st.Close()

	if _, ok, err := st.Get(NSTune, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := st.Put(NSTune, "a", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := st.Get(NSTune, "a")
	if err != nil || !ok || string(v) != "one" {
		t.Fatalf("Get: got %q ok=%v err=%v", v, ok, err)
	}
	if err := st.Put(NSTune, "a", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = st.Get(NSTune, "a")
	if string(v) != "two" {
		t.Fatalf("overwrite not visible: %q", v)
	}
	if err := st.Delete(NSTune, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := st.Get(NSTune, "a"); ok {
		t.Fatal("record survived delete")
	}
	// deleting an absent key is a no-op
	if err := st.Delete(NSTune, "a"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestScanOrderAndIsolation(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "db"))
	defer st.Close()

	for _, k := range []string{"c", "a", "b"} {
		if err := st.Put(NSSession, k, []byte("s-"+k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	// neighbours in other namespaces must not leak into the scan
	if err := st.Put(NSTune, "zzz", []byte("t")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(NSProfile, "aaa", []byte("p")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var keys []string
	err := st.Scan(NSSession, func(k string, v []byte) (bool, error) {
		keys = append(keys, k)
		return true, nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("scan keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("scan order = %v, want %v", keys, want)
		}
	}

	// early exit
	n := 0
	_ = st.Scan(NSSession, func(string, []byte) (bool, error) {
		n++
		return false, nil
	})
	if n != 1 {
		t.Fatalf("early exit visited %d records", n)
	}
}

func TestCountAndIsEmpty(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "db"))
	defer st.Close()

	empty, err := st.IsEmpty(NSForum)
	if err != nil || !empty {
		t.Fatalf("fresh namespace not empty: %v %v", empty, err)
	}
	for i := 0; i < 5; i++ {
		_ = st.Put(NSForum, string(rune('a'+i)), []byte("x"))
	}
	n, err := st.Count(NSForum)
	if err != nil || n != 5 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	empty, _ = st.IsEmpty(NSForum)
	if empty {
		t.Fatal("populated namespace reported empty")
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	st := openTestStore(t, dir)
	if err := st.Put(NSProfile, "alice", []byte(`{"username":"alice"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if st.Ready() {
		t.Fatal("closed store still ready")
	}

	st2 := openTestStore(t, dir)
	defer st2.Close()
	v, ok, err := st2.Get(NSProfile, "alice")
	if err != nil || !ok {
		t.Fatalf("record lost across reopen: ok=%v err=%v", ok, err)
	}
	if string(v) != `{"username":"alice"}` {
		t.Fatalf("record corrupted across reopen: %q", v)
	}
}
