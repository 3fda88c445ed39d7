package normalize

import "testing"

func TestHeadersTrimsAndNamesBlankColumns(t *testing.T) {
	in := [][]byte{[]byte(" id "), []byte(""), []byte("amount")}
	out, dup := Headers(in)
	if dup != nil {
		t.Fatalf("unexpected duplicate: %v", dup)
	}
	if string(out[0]) != "id" || string(out[1]) != "__rvl_col_2" || string(out[2]) != "amount" {
		t.Fatalf("Headers = %q, want [id __rvl_col_2 amount]", out)
	}
}

func TestHeadersRejectsExactDuplicates(t *testing.T) {
	in := [][]byte{[]byte("id"), []byte("amount"), []byte("id")}
	_, dup := Headers(in)
	if dup == nil {
		t.Fatalf("Headers() dup = nil, want a DuplicateHeader error")
	}
	if dup.FirstIndex != 1 || dup.SecondIndex != 3 || string(dup.Name) != "id" {
		t.Fatalf("dup = %+v, want first=1 second=3 name=id", dup)
	}
}

func TestHeadersDuplicateDetectionIsCaseSensitive(t *testing.T) {
	in := [][]byte{[]byte("Id"), []byte("id")}
	_, dup := Headers(in)
	if dup != nil {
		t.Fatalf("Headers() dup = %v, want nil (Id != id is case-sensitive)", dup)
	}
}
