package normalize

import "testing"

func TestNormalizeRecordPadsShortRows(t *testing.T) {
	rec, err := NormalizeRecord([][]byte{[]byte("1")}, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(rec.Field(0)) != "1" {
		t.Fatalf("Field(0) = %q, want 1", rec.Field(0))
	}
	if rec.Field(1) != nil {
		t.Fatalf("Field(1) = %q, want nil (missing trailing field)", rec.Field(1))
	}
	if rec.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rec.Len())
	}
}

func TestNormalizeRecordDropsBlankTrailingExtras(t *testing.T) {
	rec, err := NormalizeRecord([][]byte{[]byte("1"), []byte("2"), []byte("  ")}, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(rec.Field(0)) != "1" || string(rec.Field(1)) != "2" {
		t.Fatalf("Field(0,1) = %q, %q, want 1, 2", rec.Field(0), rec.Field(1))
	}
}

func TestNormalizeRecordRejectsNonBlankTrailingExtra(t *testing.T) {
	_, err := NormalizeRecord([][]byte{[]byte("1"), []byte("2"), []byte("3")}, 2, 5)
	if err == nil {
		t.Fatalf("NormalizeRecord() error = nil, want a RecordWidthError")
	}
	if err.RecordNumber != 5 || err.FirstExtraIndex != 2 {
		t.Fatalf("err = %+v, want record=5 firstExtraIndex=2", err)
	}
}
