package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/csheth/pagewise/internal/plan"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "plans.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndGetPlanRoundTripsDays(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p, err := plan.New("trimmed.pdf", "book.pdf", 23, 10, BlobKey([]byte("pdf")), time.UnixMilli(1_700_000_000_000))
	if err != nil {
		t.Fatalf("plan.New: %v", err)
	}
	quiz := []plan.QuizQuestion{{Question: "Q", Options: []string{"a", "b"}, CorrectAnswer: 1, Explanation: "b"}}
	if err := p.CompleteDay(0, 1, 420, quiz, []int{1}); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	if err := st.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	got, err := st.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.CurrentDayIndex != 1 || len(got.Days) != 3 || got.TotalPages != 23 {
		t.Fatalf("unexpected plan: %+v", got)
	}
	day := got.Days[0]
	if !day.IsCompleted || day.QuizScore == nil || *day.QuizScore != 1 || *day.TimeSpentSeconds != 420 {
		t.Fatalf("day result lost: %+v", day)
	}
	if len(day.Quiz) != 1 || day.Quiz[0].Explanation != "b" || day.UserAnswers[0] != 1 {
		t.Fatalf("quiz lost: %+v", day)
	}
	if !got.LastAccessed.Equal(p.LastAccessed) {
		t.Fatalf("last accessed = %v, want %v", got.LastAccessed, p.LastAccessed)
	}

	p.FileName = "renamed.pdf"
	if err := st.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan update: %v", err)
	}
	got, _ = st.GetPlan(ctx, p.ID)
	if got.FileName != "renamed.pdf" {
		t.Fatalf("update not applied: %q", got.FileName)
	}
}

func TestListPlansOrdersByLastAccess(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	var ids []string
	for i := 0; i < 3; i++ {
		p, _ := plan.New("f.pdf", "f.pdf", 10, 10, BlobKey([]byte{byte(i)}), base.Add(time.Duration(i)*time.Minute))
		if err := st.SavePlan(ctx, p); err != nil {
			t.Fatalf("SavePlan: %v", err)
		}
		ids = append(ids, p.ID)
	}
	if err := st.Touch(ctx, ids[0], base.Add(time.Hour)); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	plans, err := st.ListPlans(ctx)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 3 || plans[0].ID != ids[0] || plans[1].ID != ids[2] || plans[2].ID != ids[1] {
		t.Fatalf("unexpected order")
	}
	if err := st.Touch(ctx, "missing", base); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Touch(missing) = %v", err)
	}
}

func TestDeletePlanReturnsBlobKey(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key := BlobKey([]byte("shared"))
	a, _ := plan.New("a.pdf", "a.pdf", 5, 10, key, time.Now())
	b, _ := plan.New("b.pdf", "b.pdf", 5, 10, key, time.Now())
	st.SavePlan(ctx, a)
	st.SavePlan(ctx, b)

	got, err := st.DeletePlan(ctx, a.ID)
	if err != nil || got != key {
		t.Fatalf("DeletePlan = %q, %v", got, err)
	}
	if inUse, _ := st.BlobInUse(ctx, key); !inUse {
		t.Fatal("blob still referenced by plan b")
	}
	st.DeletePlan(ctx, b.ID)
	if inUse, _ := st.BlobInUse(ctx, key); inUse {
		t.Fatal("blob should be unreferenced")
	}
	if _, err := st.GetPlan(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetPlan after delete = %v", err)
	}
	if _, err := st.DeletePlan(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeletePlan = %v", err)
	}
}

func TestBlobStorePutGetDelete(t *testing.T) {
	dir := t.TempDir()
	blobs, err := NewBlobStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}
	data := []byte("%PDF-1.4\nHello")

	key, err := blobs.Put(data, "hello.pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != BlobKey(data) {
		t.Fatalf("key = %s", key)
	}
	again, err := blobs.Put(data, "hello.pdf")
	if err != nil || again != key {
		t.Fatalf("second Put = %s, %v", again, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "blobs", key+partialSuffix)); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind: %v", err)
	}

	got, err := blobs.Get(key)
	if err != nil || string(got) != string(data) {
		t.Fatalf("Get = %q, %v", got, err)
	}
	meta, err := blobs.Stat(key)
	if err != nil || meta.Name != "hello.pdf" || meta.Size != int64(len(data)) {
		t.Fatalf("Stat = %+v, %v", meta, err)
	}

	if err := blobs.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := blobs.Get(key); err == nil {
		t.Fatal("Get after delete should fail")
	}
	if err := blobs.Delete(key); err != nil {
		t.Fatalf("Delete is idempotent, got %v", err)
	}
	if _, err := blobs.Get("../../etc/passwd"); err == nil {
		t.Fatal("path-like keys must be rejected")
	}
}
