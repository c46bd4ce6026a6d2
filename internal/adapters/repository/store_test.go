package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/skinsight/internal/adapters/blob"
	"github.com/okian/skinsight/internal/adapters/repository"
	"github.com/okian/skinsight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var pngContent = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

// failingBlobs fails every write.
type failingBlobs struct{ *blob.MemoryStore }

func (failingBlobs) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("disk full")
}

// gatedBlobs blocks writes until release is closed.
type gatedBlobs struct {
	*blob.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBlobs) Put(ctx context.Context, key string, content []byte, ct string) (string, error) {
	close(g.entered)
	<-g.release
	return g.MemoryStore.Put(ctx, key, content, ct)
}

func fixedID(id string) repository.IDFunc {
	return func() string { return id }
}

func TestImageStore_Accept(t *testing.T) {
	Convey("Given an image store on a temp directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		files, err := blob.NewFileStore(dir)
		So(err, ShouldBeNil)
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		store, err := repository.NewImageStore(files, repository.WithClock(func() time.Time { return created }))
		So(err, ShouldBeNil)

		Convey("When a PNG is accepted", func() {
			id, err := store.Accept(ctx, "Face.PNG", pngContent)
			So(err, ShouldBeNil)

			Convey("Then the id should be eight hex characters", func() {
				So(id, ShouldHaveLength, 8)
				So(id, ShouldNotContainSubstring, "-")
			})

			Convey("Then the bytes should be on disk under id plus lowercase extension", func() {
				onDisk, err := os.ReadFile(filepath.Join(dir, id+".png"))
				So(err, ShouldBeNil)
				So(onDisk, ShouldResemble, pngContent)
			})

			Convey("Then Lookup should return the full record", func() {
				rec, err := store.Lookup(ctx, id)
				So(err, ShouldBeNil)
				So(rec.ID, ShouldEqual, id)
				So(rec.OriginalFilename, ShouldEqual, "Face.PNG")
				So(rec.Extension, ShouldEqual, ".png")
				So(rec.StorageLocation, ShouldEqual, filepath.Join(dir, id+".png"))
				So(rec.Size, ShouldEqual, int64(len(pngContent)))
				So(rec.ContentType, ShouldEqual, "image/png")
				So(rec.CreatedAt, ShouldEqual, created)
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.Backend(), ShouldEqual, "fs")
			})
		})

		Convey("When content is empty", func() {
			_, err := store.Accept(ctx, "a.png", nil)
			So(errors.Is(err, repository.ErrEmptyContent), ShouldBeTrue)
		})
	})

	Convey("Given a store whose id generator repeats", t, func() {
		ctx := context.Background()
		mem := blob.NewMemoryStore()
		store, _ := repository.NewImageStore(mem, repository.WithIDFunc(fixedID("deadbeef")))

		first, err := store.Accept(ctx, "a.png", pngContent)
		So(err, ShouldBeNil)
		So(first, ShouldEqual, "deadbeef")

		Convey("When a second image draws the same id", func() {
			other := append([]byte(nil), pngContent...)
			other[9] = 0x42
			_, err := store.Accept(ctx, "b.png", other)

			Convey("Then it should fail without overwriting the first", func() {
				So(errors.Is(err, repository.ErrIDCollision), ShouldBeTrue)
				stored, err := mem.Get(ctx, "deadbeef.png")
				So(err, ShouldBeNil)
				So(stored, ShouldResemble, pngContent)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a blob backend that fails", t, func() {
		ctx := context.Background()
		store, _ := repository.NewImageStore(failingBlobs{blob.NewMemoryStore()}, repository.WithIDFunc(fixedID("cafebabe")))

		Convey("When an image is accepted", func() {
			_, err := store.Accept(ctx, "a.png", pngContent)

			Convey("Then no record should be visible and the id should be free again", func() {
				So(err, ShouldNotBeNil)
				_, lerr := store.Lookup(ctx, "cafebabe")
				So(errors.Is(lerr, model.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a nil blob store", t, func() {
		_, err := repository.NewImageStore(nil)
		So(errors.Is(err, repository.ErrNoBlobStore), ShouldBeTrue)
	})
}

func TestImageStore_Visibility(t *testing.T) {
	Convey("Given a store whose blob write is in progress", t, func() {
		ctx := context.Background()
		gated := &gatedBlobs{
			MemoryStore: blob.NewMemoryStore(),
			entered:     make(chan struct{}),
			release:     make(chan struct{}),
		}
		store, _ := repository.NewImageStore(gated, repository.WithIDFunc(fixedID("0badf00d")))

		done := make(chan error, 1)
		go func() {
			_, err := store.Accept(ctx, "a.png", pngContent)
			done <- err
		}()
		<-gated.entered

		Convey("Then the id should not be visible until the write completes", func() {
			_, err := store.Lookup(ctx, "0badf00d")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)

			close(gated.release)
			So(<-done, ShouldBeNil)

			rec, err := store.Lookup(ctx, "0badf00d")
			So(err, ShouldBeNil)
			So(rec.Size, ShouldEqual, int64(len(pngContent)))
		})
	})
}

func TestImageStore_Lookup(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store, _ := repository.NewImageStore(blob.NewMemoryStore())

		Convey("When an unknown id is looked up", func() {
			_, err := store.Lookup(context.Background(), "doesnotexist")

			Convey("Then a not-found error naming the id should be returned", func() {
				var nf *model.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.ID, ShouldEqual, "doesnotexist")
			})
		})
	})
}

func TestImageStore_Concurrent(t *testing.T) {
	Convey("Given many concurrent uploads", t, func() {
		ctx := context.Background()
		store, _ := repository.NewImageStore(blob.NewMemoryStore())
		const n = 64

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			ids = make(map[string]struct{}, n)
		)
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, err := store.Accept(ctx, fmt.Sprintf("img-%d.png", i), pngContent)
				if err != nil {
					errs <- err
					return
				}
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}(i)
		}
		wg.Wait()
		close(errs)

		Convey("Then every upload should get a distinct visible id", func() {
			So(len(errs), ShouldEqual, 0)
			So(len(ids), ShouldEqual, n)
			So(store.Count(ctx), ShouldEqual, n)
			for id := range ids {
				_, err := store.Lookup(ctx, id)
				So(err, ShouldBeNil)
			}
		})
	})
}

func TestNewID(t *testing.T) {
	Convey("NewID should produce eight lowercase hex characters", t, func() {
		for i := 0; i < 50; i++ {
			id := repository.NewID()
			So(id, ShouldHaveLength, 8)
			for _, r := range id {
				So((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'), ShouldBeTrue)
			}
		}
	})
}
