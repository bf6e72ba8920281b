package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/auth"
	"vidshare-api/internal/database"
	"vidshare-api/internal/database/sqlite"
	"vidshare-api/internal/media"
	"vidshare-api/internal/models"
	"vidshare-api/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// fakeMedia is an in-memory media.Store with injectable failures.
type fakeMedia struct {
	mu         sync.Mutex
	objects    map[string]bool
	uploads    int
	failUpload map[string]bool // by folder
	failDelete map[string]bool // by folder
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		objects:    map[string]bool{},
		failUpload: map[string]bool{},
		failDelete: map[string]bool{},
	}
}

func (f *fakeMedia) Upload(_ context.Context, folder string, file media.File) (media.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.failUpload[folder] {
		return media.Object{}, fmt.Errorf("upload to %s refused", folder)
	}
	id := fmt.Sprintf("%s/%d-%s", folder, f.uploads, file.Name)
	f.objects[id] = true
	return media.Object{URL: "http://media/" + id, PublicID: id}, nil
}

func (f *fakeMedia) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, _, _ := strings.Cut(publicID, "/")
	if f.failDelete[folder] {
		return fmt.Errorf("delete of %s refused", publicID)
	}
	delete(f.objects, publicID)
	return nil
}

func (f *fakeMedia) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fixture struct {
	store *sqlite.Store
	media *fakeMedia
	svc   *Services
}

func setupTestServices(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	fm := newFakeMedia()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := New(store, fm, tokens, Pagination{DefaultLimit: 10, MaxLimit: 100}, utils.DiscardLogger())
	svc.Users.cost = bcrypt.MinCost
	return &fixture{store: store, media: fm, svc: svc}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	session, err := f.svc.Users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return session.User
}

func file(name string) *media.File {
	return &media.File{Name: name, Size: 4, Body: strings.NewReader("data")}
}

func (f *fixture) video(t *testing.T, owner *models.User, title, description string) *models.Video {
	t.Helper()
	v, err := f.svc.Videos.Create(context.Background(), CreateVideoInput{
		Title:         title,
		Description:   description,
		OwnerUsername: owner.Username,
		Video:         file("clip.mp4"),
		Thumbnail:     file("thumb.png"),
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", title, err)
	}
	return v
}

func assertKind(t *testing.T, err error, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{DefaultLimit: 10, MaxLimit: 100}
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, -1, 1, 10},
		{2, 25, 2, 25},
		{1, 1000, 1, 100},
	}
	for _, tt := range tests {
		page, limit := p.Normalize(tt.page, tt.limit)
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Errorf("Normalize(%d, %d) = %d, %d; want %d, %d", tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestVideoCreate(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")

	t.Run("success", func(t *testing.T) {
		v := f.video(t, owner, "First", "desc")
		if !v.IsPublished || v.Views != 0 || v.Duration != 0 || v.Owner != owner.ID {
			t.Errorf("unexpected defaults %+v", v)
		}
		if f.media.count() != 2 {
			t.Errorf("expected 2 stored objects, got %d", f.media.count())
		}
		stale, _ := f.store.Intents().ListStale(ctx, time.Now().Add(time.Hour))
		if len(stale) != 0 {
			t.Errorf("intent should be cleared, got %+v", stale)
		}
	})

	t.Run("missing thumbnail", func(t *testing.T) {
		uploads := f.media.uploads
		before, _ := f.svc.Videos.List(ctx, ListVideosInput{})
		_, err := f.svc.Videos.Create(ctx, CreateVideoInput{
			Title:         "No thumb",
			OwnerUsername: owner.Username,
			Video:         file("clip.mp4"),
		})
		assertKind(t, err, apperror.ErrValidation)
		if f.media.uploads != uploads {
			t.Error("no upload should be attempted")
		}
		after, _ := f.svc.Videos.List(ctx, ListVideosInput{})
		if after.TotalVideos != before.TotalVideos {
			t.Error("no row should be created")
		}
	})

	t.Run("unknown owner uploads nothing", func(t *testing.T) {
		uploads := f.media.uploads
		_, err := f.svc.Videos.Create(ctx, CreateVideoInput{
			Title:         "Ghost",
			OwnerUsername: "nobody",
			Video:         file("clip.mp4"),
			Thumbnail:     file("thumb.png"),
		})
		assertKind(t, err, apperror.ErrNotFound)
		if f.media.uploads != uploads {
			t.Error("no upload should be attempted")
		}
	})

	t.Run("owner falls back to caller", func(t *testing.T) {
		v, err := f.svc.Videos.Create(ctx, CreateVideoInput{
			Title:     "Mine",
			OwnerID:   owner.ID,
			Duration:  12.5,
			Video:     file("clip.mov"),
			Thumbnail: file("thumb.jpg"),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if v.Owner != owner.ID || v.Duration != 12.5 {
			t.Errorf("unexpected video %+v", v)
		}
	})

	t.Run("bad extension", func(t *testing.T) {
		_, err := f.svc.Videos.Create(ctx, CreateVideoInput{
			Title:         "Doc",
			OwnerUsername: owner.Username,
			Video:         file("notes.txt"),
			Thumbnail:     file("thumb.png"),
		})
		assertKind(t, err, apperror.ErrValidation)
	})

	t.Run("thumbnail upload failure compensates", func(t *testing.T) {
		f.media.failUpload[media.FolderThumbnails] = true
		defer delete(f.media.failUpload, media.FolderThumbnails)

		objects := f.media.count()
		_, err := f.svc.Videos.Create(ctx, CreateVideoInput{
			Title:         "Broken",
			OwnerUsername: owner.Username,
			Video:         file("clip.mp4"),
			Thumbnail:     file("thumb.png"),
		})
		assertKind(t, err, apperror.ErrDependency)
		if f.media.count() != objects {
			t.Errorf("uploaded video should be deleted, have %d objects (was %d)", f.media.count(), objects)
		}
		stale, _ := f.store.Intents().ListStale(ctx, time.Now().Add(time.Hour))
		if len(stale) != 0 {
			t.Errorf("intent should be cleared, got %+v", stale)
		}
	})

	t.Run("failed compensation leaves intent", func(t *testing.T) {
		f.media.failUpload[media.FolderThumbnails] = true
		f.media.failDelete[media.FolderVideos] = true
		defer delete(f.media.failUpload, media.FolderThumbnails)
		defer delete(f.media.failDelete, media.FolderVideos)

		_, err := f.svc.Videos.Create(ctx, CreateVideoInput{
			Title:         "Orphan",
			OwnerUsername: owner.Username,
			Video:         file("clip.mp4"),
			Thumbnail:     file("thumb.png"),
		})
		assertKind(t, err, apperror.ErrDependency)
		stale, _ := f.store.Intents().ListStale(ctx, time.Now().Add(time.Hour))
		if len(stale) != 1 || stale[0].Kind != models.IntentUpload || len(stale[0].Objects) != 1 {
			t.Fatalf("expected one pending upload intent, got %+v", stale)
		}
		for _, in := range stale {
			f.store.Intents().Delete(ctx, in.ID)
		}
	})
}

func TestVideoListPagination(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")
	for i := 0; i < 25; i++ {
		f.video(t, owner, fmt.Sprintf("Video %02d", i), "")
	}

	page, err := f.svc.Videos.List(ctx, ListVideosInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Videos) != 10 || page.TotalPages != 3 || page.TotalVideos != 25 {
		t.Errorf("unexpected page: %d items, %d pages, %d total", len(page.Videos), page.TotalPages, page.TotalVideos)
	}
	if page.Videos[0].Owner.Username != "alice" {
		t.Errorf("owner profile not joined: %+v", page.Videos[0].Owner)
	}

	capped, err := f.svc.Videos.List(ctx, ListVideosInput{Limit: 5000})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if capped.Limit != 100 || capped.CurrentPage != 1 {
		t.Errorf("expected capped limit 100 on page 1, got %d/%d", capped.Limit, capped.CurrentPage)
	}

	if _, err := f.svc.Videos.List(ctx, ListVideosInput{UserID: "bogus"}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected validation error for malformed user id, got %v", err)
	}
}

func TestVideoSearch(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")

	f.video(t, owner, "Learning GO", "basics")
	f.video(t, owner, "Cooking", "a golang themed cake")
	f.video(t, owner, "Gardening", "tomatoes")
	hidden := f.video(t, owner, "Go internals", "hidden")
	if _, err := f.svc.Videos.TogglePublish(ctx, hidden.ID); err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}

	page, err := f.svc.Videos.List(ctx, ListVideosInput{Query: "go", SortBy: "title", SortType: "asc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var titles []string
	for _, v := range page.Videos {
		titles = append(titles, v.Title)
	}
	if strings.Join(titles, ",") != "Cooking,Learning GO" {
		t.Errorf("unexpected matches %v", titles)
	}
}

func TestVideoGetUpdateToggle(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")
	v := f.video(t, owner, "Original", "desc")

	if _, err := f.svc.Videos.Get(ctx, "not-an-id"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Videos.Get(ctx, f.store.NewID()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	details, err := f.svc.Videos.Get(ctx, v.ID)
	if err != nil || details.Title != "Original" || details.Owner != owner.ID {
		t.Fatalf("Get: %+v %v", details, err)
	}

	t.Run("partial update keeps description", func(t *testing.T) {
		title := "Renamed"
		updated, err := f.svc.Videos.Update(ctx, v.ID, UpdateVideoInput{Title: &title})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Title != "Renamed" || updated.Description != "desc" {
			t.Errorf("unexpected update %+v", updated)
		}
	})

	t.Run("thumbnail replaced", func(t *testing.T) {
		old := v.ThumbnailID
		updated, err := f.svc.Videos.Update(ctx, v.ID, UpdateVideoInput{Thumbnail: file("new.webp")})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ThumbnailID == old || f.media.objects[old] || !f.media.objects[updated.ThumbnailID] {
			t.Errorf("old thumbnail should be replaced and deleted")
		}
	})

	t.Run("stale thumbnail deletion failure is not surfaced", func(t *testing.T) {
		f.media.failDelete[media.FolderThumbnails] = true
		defer delete(f.media.failDelete, media.FolderThumbnails)
		if _, err := f.svc.Videos.Update(ctx, v.ID, UpdateVideoInput{Thumbnail: file("again.png")}); err != nil {
			t.Fatalf("Update should succeed, got %v", err)
		}
	})

	t.Run("toggle publish", func(t *testing.T) {
		published, err := f.svc.Videos.TogglePublish(ctx, v.ID)
		if err != nil || published {
			t.Fatalf("first toggle: %v %v", published, err)
		}
		published, err = f.svc.Videos.TogglePublish(ctx, v.ID)
		if err != nil || !published {
			t.Fatalf("second toggle: %v %v", published, err)
		}
	})
}

func TestVideoDelete(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")

	t.Run("thumbnail deletion failure keeps row", func(t *testing.T) {
		v := f.video(t, owner, "Sticky", "")
		f.media.failDelete[media.FolderThumbnails] = true
		defer delete(f.media.failDelete, media.FolderThumbnails)

		err := f.svc.Videos.Delete(ctx, v.ID)
		assertKind(t, err, apperror.ErrDependency)
		if _, err := f.store.Videos().GetByID(ctx, v.ID); err != nil {
			t.Errorf("row should be retained, got %v", err)
		}
		stale, _ := f.store.Intents().ListStale(ctx, time.Now().Add(time.Hour))
		if len(stale) != 0 {
			t.Errorf("failed delete should not leave an intent, got %+v", stale)
		}
	})

	t.Run("success", func(t *testing.T) {
		v := f.video(t, owner, "Gone", "")
		if err := f.svc.Videos.Delete(ctx, v.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := f.store.Videos().GetByID(ctx, v.ID); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("row should be gone, got %v", err)
		}
		if f.media.objects[v.VideoFileID] || f.media.objects[v.ThumbnailID] {
			t.Error("media should be deleted")
		}
	})

	t.Run("missing", func(t *testing.T) {
		assertKind(t, f.svc.Videos.Delete(ctx, f.store.NewID()), apperror.ErrNotFound)
	})
}

func TestPlaylists(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")
	v := f.video(t, owner, "Clip", "")

	if _, err := f.svc.Playlists.Create(ctx, "", "desc", owner.ID); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Playlists.Create(ctx, "Mix", "desc", ""); !errors.Is(err, apperror.ErrAuth) {
		t.Errorf("expected auth error, got %v", err)
	}

	p, err := f.svc.Playlists.Create(ctx, "Mix", "desc", owner.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("add is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			got, err := f.svc.Playlists.AddVideo(ctx, p.ID, v.ID)
			if err != nil {
				t.Fatalf("AddVideo: %v", err)
			}
			if len(got.Videos) != 1 || got.Videos[0].ID != v.ID {
				t.Fatalf("expected exactly one member, got %+v", got.Videos)
			}
		}
	})

	t.Run("remove absent is a no-op", func(t *testing.T) {
		other := f.video(t, owner, "Other", "")
		got, err := f.svc.Playlists.RemoveVideo(ctx, p.ID, other.ID)
		if err != nil {
			t.Fatalf("RemoveVideo: %v", err)
		}
		if len(got.Videos) != 1 {
			t.Errorf("membership should be unchanged, got %+v", got.Videos)
		}
	})

	t.Run("missing playlist", func(t *testing.T) {
		_, err := f.svc.Playlists.AddVideo(ctx, f.store.NewID(), v.ID)
		assertKind(t, err, apperror.ErrNotFound)
		_, err = f.svc.Playlists.RemoveVideo(ctx, f.store.NewID(), v.ID)
		assertKind(t, err, apperror.ErrNotFound)
		_, err = f.svc.Playlists.AddVideo(ctx, "bad", v.ID)
		assertKind(t, err, apperror.ErrValidation)
	})

	t.Run("update requires both fields", func(t *testing.T) {
		_, err := f.svc.Playlists.Update(ctx, p.ID, "Only name", "")
		assertKind(t, err, apperror.ErrValidation)
		updated, err := f.svc.Playlists.Update(ctx, p.ID, "Renamed", "new desc")
		if err != nil || updated.Name != "Renamed" {
			t.Fatalf("Update: %+v %v", updated, err)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		list, err := f.svc.Playlists.ListByOwner(ctx, owner.ID)
		if err != nil || len(list) != 1 {
			t.Fatalf("ListByOwner: %+v %v", list, err)
		}
		deleted, err := f.svc.Playlists.Delete(ctx, p.ID)
		if err != nil || deleted.ID != p.ID {
			t.Fatalf("Delete: %+v %v", deleted, err)
		}
		_, err = f.svc.Playlists.Delete(ctx, p.ID)
		assertKind(t, err, apperror.ErrNotFound)
		_, err = f.svc.Playlists.Get(ctx, p.ID)
		assertKind(t, err, apperror.ErrNotFound)
	})
}

func TestSubscriptionToggle(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	for n := 1; n <= 5; n++ {
		res, err := f.svc.Subscriptions.Toggle(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("Toggle #%d: %v", n, err)
		}
		if res.Subscribed != (n%2 == 1) {
			t.Fatalf("after %d toggles subscribed=%v", n, res.Subscribed)
		}
	}

	subs, err := f.svc.Subscriptions.ListSubscribers(ctx, bob.ID)
	if err != nil || len(subs) != 1 || subs[0].Subscriber.Username != "alice" || subs[0].Subscriber.Email != "alice@example.com" {
		t.Fatalf("ListSubscribers: %+v %v", subs, err)
	}
	channels, err := f.svc.Subscriptions.ListSubscriptions(ctx, alice.ID)
	if err != nil || len(channels) != 1 || channels[0].Channel.Username != "bob" {
		t.Fatalf("ListSubscriptions: %+v %v", channels, err)
	}

	_, err = f.svc.Subscriptions.Toggle(ctx, alice.ID, "bad")
	assertKind(t, err, apperror.ErrValidation)
	_, err = f.svc.Subscriptions.Toggle(ctx, alice.ID, f.store.NewID())
	assertKind(t, err, apperror.ErrNotFound)
	_, err = f.svc.Subscriptions.ListSubscribers(ctx, "bad")
	assertKind(t, err, apperror.ErrValidation)
}

func TestSubscriptionToggleConcurrent(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Subscriptions.Toggle(ctx, alice.ID, bob.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Toggle: %v", err)
	}

	n, err := f.store.Subscriptions().CountByChannel(ctx, bob.ID)
	if err != nil {
		t.Fatalf("CountByChannel: %v", err)
	}
	if n > 1 {
		t.Errorf("concurrent toggles created %d edges", n)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	alice := f.user(t, "Alice")
	if alice.Username != "alice" {
		t.Errorf("username should be lowercased, got %q", alice.Username)
	}

	_, err := f.svc.Users.Register(ctx, RegisterInput{Username: "alice", Email: "x@example.com", FullName: "X", Password: "p"})
	assertKind(t, err, apperror.ErrConflict)

	session, err := f.svc.Users.Login(ctx, "alice@example.com", "password123")
	if err != nil || session.AccessToken == "" {
		t.Fatalf("Login by email: %+v %v", session, err)
	}
	if _, err := f.svc.Users.Login(ctx, "alice", "wrong"); !errors.Is(err, apperror.ErrAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
	if _, err := f.svc.Users.Login(ctx, "nobody", "password123"); !errors.Is(err, apperror.ErrAuth) {
		t.Errorf("expected auth error, got %v", err)
	}

	current, err := f.svc.Users.Current(ctx, alice.ID)
	if err != nil || current.Email != "alice@example.com" {
		t.Fatalf("Current: %+v %v", current, err)
	}

	bob := f.user(t, "bob")
	if _, err := f.svc.Subscriptions.Toggle(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	channel, err := f.svc.Users.Channel(ctx, "alice", bob.ID)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if channel.SubscribersCount != 1 || channel.SubscribedToCount != 0 || !channel.IsSubscribedByUser {
		t.Errorf("unexpected channel %+v", channel)
	}
	_, err = f.svc.Users.Channel(ctx, "nobody", "")
	assertKind(t, err, apperror.ErrNotFound)
}

func TestReconciler(t *testing.T) {
	ctx := context.Background()
	f := setupTestServices(t)
	owner := f.user(t, "alice")
	committed := f.video(t, owner, "Committed", "")
	doomed := f.video(t, owner, "Doomed", "")

	orphan, _ := f.media.Upload(ctx, media.FolderVideos, *file("lost.mp4"))
	old := time.Now().Add(-time.Hour)
	intents := []*models.MediaIntent{
		{Kind: models.IntentUpload, VideoID: f.store.NewID(), Objects: []string{orphan.PublicID}, CreatedAt: old},
		{Kind: models.IntentUpload, VideoID: committed.ID, Objects: committed.MediaObjects(), CreatedAt: old},
		{Kind: models.IntentDelete, VideoID: doomed.ID, Objects: doomed.MediaObjects(), CreatedAt: old},
		{Kind: models.IntentUpload, VideoID: f.store.NewID(), CreatedAt: time.Now()},
	}
	for _, in := range intents {
		if err := f.store.Intents().Create(ctx, in); err != nil {
			t.Fatalf("create intent: %v", err)
		}
	}

	report, err := f.svc.Reconciler.Run(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Scanned != 3 || report.Resolved != 3 || report.Failed != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	if f.media.objects[orphan.PublicID] {
		t.Error("orphaned upload should be deleted")
	}
	if !f.media.objects[committed.VideoFileID] {
		t.Error("committed media must be kept")
	}
	if _, err := f.store.Videos().GetByID(ctx, doomed.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("pending delete should be finished, got %v", err)
	}

	remaining, _ := f.store.Intents().ListStale(ctx, time.Now().Add(time.Hour))
	if len(remaining) != 1 {
		t.Errorf("only the fresh intent should remain, got %+v", remaining)
	}

	t.Run("failure keeps intent", func(t *testing.T) {
		stuck, _ := f.media.Upload(ctx, media.FolderThumbnails, *file("stuck.png"))
		in := &models.MediaIntent{Kind: models.IntentUpload, VideoID: f.store.NewID(), Objects: []string{stuck.PublicID}, CreatedAt: old}
		if err := f.store.Intents().Create(ctx, in); err != nil {
			t.Fatalf("create intent: %v", err)
		}
		f.media.failDelete[media.FolderThumbnails] = true
		defer delete(f.media.failDelete, media.FolderThumbnails)

		report, err := f.svc.Reconciler.Run(ctx, 10*time.Minute)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if report.Failed != 1 {
			t.Errorf("expected one failure, got %+v", report)
		}
		left, _ := f.store.Intents().ListStale(ctx, time.Now().Add(-10*time.Minute))
		if len(left) != 1 || left[0].ID != in.ID {
			t.Errorf("failed intent should stay pending, got %+v", left)
		}
	})
}
