package http

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tdt-client/internal/service/dto"
)

func sampleStories() []dto.Story {
	alice := dto.PlayerInfo{Name: "Alice", Face: "A", IsCreator: true}
	bob := dto.PlayerInfo{Name: "Bob", Face: "B"}

	return []dto.Story{
		{Elements: []dto.StoryElement{
			{Type: dto.ELEMENT_TEXT, Content: "a cat", Player: alice},
			{Type: dto.ELEMENT_IMAGE, Content: "/api/image/abcde/1.png", Player: bob},
		}},
		{Elements: []dto.StoryElement{
			{Type: dto.ELEMENT_TEXT, Content: "a dog", Player: bob},
		}},
	}
}

func TestSaveStories_DownloadsImagesAndRewritesContent(t *testing.T) {
	dir := t.TempDir()

	var fetched []string

	fetch := func(src string) ([]byte, error) {
		fetched = append(fetched, src)
		return []byte("png-bytes"), nil
	}

	if err := SaveStories(dir, "abcde", sampleStories(), fetch); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if len(fetched) != 1 || fetched[0] != "/api/image/abcde/1.png" {
		t.Fatalf("want exactly the one image fetched, got %v", fetched)
	}

	loaded, err := LoadStories(dir, "abcde")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("want 2 stories, got %d", len(loaded))
	}

	img := loaded[0].Elements[1]

	// 图片元素的 content 要改写成本地文件名
	if img.Content == "/api/image/abcde/1.png" {
		t.Fatalf("image content must be rewritten to the local filename")
	}

	data, err := os.ReadFile(filepath.Join(dir, "stories", "abcde", img.Content))
	if err != nil {
		t.Fatalf("downloaded image missing: %v", err)
	}

	if string(data) != "png-bytes" {
		t.Fatalf("downloaded image corrupted: %q", data)
	}

	// 文字元素原样保留
	if loaded[0].Elements[0].Content != "a cat" || loaded[0].Elements[0].Player.Name != "Alice" {
		t.Fatalf("text element mangled: %+v", loaded[0].Elements[0])
	}
}

func TestSaveStories_FetchFailureKeepsRemoteSrc(t *testing.T) {
	dir := t.TempDir()

	fetch := func(src string) ([]byte, error) {
		return nil, errors.New("server gone")
	}

	// 单张图片拉不下来不能让整局保存失败
	if err := SaveStories(dir, "abcde", sampleStories(), fetch); err != nil {
		t.Fatalf("save must survive fetch failures: %v", err)
	}

	loaded, err := LoadStories(dir, "abcde")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := loaded[0].Elements[1].Content; got != "/api/image/abcde/1.png" {
		t.Fatalf("failed download should keep the remote src, got %q", got)
	}
}

func TestLoadStories_MissingGameIsAnError(t *testing.T) {
	if _, err := LoadStories(t.TempDir(), "zzzzz"); err == nil {
		t.Fatalf("loading an unsaved game must fail")
	}
}

func TestListSavedGames(t *testing.T) {
	dir := t.TempDir()

	if games := ListSavedGames(dir); len(games) != 0 {
		t.Fatalf("fresh data dir should have no games, got %v", games)
	}

	noop := func(string) ([]byte, error) { return nil, nil }

	_ = SaveStories(dir, "bbbbb", nil, noop)
	_ = SaveStories(dir, "aaaaa", nil, noop)

	games := ListSavedGames(dir)

	if len(games) != 2 || games[0] != "aaaaa" || games[1] != "bbbbb" {
		t.Fatalf("want sorted [aaaaa bbbbb], got %v", games)
	}
}
