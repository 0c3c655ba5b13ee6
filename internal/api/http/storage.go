package http

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"tdt-client/internal/service/dto"

	"go.uber.org/zap"
)

// 故事落盘在数据目录下：
//
//	stories/<gameId>/stories.json   元数据（图片元素的 content 改写为本地文件名）
//	stories/<gameId>/*.png          下载下来的画作
func storiesDir(dataDir string) string {
	return filepath.Join(dataDir, "stories")
}

func gameDir(dataDir, gameID string) string {
	return filepath.Join(storiesDir(dataDir), gameID)
}

// SaveStories 把一局完成的故事保存到本地。
// 图片通过 fetch 回调逐张下载（回调由 rest 客户端提供，便于测试替换）。
// 单张图片下载失败只记日志，不让整局保存失败。
func SaveStories(dataDir, gameID string, stories []dto.Story, fetch func(src string) ([]byte, error)) error {
	dir := gameDir(dataDir, gameID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	saved := make([]dto.Story, len(stories))

	for si, story := range stories {
		elements := make([]dto.StoryElement, len(story.Elements))

		for ei, el := range story.Elements {
			if el.Type == dto.ELEMENT_IMAGE {
				filename := fmt.Sprintf("s%d-e%d.png", si, ei)

				data, err := fetch(el.Content)
				if err != nil {
					zap.L().Warn(
						"下载画作失败，故事里这张图会缺失",
						zap.String("src", el.Content),
						zap.Error(err),
					)
				} else if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
					zap.L().Warn("写入画作失败", zap.String("file", filename), zap.Error(err))
				} else {
					el.Content = filename
				}
			}

			elements[ei] = el
		}

		saved[si] = dto.Story{Elements: elements}
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "stories.json"), data, 0o644); err != nil {
		return err
	}

	zap.S().Infof("游戏 %s 的 %d 个故事已保存到 %s", gameID, len(saved), dir)

	return nil
}

// LoadStories 读取一局已保存的故事
func LoadStories(dataDir, gameID string) ([]dto.Story, error) {
	data, err := os.ReadFile(filepath.Join(gameDir(dataDir, gameID), "stories.json"))
	if err != nil {
		return nil, err
	}

	var stories []dto.Story

	if err := json.Unmarshal(data, &stories); err != nil {
		return nil, err
	}

	return stories, nil
}

// ListSavedGames 返回本地保存过故事的游戏口令列表
func ListSavedGames(dataDir string) []string {
	entries, err := os.ReadDir(storiesDir(dataDir))
	if err != nil {
		return nil
	}

	games := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			games = append(games, e.Name())
		}
	}

	sort.Strings(games)

	return games
}
